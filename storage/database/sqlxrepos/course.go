package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/course"
)

type courseRow struct {
	ID        string `db:"id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	TeacherID string `db:"teacher_id"`
	Material  string `db:"material"`
	Syllabus  string `db:"syllabus"`
}

type courseFileRow struct {
	ID         string       `db:"id"`
	CourseID   string       `db:"course_id"`
	FileRef    string       `db:"file_ref"`
	FileName   string       `db:"file_name"`
	UploadedAt sql.NullTime `db:"uploaded_at"`
}

type announcementRow struct {
	ID        string       `db:"id"`
	TeacherID string       `db:"teacher_id"`
	Message   string       `db:"message"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:        row.ID,
		Code:      row.Code,
		Name:      row.Name,
		TeacherID: row.TeacherID,
		Material:  row.Material,
		Syllabus:  row.Syllabus,
	}
}

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo courseRepository) CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error {
	db := getExec(repo.exec, exec)
	var count int
	q := db.Rebind(`SELECT COUNT(*) FROM course WHERE code = ?`)
	if err := db.GetContext(ctx, &count, q, code); err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if count > 0 {
		return course.ErrCodeExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	crs.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO course (id, code, name, teacher_id, material, syllabus)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q, crs.ID, crs.Code, crs.Name, crs.TeacherID, crs.Material, crs.Syllabus)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, filter course.GetFilter, exec ...core.DBExecutor) (course.Course, error) {
	conds := []string{`id = ?`}
	args := []interface{}{filter.ID}
	if filter.TeacherID != "" {
		conds = append(conds, `teacher_id = ?`)
		args = append(args, filter.TeacherID)
	}

	db := getExec(repo.exec, exec)
	var row courseRow
	q := db.Rebind(`SELECT * FROM course WHERE ` + strings.Join(conds, ` AND `))
	if err := db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, exec ...core.DBExecutor) ([]course.Course, error) {
	q := `SELECT * FROM course`
	var args []interface{}
	if filter != nil && filter.TeacherID != "" {
		q += ` WHERE teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	q += ` ORDER BY code`

	db := getExec(repo.exec, exec)
	var rows []courseRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		UPDATE course
		SET code = ?, name = ?, teacher_id = ?, material = ?, syllabus = ?
		WHERE id = ?`)
	res, err := db.ExecContext(ctx, q, crs.Code, crs.Name, crs.TeacherID, crs.Material, crs.Syllabus, crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id string, exec ...core.DBExecutor) error {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`DELETE FROM course WHERE id = ?`)
	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

func (repo courseRepository) CountCourses(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	db := getExec(repo.exec, exec)
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM course`); err != nil {
		return 0, errors.Wrap(err, "counting courses")
	}
	return count, nil
}

func (repo courseRepository) CreateFile(ctx context.Context, file course.CourseFile, exec ...core.DBExecutor) (course.CourseFile, error) {
	file.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO course_file (id, course_id, file_ref, file_name, uploaded_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q, file.ID, file.CourseID, file.FileRef, file.FileName, file.UploadedAt)
	if err != nil {
		return course.CourseFile{}, errors.Wrap(err, "inserting course file")
	}
	return file, nil
}

func (repo courseRepository) QueryFiles(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]course.CourseFile, error) {
	db := getExec(repo.exec, exec)
	var rows []courseFileRow
	q := db.Rebind(`SELECT * FROM course_file WHERE course_id = ? ORDER BY uploaded_at DESC`)
	if err := db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course files")
	}
	files := make([]course.CourseFile, 0, len(rows))
	for _, row := range rows {
		files = append(files, course.CourseFile{
			ID:         row.ID,
			CourseID:   row.CourseID,
			FileRef:    row.FileRef,
			FileName:   row.FileName,
			UploadedAt: row.UploadedAt.Time,
		})
	}
	return files, nil
}

func (repo courseRepository) CreateAnnouncement(ctx context.Context, ann course.Announcement, exec ...core.DBExecutor) (course.Announcement, error) {
	ann.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO announcement (id, teacher_id, message, created_at)
		VALUES (?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q, ann.ID, ann.TeacherID, ann.Message, ann.CreatedAt)
	if err != nil {
		return course.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (repo courseRepository) QueryAnnouncements(ctx context.Context, filter *course.AnnouncementFilter, exec ...core.DBExecutor) ([]course.Announcement, error) {
	q := `SELECT * FROM announcement`
	var args []interface{}
	if filter != nil && filter.TeacherID != "" {
		q += ` WHERE teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	q += ` ORDER BY created_at DESC`
	if filter != nil && filter.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	db := getExec(repo.exec, exec)
	var rows []announcementRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	anns := make([]course.Announcement, 0, len(rows))
	for _, row := range rows {
		anns = append(anns, course.Announcement{
			ID:        row.ID,
			TeacherID: row.TeacherID,
			Message:   row.Message,
			CreatedAt: row.CreatedAt.Time,
		})
	}
	return anns, nil
}

func (repo courseRepository) DeleteAnnouncement(ctx context.Context, id string, exec ...core.DBExecutor) error {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`DELETE FROM announcement WHERE id = ?`)
	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrAnnouncementNotFound
	}
	return nil
}

func (repo courseRepository) CountAnnouncements(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	db := getExec(repo.exec, exec)
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM announcement`); err != nil {
		return 0, errors.Wrap(err, "counting announcements")
	}
	return count, nil
}
