package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/assignment"
)

type assignmentRow struct {
	ID          string       `db:"id"`
	CourseID    string       `db:"course_id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	FileRef     string       `db:"file_ref"`
	DueDate     sql.NullTime `db:"due_date"`
	CreatedAt   sql.NullTime `db:"created_at"`
}

type submissionRow struct {
	ID           string       `db:"id"`
	AssignmentID string       `db:"assignment_id"`
	StudentID    string       `db:"student_id"`
	FileRef      string       `db:"file_ref"`
	Feedback     string       `db:"feedback"`
	Status       string       `db:"status"`
	SubmittedAt  sql.NullTime `db:"submitted_at"`
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:          row.ID,
		CourseID:    row.CourseID,
		Title:       row.Title,
		Description: row.Description,
		FileRef:     row.FileRef,
		DueDate:     row.DueDate.Time,
		CreatedAt:   row.CreatedAt.Time,
	}
}

func (row submissionRow) toSubmission() assignment.Submission {
	return assignment.Submission{
		ID:           row.ID,
		AssignmentID: row.AssignmentID,
		StudentID:    row.StudentID,
		FileRef:      row.FileRef,
		Feedback:     row.Feedback,
		Status:       assignment.Status(row.Status),
		SubmittedAt:  row.SubmittedAt.Time,
	}
}

type assignmentRepository struct {
	exec core.DBExecutor
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) *assignmentRepository {
	return &assignmentRepository{exec: exec}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	asg.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO assignment (id, course_id, title, description, file_ref, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q, asg.ID, asg.CourseID, asg.Title, asg.Description, asg.FileRef, asg.DueDate, asg.CreatedAt)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, filter assignment.GetFilter, exec ...core.DBExecutor) (assignment.Assignment, error) {
	q := `SELECT a.* FROM assignment a`
	conds := []string{`a.id = ?`}
	args := []interface{}{filter.ID}
	if filter.TeacherID != "" {
		q += ` JOIN course c ON c.id = a.course_id`
		conds = append(conds, `c.teacher_id = ?`)
		args = append(args, filter.TeacherID)
	}
	q += ` WHERE ` + strings.Join(conds, ` AND `)

	db := getExec(repo.exec, exec)
	var row assignmentRow
	if err := db.GetContext(ctx, &row, db.Rebind(q), args...); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return row.toAssignment(), nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	q := `SELECT a.* FROM assignment a`
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.TeacherID != "" {
			q += ` JOIN course c ON c.id = a.course_id`
			conds = append(conds, `c.teacher_id = ?`)
			args = append(args, filter.TeacherID)
		}
		if filter.CourseID != "" {
			conds = append(conds, `a.course_id = ?`)
			args = append(args, filter.CourseID)
		}
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY a.created_at DESC`

	db := getExec(repo.exec, exec)
	var rows []assignmentRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.toAssignment())
	}
	return asgs, nil
}

func (repo assignmentRepository) CountAssignments(ctx context.Context, filter *assignment.QueryFilter, exec ...core.DBExecutor) (int, error) {
	q := `SELECT COUNT(*) FROM assignment a`
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.TeacherID != "" {
			q += ` JOIN course c ON c.id = a.course_id`
			conds = append(conds, `c.teacher_id = ?`)
			args = append(args, filter.TeacherID)
		}
		if filter.CourseID != "" {
			conds = append(conds, `a.course_id = ?`)
			args = append(args, filter.CourseID)
		}
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	db := getExec(repo.exec, exec)
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "counting assignments")
	}
	return count, nil
}

func (repo assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission, exec ...core.DBExecutor) (assignment.Submission, error) {
	sub.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO submission (id, assignment_id, student_id, file_ref, feedback, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q, sub.ID, sub.AssignmentID, sub.StudentID, sub.FileRef, sub.Feedback, sub.Status, sub.SubmittedAt)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo assignmentRepository) GetSubmission(ctx context.Context, filter assignment.SubmissionGetFilter, exec ...core.DBExecutor) (assignment.Submission, error) {
	q := `SELECT s.* FROM submission s`
	conds := []string{`s.id = ?`}
	args := []interface{}{filter.ID}
	if filter.TeacherID != "" {
		q += ` JOIN assignment a ON a.id = s.assignment_id JOIN course c ON c.id = a.course_id`
		conds = append(conds, `c.teacher_id = ?`)
		args = append(args, filter.TeacherID)
	}
	q += ` WHERE ` + strings.Join(conds, ` AND `)

	db := getExec(repo.exec, exec)
	var row submissionRow
	if err := db.GetContext(ctx, &row, db.Rebind(q), args...); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.toSubmission(), nil
}

func (repo assignmentRepository) submissionQuery(base string, filter *assignment.SubmissionFilter) (string, []interface{}) {
	q := base + ` FROM submission s`
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.TeacherID != "" || filter.CourseID != "" {
			q += ` JOIN assignment a ON a.id = s.assignment_id`
		}
		if filter.TeacherID != "" {
			q += ` JOIN course c ON c.id = a.course_id`
			conds = append(conds, `c.teacher_id = ?`)
			args = append(args, filter.TeacherID)
		}
		if filter.CourseID != "" {
			conds = append(conds, `a.course_id = ?`)
			args = append(args, filter.CourseID)
		}
		if filter.AssignmentID != "" {
			conds = append(conds, `s.assignment_id = ?`)
			args = append(args, filter.AssignmentID)
		}
		if filter.StudentID != "" {
			conds = append(conds, `s.student_id = ?`)
			args = append(args, filter.StudentID)
		}
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	return q, args
}

func (repo assignmentRepository) QuerySubmissions(ctx context.Context, filter *assignment.SubmissionFilter, exec ...core.DBExecutor) ([]assignment.Submission, error) {
	q, args := repo.submissionQuery(`SELECT s.*`, filter)
	q += ` ORDER BY s.submitted_at DESC`

	db := getExec(repo.exec, exec)
	var rows []submissionRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]assignment.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubmission())
	}
	return subs, nil
}

func (repo assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission, exec ...core.DBExecutor) (assignment.Submission, error) {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		UPDATE submission
		SET file_ref = ?, feedback = ?, status = ?
		WHERE id = ?`)
	res, err := db.ExecContext(ctx, q, sub.FileRef, sub.Feedback, sub.Status, sub.ID)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	return sub, nil
}

func (repo assignmentRepository) CountSubmissions(ctx context.Context, filter *assignment.SubmissionFilter, exec ...core.DBExecutor) (int, error) {
	q, args := repo.submissionQuery(`SELECT COUNT(*)`, filter)

	db := getExec(repo.exec, exec)
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "counting submissions")
	}
	return count, nil
}
