package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/record"
)

type resultRow struct {
	ID        string       `db:"id"`
	StudentID string       `db:"student_id"`
	CourseID  string       `db:"course_id"`
	Marks     float64      `db:"marks"`
	ExamType  string       `db:"exam_type"`
	Date      sql.NullTime `db:"date"`
}

type attendanceRow struct {
	ID        string       `db:"id"`
	StudentID string       `db:"student_id"`
	CourseID  string       `db:"course_id"`
	Date      sql.NullTime `db:"date"`
	Status    string       `db:"status"`
}

func (row resultRow) toResult() record.Result {
	res := record.Result{
		ID:        row.ID,
		StudentID: row.StudentID,
		CourseID:  row.CourseID,
		Marks:     row.Marks,
		ExamType:  record.ExamType(row.ExamType),
	}
	if row.Date.Valid {
		t := row.Date.Time
		res.Date = &t
	}
	return res
}

func (row attendanceRow) toAttendance() record.Attendance {
	return record.Attendance{
		ID:        row.ID,
		StudentID: row.StudentID,
		CourseID:  row.CourseID,
		Date:      row.Date.Time,
		Status:    record.AttendanceStatus(row.Status),
	}
}

type recordRepository struct {
	exec core.DBExecutor
}

var _ record.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(exec core.DBExecutor) *recordRepository {
	return &recordRepository{exec: exec}
}

// recordConds builds the shared WHERE clause for results and attendance;
// table is the alias of the record table being filtered.
func recordConds(table string, filter *record.QueryFilter) (join string, conds []string, args []interface{}) {
	if filter == nil {
		return "", nil, nil
	}
	if filter.TeacherID != "" {
		join = ` JOIN course c ON c.id = ` + table + `.course_id`
		conds = append(conds, `c.teacher_id = ?`)
		args = append(args, filter.TeacherID)
	}
	if filter.StudentID != "" {
		conds = append(conds, table+`.student_id = ?`)
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conds = append(conds, table+`.course_id = ?`)
		args = append(args, filter.CourseID)
	}
	return join, conds, args
}

func (repo recordRepository) CreateResult(ctx context.Context, res record.Result, exec ...core.DBExecutor) (record.Result, error) {
	res.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO result (id, student_id, course_id, marks, exam_type, date)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q, res.ID, res.StudentID, res.CourseID, res.Marks, res.ExamType, res.Date)
	if err != nil {
		return record.Result{}, errors.Wrap(err, "inserting result")
	}
	return res, nil
}

func (repo recordRepository) QueryResults(ctx context.Context, filter *record.QueryFilter, exec ...core.DBExecutor) ([]record.Result, error) {
	join, conds, args := recordConds("r", filter)
	q := `SELECT r.* FROM result r` + join
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY r.date DESC NULLS LAST`

	db := getExec(repo.exec, exec)
	var rows []resultRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	results := make([]record.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toResult())
	}
	return results, nil
}

func (repo recordRepository) CountResults(ctx context.Context, filter *record.QueryFilter, exec ...core.DBExecutor) (int, error) {
	join, conds, args := recordConds("r", filter)
	q := `SELECT COUNT(*) FROM result r` + join
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	db := getExec(repo.exec, exec)
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "counting results")
	}
	return count, nil
}

func (repo recordRepository) CreateAttendance(ctx context.Context, att record.Attendance, exec ...core.DBExecutor) (record.Attendance, error) {
	att.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO attendance (id, student_id, course_id, date, status)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q, att.ID, att.StudentID, att.CourseID, att.Date, att.Status)
	if err != nil {
		return record.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo recordRepository) QueryAttendance(ctx context.Context, filter *record.QueryFilter, exec ...core.DBExecutor) ([]record.Attendance, error) {
	join, conds, args := recordConds("att", filter)
	q := `SELECT att.* FROM attendance att` + join
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY att.date DESC`

	db := getExec(repo.exec, exec)
	var rows []attendanceRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	records := make([]record.Attendance, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toAttendance())
	}
	return records, nil
}
