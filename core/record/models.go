package record

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
)

// Exam types. MSE is the final exam category; CA-I and CA-II are internals.
const (
	ExamCAI  ExamType = "CA-I"
	ExamMSE  ExamType = "MSE"
	ExamCAII ExamType = "CA-II"
)

var AllExamTypes = []ExamType{ExamCAI, ExamMSE, ExamCAII}

type ExamType string

// IsInternal reports whether the exam counts as an internal assessment.
func (et ExamType) IsInternal() bool {
	return et == ExamCAI || et == ExamCAII
}

// Attendance statuses.
const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

type AttendanceStatus string

type (
	Result struct {
		ID        string     `json:"id"`
		StudentID string     `json:"student_id"`
		CourseID  string     `json:"course_id"`
		Marks     float64    `json:"marks"`
		ExamType  ExamType   `json:"exam_type"`
		Date      *time.Time `json:"date,omitempty"`
	}

	Attendance struct {
		ID        string           `json:"id"`
		StudentID string           `json:"student_id"`
		CourseID  string           `json:"course_id"`
		Date      time.Time        `json:"date"`
		Status    AttendanceStatus `json:"status"`
	}
)

// NewResult contains information needed to enter a Result. There is
// deliberately no uniqueness on (student, course, exam type): re-entering a
// result files a second row.
type NewResult struct {
	StudentID string     `json:"student_id" validate:"required"`
	CourseID  string     `json:"course_id" validate:"required"`
	Marks     float64    `json:"marks" validate:"gte=0"`
	ExamType  ExamType   `json:"exam_type" validate:"required,oneof=CA-I MSE CA-II"`
	Date      *time.Time `json:"date"`
}

func (nr *NewResult) Validate(validate *validator.Validate) error {
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.CourseID = core.CleanString(nr.CourseID)
	return validate.Struct(nr)
}

// NewAttendance contains information needed to mark Attendance. As with
// results, duplicate (student, course, date) rows are allowed.
type NewAttendance struct {
	StudentID string           `json:"student_id" validate:"required"`
	CourseID  string           `json:"course_id" validate:"required"`
	Date      time.Time        `json:"date" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=Present Absent"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	na.CourseID = core.CleanString(na.CourseID)
	return validate.Struct(na)
}

// QueryFilter applies AND on its non-empty fields. TeacherID matches records
// of courses owned by that teacher.
type QueryFilter struct {
	StudentID string
	CourseID  string
	TeacherID string
}
