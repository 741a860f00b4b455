package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
)

// Submission statuses. StatusSubmitted exists in the data model but no
// creation path sets it: submissions stay Pending until a teacher grades
// them. TODO: decide whether Submit should flip the status to Submitted.
const (
	StatusPending   Status = "Pending"
	StatusSubmitted Status = "Submitted"
	StatusGraded    Status = "Graded"
)

type Status string

type (
	Assignment struct {
		ID          string    `json:"id"`
		CourseID    string    `json:"course_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		FileRef     string    `json:"file_ref,omitempty"`
		DueDate     time.Time `json:"due_date"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}

	Submission struct {
		ID           string    `json:"id"`
		AssignmentID string    `json:"assignment_id"`
		StudentID    string    `json:"student_id"`
		FileRef      string    `json:"file_ref,omitempty"`
		Feedback     string    `json:"feedback"`
		Status       Status    `json:"status"`
		SubmittedAt  time.Time `json:"submitted_at"` // UTC
	}
)

// NewAssignment contains information needed to create an Assignment.
type NewAssignment struct {
	CourseID    string    `json:"course_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.CourseID = core.CleanString(na.CourseID)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// GradeSubmission defines what a teacher may change on a Submission.
type GradeSubmission struct {
	Feedback string `json:"feedback"`
	Status   Status `json:"status" validate:"required,oneof=Pending Submitted Graded"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.Feedback = core.CleanString(gs.Feedback)
	return validate.Struct(gs)
}

// GetFilter selects a single Assignment, optionally scoped to the owning
// teacher (via the assignment's course).
type GetFilter struct {
	ID        string
	TeacherID string
}

type QueryFilter struct {
	CourseID  string
	TeacherID string
}

// SubmissionGetFilter selects a single Submission, optionally scoped to the
// teacher owning the assignment's course.
type SubmissionGetFilter struct {
	ID        string
	TeacherID string
}

type SubmissionFilter struct {
	AssignmentID string
	StudentID    string
	CourseID     string
	TeacherID    string
}
