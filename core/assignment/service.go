package assignment

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/course"
)

const (
	assignmentFolder = "assignments"
	submissionFolder = "submissions"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("assignment not found")
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		// GetAssignment returns ErrNotFound when nothing matches the filter,
		// including when the assignment's course belongs to another teacher.
		GetAssignment(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Assignment, error)
		QueryAssignments(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Assignment, error)
		CountAssignments(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) (int, error)

		CreateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		GetSubmission(ctx context.Context, filter SubmissionGetFilter, exec ...core.DBExecutor) (Submission, error)
		QuerySubmissions(ctx context.Context, filter *SubmissionFilter, exec ...core.DBExecutor) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		CountSubmissions(ctx context.Context, filter *SubmissionFilter, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo    Repository
		courses course.Repository
		files   core.FileStore
	}
)

func NewService(repo Repository, courses course.Repository, files core.FileStore) *Service {
	return &Service{repo: repo, courses: courses, files: files}
}

// Create records a new assignment on a course owned by the acting teacher.
// The attachment is optional; pass a nil reader to skip it.
func (svc *Service) Create(ctx context.Context, teacherID string, na NewAssignment, filename string, file io.Reader) (Assignment, error) {
	crs, err := svc.courses.GetCourse(ctx, course.GetFilter{ID: na.CourseID, TeacherID: teacherID})
	if err != nil {
		return Assignment{}, err
	}

	asg := Assignment{
		CourseID:    crs.ID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	if file != nil {
		ref, err := svc.files.Save(ctx, assignmentFolder, filename, file)
		if err != nil {
			return Assignment{}, errors.Wrap(err, "storing assignment file")
		}
		asg.FileRef = ref
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, GetFilter{ID: id})
}

// QueryAll returns every assignment; students see assignments across all
// courses.
func (svc *Service) QueryAll(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, nil)
}

func (svc *Service) QueryForTeacher(ctx context.Context, teacherID string) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, &QueryFilter{TeacherID: teacherID})
}

// Submit files a student's submission. The status stays Pending regardless of
// the attachment; see the Status docs.
func (svc *Service) Submit(ctx context.Context, studentID, assignmentID, filename string, file io.Reader) (Submission, error) {
	asg, err := svc.repo.GetAssignment(ctx, GetFilter{ID: assignmentID})
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{
		AssignmentID: asg.ID,
		StudentID:    studentID,
		Status:       StatusPending,
		SubmittedAt:  time.Now().UTC(),
	}
	if file != nil {
		ref, err := svc.files.Save(ctx, submissionFolder, filename, file)
		if err != nil {
			return Submission{}, errors.Wrap(err, "storing submission file")
		}
		sub.FileRef = ref
	}
	return svc.repo.CreateSubmission(ctx, sub)
}

// Grade lets the teacher owning the submission's course set feedback and a
// new status.
func (svc *Service) Grade(ctx context.Context, teacherID, submissionID string, gs GradeSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, SubmissionGetFilter{ID: submissionID, TeacherID: teacherID})
	if err != nil {
		return Submission{}, err
	}
	sub.Feedback = gs.Feedback
	sub.Status = gs.Status
	return svc.repo.UpdateSubmission(ctx, sub)
}

func (svc *Service) SubmissionsForStudent(ctx context.Context, studentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, &SubmissionFilter{StudentID: studentID})
}

func (svc *Service) SubmissionsForTeacher(ctx context.Context, teacherID string) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, &SubmissionFilter{TeacherID: teacherID})
}
