package record

import (
	"context"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/user"
)

type (
	Repository interface {
		CreateResult(ctx context.Context, res Result, exec ...core.DBExecutor) (Result, error)
		QueryResults(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Result, error)
		CountResults(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) (int, error)

		CreateAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) (Attendance, error)
		QueryAttendance(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Attendance, error)
	}

	Service struct {
		repo    Repository
		courses course.Repository
		users   user.Repository
	}
)

func NewService(repo Repository, courses course.Repository, users user.Repository) *Service {
	return &Service{repo: repo, courses: courses, users: users}
}

// EnterResult files a result for a student on a course owned by the acting
// teacher. A course owned by someone else surfaces as course.ErrNotFound.
func (svc *Service) EnterResult(ctx context.Context, teacherID string, nr NewResult) (Result, error) {
	crs, err := svc.courses.GetCourse(ctx, course.GetFilter{ID: nr.CourseID, TeacherID: teacherID})
	if err != nil {
		return Result{}, err
	}
	if _, err = svc.users.GetStudentProfile(ctx, nr.StudentID); err != nil {
		return Result{}, err
	}
	return svc.repo.CreateResult(ctx, Result{
		StudentID: nr.StudentID,
		CourseID:  crs.ID,
		Marks:     nr.Marks,
		ExamType:  nr.ExamType,
		Date:      nr.Date,
	})
}

// MarkAttendance records attendance with the same ownership scoping as
// EnterResult.
func (svc *Service) MarkAttendance(ctx context.Context, teacherID string, na NewAttendance) (Attendance, error) {
	crs, err := svc.courses.GetCourse(ctx, course.GetFilter{ID: na.CourseID, TeacherID: teacherID})
	if err != nil {
		return Attendance{}, err
	}
	if _, err = svc.users.GetStudentProfile(ctx, na.StudentID); err != nil {
		return Attendance{}, err
	}
	return svc.repo.CreateAttendance(ctx, Attendance{
		StudentID: na.StudentID,
		CourseID:  crs.ID,
		Date:      na.Date,
		Status:    na.Status,
	})
}

func (svc *Service) ResultsForStudent(ctx context.Context, studentID string) ([]Result, error) {
	return svc.repo.QueryResults(ctx, &QueryFilter{StudentID: studentID})
}

func (svc *Service) ResultsForTeacher(ctx context.Context, teacherID string) ([]Result, error) {
	return svc.repo.QueryResults(ctx, &QueryFilter{TeacherID: teacherID})
}

func (svc *Service) AttendanceForStudent(ctx context.Context, studentID string) ([]Attendance, error) {
	return svc.repo.QueryAttendance(ctx, &QueryFilter{StudentID: studentID})
}

func (svc *Service) AttendanceForTeacher(ctx context.Context, teacherID string) ([]Attendance, error) {
	return svc.repo.QueryAttendance(ctx, &QueryFilter{TeacherID: teacherID})
}
