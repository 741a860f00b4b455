package course

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
)

const uploadFolder = "course_files"

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("course not found")
	ErrAnnouncementNotFound = core.NewNotFoundError("announcement not found")
	ErrCodeExists           = errors.New("a course with this code already exists")
	errUnknownTeacher       = errors.New("teacher not found")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		// GetCourse returns ErrNotFound when no course matches the filter,
		// including when the course exists but belongs to another teacher.
		GetCourse(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		DeleteCourse(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountCourses(ctx context.Context, exec ...core.DBExecutor) (int, error)

		CreateFile(ctx context.Context, file CourseFile, exec ...core.DBExecutor) (CourseFile, error)
		QueryFiles(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]CourseFile, error)

		CreateAnnouncement(ctx context.Context, ann Announcement, exec ...core.DBExecutor) (Announcement, error)
		// QueryAnnouncements returns newest first.
		QueryAnnouncements(ctx context.Context, filter *AnnouncementFilter, exec ...core.DBExecutor) ([]Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountAnnouncements(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo  Repository
		users user.Repository
		files core.FileStore
	}
)

func NewService(repo Repository, users user.Repository, files core.FileStore) *Service {
	return &Service{repo: repo, users: users, files: files}
}

// CheckCodeUniqueness resolves a duplicate course code into a field-level
// validation error.
func (svc *Service) CheckCodeUniqueness(code string) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if _, err := svc.users.GetTeacherProfile(ctx, nc.TeacherID); err != nil {
		if core.IsNotFound(err) {
			return Course{}, core.NewValidationError(errUnknownTeacher,
				core.FieldError{Field: "teacher_id", Error: errUnknownTeacher.Error()})
		}
		return Course{}, errors.Wrap(err, "finding teacher")
	}
	return svc.repo.CreateCourse(ctx, Course{
		Code:      nc.Code,
		Name:      nc.Name,
		TeacherID: nc.TeacherID,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, GetFilter{ID: id})
}

// GetOwned scopes the lookup to the acting teacher; a course owned by someone
// else comes back as ErrNotFound.
func (svc *Service) GetOwned(ctx context.Context, teacherID, courseID string) (Course, error) {
	return svc.repo.GetCourse(ctx, GetFilter{ID: courseID, TeacherID: teacherID})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetCourse(ctx, GetFilter{ID: id}); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) UpdateMaterial(ctx context.Context, teacherID, courseID, material string) (Course, error) {
	crs, err := svc.GetOwned(ctx, teacherID, courseID)
	if err != nil {
		return Course{}, err
	}
	crs.Material = material
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) UpdateSyllabus(ctx context.Context, teacherID, courseID, syllabus string) (Course, error) {
	crs, err := svc.GetOwned(ctx, teacherID, courseID)
	if err != nil {
		return Course{}, err
	}
	crs.Syllabus = syllabus
	return svc.repo.UpdateCourse(ctx, crs)
}

// AttachFile streams the upload to the file store and records it against the
// owned course.
func (svc *Service) AttachFile(ctx context.Context, teacherID, courseID, filename string, r io.Reader) (CourseFile, error) {
	crs, err := svc.GetOwned(ctx, teacherID, courseID)
	if err != nil {
		return CourseFile{}, err
	}
	ref, err := svc.files.Save(ctx, uploadFolder, filename, r)
	if err != nil {
		return CourseFile{}, errors.Wrap(err, "storing course file")
	}
	return svc.repo.CreateFile(ctx, CourseFile{
		CourseID:   crs.ID,
		FileRef:    ref,
		FileName:   filename,
		UploadedAt: time.Now().UTC(),
	})
}

func (svc *Service) Files(ctx context.Context, teacherID, courseID string) ([]CourseFile, error) {
	if _, err := svc.GetOwned(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryFiles(ctx, courseID)
}

func (svc *Service) Announce(ctx context.Context, teacherID string, na NewAnnouncement) (Announcement, error) {
	if _, err := svc.users.GetTeacherProfile(ctx, teacherID); err != nil {
		return Announcement{}, err
	}
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		TeacherID: teacherID,
		Message:   na.Message,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Announcements(ctx context.Context, filter *AnnouncementFilter) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, filter)
}

func (svc *Service) DeleteAnnouncement(ctx context.Context, id string) error {
	return svc.repo.DeleteAnnouncement(ctx, id)
}
