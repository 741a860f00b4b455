package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
)

type (
	// Course is owned by exactly one teacher profile.
	Course struct {
		ID        string `json:"id"`
		Code      string `json:"code"`
		Name      string `json:"name"`
		TeacherID string `json:"teacher_id"`
		Material  string `json:"material"`
		Syllabus  string `json:"syllabus"`
	}

	CourseFile struct {
		ID         string    `json:"id"`
		CourseID   string    `json:"course_id"`
		FileRef    string    `json:"file_ref"`
		FileName   string    `json:"file_name"`
		UploadedAt time.Time `json:"uploaded_at"` // UTC
	}

	Announcement struct {
		ID        string    `json:"id"`
		TeacherID string    `json:"teacher_id"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Code      string `json:"code" validate:"required,min=2"`
	Name      string `json:"name" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, svc *Service) error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.TeacherID = core.CleanString(nc.TeacherID)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(nc.Code)
}

type UpdateMaterial struct {
	Material string `json:"material" validate:"required"`
}

func (um *UpdateMaterial) Validate(validate *validator.Validate) error {
	um.Material = core.CleanString(um.Material)
	return validate.Struct(um)
}

type UpdateSyllabus struct {
	Syllabus string `json:"syllabus" validate:"required"`
}

func (us *UpdateSyllabus) Validate(validate *validator.Validate) error {
	us.Syllabus = core.CleanString(us.Syllabus)
	return validate.Struct(us)
}

type NewAnnouncement struct {
	Message string `json:"message" validate:"required"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Message = core.CleanString(na.Message)
	return validate.Struct(na)
}

// GetFilter selects a single Course by ID, optionally scoped to an owning
// teacher.
type GetFilter struct {
	ID        string
	TeacherID string
}

type QueryFilter struct {
	TeacherID string
}

type AnnouncementFilter struct {
	TeacherID string
	Limit     int
}
