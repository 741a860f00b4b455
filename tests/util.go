package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/record"
	"github.com/shulehq/shule/core/user"
)

// NewConfig returns a self-contained configuration for tests.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:            false,
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Shule",
		SecretKey:        "secret",
		DefaultFromEmail: "noreply@test.cd",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

// NewValidator returns a validator with all custom validations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// CreateUser persists an account and, for teachers and students, its profile.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	uname, email, pwd string,
	role user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	ctx := context.Background()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	switch role {
	case user.RoleTeacher:
		profile, err := repo.CreateTeacherProfile(ctx, user.TeacherProfile{
			UserID:     usr.ID,
			EmployeeID: "T-" + uname,
			Department: "General",
		})
		if err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
		usr.Teacher = &profile
	case user.RoleStudent:
		profile, err := repo.CreateStudentProfile(ctx, user.StudentProfile{
			UserID:    usr.ID,
			RollNo:    "S-" + uname,
			ClassName: "General",
			Batch:     "2024",
		})
		if err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
		usr.Student = &profile
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, code, name, teacherID string) course.Course {
	t.Helper()

	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Code:      code,
		Name:      name,
		TeacherID: teacherID,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateAssignment(t *testing.T, repo assignment.Repository, courseID, title string, dueDate time.Time) assignment.Assignment {
	t.Helper()

	asg, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		CourseID:    courseID,
		Title:       title,
		Description: title,
		DueDate:     dueDate,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateSubmission(t *testing.T, repo assignment.Repository, assignmentID, studentID string) assignment.Submission {
	t.Helper()

	sub, err := repo.CreateSubmission(context.Background(), assignment.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       assignment.StatusPending,
		SubmittedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}

func CreateResult(t *testing.T, repo record.Repository, studentID, courseID string, marks float64, examType record.ExamType) record.Result {
	t.Helper()

	res, err := repo.CreateResult(context.Background(), record.Result{
		StudentID: studentID,
		CourseID:  courseID,
		Marks:     marks,
		ExamType:  examType,
	})
	if err != nil {
		t.Fatalf("CreateResult() failed: %v", err)
	}
	return res
}

func CreateAttendance(t *testing.T, repo record.Repository, studentID, courseID string, date time.Time, status record.AttendanceStatus) record.Attendance {
	t.Helper()

	att, err := repo.CreateAttendance(context.Background(), record.Attendance{
		StudentID: studentID,
		CourseID:  courseID,
		Date:      date,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return att
}
