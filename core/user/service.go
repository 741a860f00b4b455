package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrRollNoExists   = errors.New("a student with this roll number already exists")
	ErrAdminDeletion  = core.NewForbiddenError("admin accounts cannot be deleted")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, username, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CheckRollUniqueness(ctx context.Context, rollNo string, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		CreateTeacherProfile(ctx context.Context, profile TeacherProfile, exec ...core.DBExecutor) (TeacherProfile, error)
		CreateStudentProfile(ctx context.Context, profile StudentProfile, exec ...core.DBExecutor) (StudentProfile, error)
		// GetUser loads the matching account along with its profile.
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		GetTeacherProfile(ctx context.Context, id string, exec ...core.DBExecutor) (TeacherProfile, error)
		GetStudentProfile(ctx context.Context, id string, exec ...core.DBExecutor) (StudentProfile, error)
		// QueryUsers applies AND on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// Username, Email, FirstName or LastName.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		UpdateTeacherProfile(ctx context.Context, profile TeacherProfile, exec ...core.DBExecutor) (TeacherProfile, error)
		UpdateStudentProfile(ctx context.Context, profile StudentProfile, exec ...core.DBExecutor) (StudentProfile, error)
		// DeleteUser removes the account; profile and dependent records go
		// with it (FK cascade in the SQL repos, explicit sweep in-memory).
		DeleteUser(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountByRole(ctx context.Context, role Role, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, mailSvc: mailSvc, conf: conf}
}

// CheckUniqueness resolves username/email conflicts into field-level
// validation errors.
func (svc *Service) CheckUniqueness(uname, email string, exclUsers ...User) error {
	err := svc.repo.CheckUniqueness(context.Background(), uname, email, exclUsers)
	if err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) CheckRollUniqueness(rollNo string) error {
	if err := svc.repo.CheckRollUniqueness(context.Background(), rollNo); err != nil {
		if err == ErrRollNoExists {
			return core.NewValidationError(err, core.FieldError{Field: "roll_no", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create persists the account and its role-specific profile as one atomic
// unit, then sends a welcome email.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Username:  nu.Username,
		Email:     nu.Email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return User{}, errors.Wrap(err, "beginning transaction")
	}
	exec := core.TxExec(tx)

	usr, err = svc.repo.CreateUser(ctx, usr, exec...)
	if err != nil {
		core.TxRollback(tx)
		return User{}, errors.Wrap(err, "creating user")
	}

	switch nu.Role {
	case RoleTeacher:
		profile := TeacherProfile{
			UserID:         usr.ID,
			EmployeeID:     nu.EmployeeID,
			Department:     nu.Department,
			JoiningDate:    nu.JoiningDate,
			Qualifications: nu.Qualifications,
		}
		if profile.EmployeeID == "" {
			profile.EmployeeID = defaultCode("T", usr.ID)
		}
		if profile.Department == "" {
			profile.Department = "General"
		}
		if profile, err = svc.repo.CreateTeacherProfile(ctx, profile, exec...); err != nil {
			core.TxRollback(tx)
			return User{}, errors.Wrap(err, "creating teacher profile")
		}
		usr.Teacher = &profile
	case RoleStudent:
		profile := StudentProfile{
			UserID:      usr.ID,
			RollNo:      nu.RollNo,
			ClassName:   nu.ClassName,
			Batch:       nu.Batch,
			DateOfBirth: nu.DateOfBirth,
		}
		if profile.RollNo == "" {
			profile.RollNo = defaultCode("S", usr.ID)
		}
		if profile.ClassName == "" {
			profile.ClassName = "General"
		}
		if profile.Batch == "" {
			profile.Batch = "2024"
		}
		if profile, err = svc.repo.CreateStudentProfile(ctx, profile, exec...); err != nil {
			core.TxRollback(tx)
			return User{}, errors.Wrap(err, "creating student profile")
		}
		usr.Student = &profile
	}

	if err = core.TxCommit(tx); err != nil {
		return User{}, errors.Wrap(err, "committing transaction")
	}

	svc.sendWelcomeEmail(usr)
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *Service) Students(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, &QueryFilter{Role: RoleStudent}, nil)
}

func (svc *Service) Teachers(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, &QueryFilter{Role: RoleTeacher}, nil)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// UpdateSelf applies the owner's profile changes; the account row and the
// role-specific profile row are updated in one transaction.
func (svc *Service) UpdateSelf(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	usr.FirstName = up.FirstName
	usr.LastName = up.LastName
	usr.Email = up.Email
	usr.UpdatedAt = time.Now().UTC()

	tx, err := core.BeginTx(ctx, svc.db)
	if err != nil {
		return User{}, errors.Wrap(err, "beginning transaction")
	}
	exec := core.TxExec(tx)

	if usr, err = svc.repo.UpdateUser(ctx, usr, exec...); err != nil {
		core.TxRollback(tx)
		return User{}, errors.Wrap(err, "updating user")
	}

	switch {
	case usr.Teacher != nil:
		if up.Department != "" {
			usr.Teacher.Department = up.Department
		}
		if up.Qualifications != "" {
			usr.Teacher.Qualifications = up.Qualifications
		}
		profile, err := svc.repo.UpdateTeacherProfile(ctx, *usr.Teacher, exec...)
		if err != nil {
			core.TxRollback(tx)
			return User{}, errors.Wrap(err, "updating teacher profile")
		}
		usr.Teacher = &profile
	case usr.Student != nil:
		if up.DateOfBirth != nil {
			usr.Student.DateOfBirth = up.DateOfBirth
		}
		profile, err := svc.repo.UpdateStudentProfile(ctx, *usr.Student, exec...)
		if err != nil {
			core.TxRollback(tx)
			return User{}, errors.Wrap(err, "updating student profile")
		}
		usr.Student = &profile
	}

	if err = core.TxCommit(tx); err != nil {
		return User{}, errors.Wrap(err, "committing transaction")
	}
	return usr, nil
}

// Delete removes a non-admin account and everything hanging off it.
func (svc *Service) Delete(ctx context.Context, id string) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return err
	}
	if usr.IsAdmin() {
		return ErrAdminDeletion
	}
	return svc.repo.DeleteUser(ctx, id)
}

func (svc *Service) CountByRole(ctx context.Context, role Role) (int, error) {
	return svc.repo.CountByRole(ctx, role)
}

func (svc *Service) sendWelcomeEmail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		Body: fmt.Sprintf(
			"Hi %s,\n\nA %s account has been created for you. You can now log in with your username %q.\n",
			usr.FullName(), strings.ToLower(string(usr.Role)), usr.Username,
		),
	})
}

// defaultCode derives a profile code (employee ID, roll number) from the
// account ID when the admin did not provide one.
func defaultCode(prefix, userID string) string {
	id := strings.ReplaceAll(userID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return prefix + strings.ToUpper(id)
}
