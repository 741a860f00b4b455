package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/shulehq/shule/core"
)

// Roles. A role is fixed at account creation; no operation mutates it.
const (
	RoleAdmin   Role = "Admin"
	RoleTeacher Role = "Teacher"
	RoleStudent Role = "Student"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

type Role string

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type (
	User struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		FirstName    string    `json:"first_name"`
		LastName     string    `json:"last_name"`
		Role         Role      `json:"role"`
		IsActive     bool      `json:"is_active"`
		PasswordHash []byte    `json:"-"`
		CreatedAt    time.Time `json:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at"` // UTC
		LastLogin    time.Time `json:"last_login"` // UTC

		// exactly one of these is set for non-admin accounts
		Teacher *TeacherProfile `json:"teacher,omitempty"`
		Student *StudentProfile `json:"student,omitempty"`
	}

	TeacherProfile struct {
		ID             string     `json:"id"`
		UserID         string     `json:"-"`
		EmployeeID     string     `json:"employee_id,omitempty"`
		Department     string     `json:"department"`
		JoiningDate    *time.Time `json:"joining_date,omitempty"`
		Qualifications string     `json:"qualifications,omitempty"`
	}

	StudentProfile struct {
		ID          string     `json:"id"`
		UserID      string     `json:"-"`
		RollNo      string     `json:"roll_no"`
		ClassName   string     `json:"class_name"`
		Batch       string     `json:"batch"`
		DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	}
)

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// ProfileID returns the role-specific profile ID, if any.
func (u *User) ProfileID() string {
	switch {
	case u.Teacher != nil:
		return u.Teacher.ID
	case u.Student != nil:
		return u.Student.ID
	}
	return ""
}

// NewUser contains information needed to create a new User and its
// role-specific profile.
type NewUser struct {
	Username  string `json:"username" validate:"required,min=3,alphanum_"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" validate:"required"`
	Role      Role   `json:"role" validate:"required,portalrole"`

	// teacher profile
	EmployeeID     string     `json:"employee_id"`
	Department     string     `json:"department"`
	JoiningDate    *time.Time `json:"joining_date"`
	Qualifications string     `json:"qualifications"`

	// student profile
	RollNo      string     `json:"roll_no"`
	ClassName   string     `json:"class_name"`
	Batch       string     `json:"batch"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.RollNo = core.CleanString(nu.RollNo)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if err := svc.CheckUniqueness(nu.Username, nu.Email); err != nil {
		return err
	}
	if nu.Role == RoleStudent && nu.RollNo != "" {
		return svc.CheckRollUniqueness(nu.RollNo)
	}
	return nil
}

// UpdateProfile defines the self-service fields an account owner may modify.
// Role-specific fields are applied only when they match the owner's role.
type UpdateProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`

	Department     string     `json:"department"`     // teachers
	Qualifications string     `json:"qualifications"` // teachers
	DateOfBirth    *time.Time `json:"date_of_birth"`  // students
}

func (up *UpdateProfile) Validate(origUsr User, validate *validator.Validate, svc *Service) error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.Department = core.CleanString(up.Department)

	email := core.CleanString(up.Email, true /* lower */)
	if email != "" {
		up.Email = email
	} else {
		up.Email = origUsr.Email
	}

	if err := validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckUniqueness(origUsr.Username, up.Email, origUsr)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Role     Role   `query:"role"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single User. ID wins; otherwise the first non-empty
// field is used.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail string
}
