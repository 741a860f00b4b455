package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
)

type userRow struct {
	ID           string       `db:"id"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	FirstName    string       `db:"first_name"`
	LastName     string       `db:"last_name"`
	Role         string       `db:"role"`
	IsActive     bool         `db:"is_active"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    sql.NullTime `db:"created_at"`
	UpdatedAt    sql.NullTime `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

type teacherProfileRow struct {
	ID             string       `db:"id"`
	UserID         string       `db:"user_id"`
	EmployeeID     string       `db:"employee_id"`
	Department     string       `db:"department"`
	JoiningDate    sql.NullTime `db:"joining_date"`
	Qualifications string       `db:"qualifications"`
}

type studentProfileRow struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	RollNo      string       `db:"roll_no"`
	ClassName   string       `db:"class_name"`
	Batch       string       `db:"batch"`
	DateOfBirth sql.NullTime `db:"date_of_birth"`
}

func (row userRow) toUser() user.User {
	usr := user.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Role:         user.Role(row.Role),
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time
	}
	return usr
}

func (row teacherProfileRow) toProfile() user.TeacherProfile {
	profile := user.TeacherProfile{
		ID:             row.ID,
		UserID:         row.UserID,
		EmployeeID:     row.EmployeeID,
		Department:     row.Department,
		Qualifications: row.Qualifications,
	}
	if row.JoiningDate.Valid {
		t := row.JoiningDate.Time
		profile.JoiningDate = &t
	}
	return profile
}

func (row studentProfileRow) toProfile() user.StudentProfile {
	profile := user.StudentProfile{
		ID:        row.ID,
		UserID:    row.UserID,
		RollNo:    row.RollNo,
		ClassName: row.ClassName,
		Batch:     row.Batch,
	}
	if row.DateOfBirth.Valid {
		t := row.DateOfBirth.Time
		profile.DateOfBirth = &t
	}
	return profile
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	q := `SELECT username, email FROM user_account WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		var err error
		if q, args, err = sqlx.In(q+` AND id NOT IN (?)`, username, email, ids); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
	}

	db := getExec(repo.exec, exec)
	var rows []userRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if row.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(rows) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CheckRollUniqueness(ctx context.Context, rollNo string, exec ...core.DBExecutor) error {
	db := getExec(repo.exec, exec)
	var count int
	q := db.Rebind(`SELECT COUNT(*) FROM student_profile WHERE roll_no = ?`)
	if err := db.GetContext(ctx, &count, q, rollNo); err != nil {
		return errors.Wrap(err, "checking roll number uniqueness")
	}
	if count > 0 {
		return user.ErrRollNoExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO user_account (id, username, email, first_name, last_name, role, is_active, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q,
		usr.ID, usr.Username, usr.Email, usr.FirstName, usr.LastName, usr.Role, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) CreateTeacherProfile(ctx context.Context, profile user.TeacherProfile, exec ...core.DBExecutor) (user.TeacherProfile, error) {
	profile.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO teacher_profile (id, user_id, employee_id, department, joining_date, qualifications)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q,
		profile.ID, profile.UserID, profile.EmployeeID, profile.Department, profile.JoiningDate, profile.Qualifications)
	if err != nil {
		return user.TeacherProfile{}, errors.Wrap(err, "inserting teacher profile")
	}
	return profile, nil
}

func (repo userRepository) CreateStudentProfile(ctx context.Context, profile user.StudentProfile, exec ...core.DBExecutor) (user.StudentProfile, error) {
	profile.ID = uuid.New().String()
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		INSERT INTO student_profile (id, user_id, roll_no, class_name, batch, date_of_birth)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, q,
		profile.ID, profile.UserID, profile.RollNo, profile.ClassName, profile.Batch, profile.DateOfBirth)
	if err != nil {
		return user.StudentProfile{}, errors.Wrap(err, "inserting student profile")
	}
	return profile, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var cond string
	var arg interface{}
	switch {
	case filter.ID != "":
		cond, arg = `id = ?`, filter.ID
	case filter.Username != "":
		cond, arg = `username = ?`, filter.Username
	case filter.Email != "":
		cond, arg = `email = ?`, filter.Email
	case filter.UsernameOrEmail != "":
		cond, arg = `(username = ? OR email = ?)`, filter.UsernameOrEmail
	default:
		return user.User{}, user.ErrNotFound
	}

	db := getExec(repo.exec, exec)
	args := []interface{}{arg}
	if filter.UsernameOrEmail != "" {
		args = append(args, arg)
	}

	var row userRow
	q := db.Rebind(`SELECT * FROM user_account WHERE ` + cond)
	if err := db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}

	usr := row.toUser()
	if err := repo.attachProfile(ctx, db, &usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

// attachProfile loads the role-specific profile onto the account. A missing
// profile row is tolerated; admins never have one.
func (repo userRepository) attachProfile(ctx context.Context, db core.DBExecutor, usr *user.User) error {
	switch usr.Role {
	case user.RoleTeacher:
		var row teacherProfileRow
		q := db.Rebind(`SELECT * FROM teacher_profile WHERE user_id = ?`)
		if err := db.GetContext(ctx, &row, q, usr.ID); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return errors.Wrap(err, "getting teacher profile")
		}
		profile := row.toProfile()
		usr.Teacher = &profile
	case user.RoleStudent:
		var row studentProfileRow
		q := db.Rebind(`SELECT * FROM student_profile WHERE user_id = ?`)
		if err := db.GetContext(ctx, &row, q, usr.ID); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return errors.Wrap(err, "getting student profile")
		}
		profile := row.toProfile()
		usr.Student = &profile
	}
	return nil
}

func (repo userRepository) GetTeacherProfile(ctx context.Context, id string, exec ...core.DBExecutor) (user.TeacherProfile, error) {
	db := getExec(repo.exec, exec)
	var row teacherProfileRow
	q := db.Rebind(`SELECT * FROM teacher_profile WHERE id = ?`)
	if err := db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return user.TeacherProfile{}, user.ErrNotFound
		}
		return user.TeacherProfile{}, errors.Wrap(err, "getting teacher profile")
	}
	return row.toProfile(), nil
}

func (repo userRepository) GetStudentProfile(ctx context.Context, id string, exec ...core.DBExecutor) (user.StudentProfile, error) {
	db := getExec(repo.exec, exec)
	var row studentProfileRow
	q := db.Rebind(`SELECT * FROM student_profile WHERE id = ?`)
	if err := db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return user.StudentProfile{}, user.ErrNotFound
		}
		return user.StudentProfile{}, errors.Wrap(err, "getting student profile")
	}
	return row.toProfile(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	q := `SELECT * FROM user_account`
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.Search != "" {
			conds = append(conds, `(username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)`)
			pattern := "%" + filter.Search + "%"
			args = append(args, pattern, pattern, pattern, pattern)
		}
		if filter.Role != "" {
			conds = append(conds, `role = ?`)
			args = append(args, filter.Role)
		}
		if filter.IsActive != nil {
			conds = append(conds, `is_active = ?`)
			args = append(args, *filter.IsActive)
		}
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	if len(ordering) > 0 {
		parts := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			parts = append(parts, ord.String())
		}
		q += ` ORDER BY ` + strings.Join(parts, `, `)
	}

	db := getExec(repo.exec, exec)
	var rows []userRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr := row.toUser()
		if err := repo.attachProfile(ctx, db, &usr); err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		UPDATE user_account
		SET username = ?, email = ?, first_name = ?, last_name = ?, is_active = ?, password_hash = ?, updated_at = ?, last_login = ?
		WHERE id = ?`)
	lastLogin := sql.NullTime{Time: usr.LastLogin, Valid: !usr.LastLogin.IsZero()}
	res, err := db.ExecContext(ctx, q,
		usr.Username, usr.Email, usr.FirstName, usr.LastName, usr.IsActive, usr.PasswordHash, usr.UpdatedAt, lastLogin, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) UpdateTeacherProfile(ctx context.Context, profile user.TeacherProfile, exec ...core.DBExecutor) (user.TeacherProfile, error) {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		UPDATE teacher_profile
		SET employee_id = ?, department = ?, joining_date = ?, qualifications = ?
		WHERE id = ?`)
	res, err := db.ExecContext(ctx, q,
		profile.EmployeeID, profile.Department, profile.JoiningDate, profile.Qualifications, profile.ID)
	if err != nil {
		return user.TeacherProfile{}, errors.Wrap(err, "updating teacher profile")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.TeacherProfile{}, user.ErrNotFound
	}
	return profile, nil
}

func (repo userRepository) UpdateStudentProfile(ctx context.Context, profile user.StudentProfile, exec ...core.DBExecutor) (user.StudentProfile, error) {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`
		UPDATE student_profile
		SET roll_no = ?, class_name = ?, batch = ?, date_of_birth = ?
		WHERE id = ?`)
	res, err := db.ExecContext(ctx, q,
		profile.RollNo, profile.ClassName, profile.Batch, profile.DateOfBirth, profile.ID)
	if err != nil {
		return user.StudentProfile{}, errors.Wrap(err, "updating student profile")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.StudentProfile{}, user.ErrNotFound
	}
	return profile, nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id string, exec ...core.DBExecutor) error {
	db := getExec(repo.exec, exec)
	q := db.Rebind(`DELETE FROM user_account WHERE id = ?`)
	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return nil
}

func (repo userRepository) CountByRole(ctx context.Context, role user.Role, exec ...core.DBExecutor) (int, error) {
	db := getExec(repo.exec, exec)
	var count int
	q := db.Rebind(`SELECT COUNT(*) FROM user_account WHERE role = ?`)
	if err := db.GetContext(ctx, &count, q, role); err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("counting %s accounts", role))
	}
	return count, nil
}
