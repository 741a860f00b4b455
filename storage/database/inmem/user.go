package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}
	for _, usr := range repo.db.users {
		if _, ok := excluded[usr.ID]; ok {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CheckRollUniqueness(ctx context.Context, rollNo string, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, profile := range repo.db.studentProfiles {
		if profile.RollNo == rollNo {
			return user.ErrRollNoExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	stored := usr
	stored.Teacher, stored.Student = nil, nil
	repo.db.users[usr.ID] = &stored
	return usr, nil
}

func (repo *userRepository) CreateTeacherProfile(ctx context.Context, profile user.TeacherProfile, exec ...core.DBExecutor) (user.TeacherProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	profile.ID = uuid.New().String()
	stored := profile
	repo.db.teacherProfiles[profile.ID] = &stored
	return profile, nil
}

func (repo *userRepository) CreateStudentProfile(ctx context.Context, profile user.StudentProfile, exec ...core.DBExecutor) (user.StudentProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	profile.ID = uuid.New().String()
	stored := profile
	repo.db.studentProfiles[profile.ID] = &stored
	return profile, nil
}

// loadUser copies the account and attaches its profile; callers must hold the
// lock.
func (repo *userRepository) loadUser(usr *user.User) user.User {
	out := *usr
	switch out.Role {
	case user.RoleTeacher:
		for _, profile := range repo.db.teacherProfiles {
			if profile.UserID == out.ID {
				p := *profile
				out.Teacher = &p
				break
			}
		}
	case user.RoleStudent:
		for _, profile := range repo.db.studentProfiles {
			if profile.UserID == out.ID {
				p := *profile
				out.Student = &p
				break
			}
		}
	}
	return out
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		switch {
		case filter.ID != "":
			if usr.ID == filter.ID {
				return repo.loadUser(usr), nil
			}
		case filter.Username != "":
			if usr.Username == filter.Username {
				return repo.loadUser(usr), nil
			}
		case filter.Email != "":
			if usr.Email == filter.Email {
				return repo.loadUser(usr), nil
			}
		case filter.UsernameOrEmail != "":
			if usr.Username == filter.UsernameOrEmail || usr.Email == filter.UsernameOrEmail {
				return repo.loadUser(usr), nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetTeacherProfile(ctx context.Context, id string, exec ...core.DBExecutor) (user.TeacherProfile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if profile, ok := repo.db.teacherProfiles[id]; ok {
		return *profile, nil
	}
	return user.TeacherProfile{}, user.ErrNotFound
}

func (repo *userRepository) GetStudentProfile(ctx context.Context, id string, exec ...core.DBExecutor) (user.StudentProfile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if profile, ok := repo.db.studentProfiles[id]; ok {
		return *profile, nil
	}
	return user.StudentProfile{}, user.ErrNotFound
}

func matchesSearch(usr *user.User, search string) bool {
	search = strings.ToLower(search)
	for _, field := range []string{usr.Username, usr.Email, usr.FirstName, usr.LastName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter != nil {
			if filter.Search != "" && !matchesSearch(usr, filter.Search) {
				continue
			}
			if filter.Role != "" && usr.Role != filter.Role {
				continue
			}
			if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
				continue
			}
		}
		users = append(users, repo.loadUser(usr))
	}

	// map iteration order is random; keep output deterministic
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	for _, ord := range ordering {
		if ord.Field == "created_at" {
			asc := ord.Ascending
			sort.SliceStable(users, func(i, j int) bool {
				if asc {
					return users[i].CreatedAt.Before(users[j].CreatedAt)
				}
				return users[j].CreatedAt.Before(users[i].CreatedAt)
			})
		}
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	stored := usr
	stored.Teacher, stored.Student = nil, nil
	if stored.PasswordHash == nil {
		stored.PasswordHash = orig.PasswordHash
	}
	repo.db.users[usr.ID] = &stored
	return usr, nil
}

func (repo *userRepository) UpdateTeacherProfile(ctx context.Context, profile user.TeacherProfile, exec ...core.DBExecutor) (user.TeacherProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teacherProfiles[profile.ID]; !ok {
		return user.TeacherProfile{}, user.ErrNotFound
	}
	stored := profile
	repo.db.teacherProfiles[profile.ID] = &stored
	return profile, nil
}

func (repo *userRepository) UpdateStudentProfile(ctx context.Context, profile user.StudentProfile, exec ...core.DBExecutor) (user.StudentProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.studentProfiles[profile.ID]; !ok {
		return user.StudentProfile{}, user.ErrNotFound
	}
	stored := profile
	repo.db.studentProfiles[profile.ID] = &stored
	return profile, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for pid, profile := range repo.db.teacherProfiles {
		if profile.UserID != id {
			continue
		}
		for cid, crs := range repo.db.courses {
			if crs.TeacherID == pid {
				repo.db.deleteCourseCascade(cid)
			}
		}
		for aid, ann := range repo.db.announcements {
			if ann.TeacherID == pid {
				delete(repo.db.announcements, aid)
			}
		}
		delete(repo.db.teacherProfiles, pid)
	}
	for pid, profile := range repo.db.studentProfiles {
		if profile.UserID != id {
			continue
		}
		for sid, sub := range repo.db.submissions {
			if sub.StudentID == pid {
				delete(repo.db.submissions, sid)
			}
		}
		for rid, res := range repo.db.results {
			if res.StudentID == pid {
				delete(repo.db.results, rid)
			}
		}
		for aid, att := range repo.db.attendance {
			if att.StudentID == pid {
				delete(repo.db.attendance, aid)
			}
		}
		delete(repo.db.studentProfiles, pid)
	}
	delete(repo.db.users, id)
	return nil
}

func (repo *userRepository) CountByRole(ctx context.Context, role user.Role, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, usr := range repo.db.users {
		if usr.Role == role {
			count++
		}
	}
	return count, nil
}
