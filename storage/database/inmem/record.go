package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/record"
)

type recordRepository struct {
	db *DB
}

var _ record.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(db *DB) *recordRepository {
	return &recordRepository{db: db}
}

// matches applies the query filter; callers must hold the lock.
func (repo *recordRepository) matches(studentID, courseID string, filter *record.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.StudentID != "" && studentID != filter.StudentID {
		return false
	}
	if filter.CourseID != "" && courseID != filter.CourseID {
		return false
	}
	if filter.TeacherID != "" && !repo.db.teacherOwnsCourse(filter.TeacherID, courseID) {
		return false
	}
	return true
}

func (repo *recordRepository) CreateResult(ctx context.Context, res record.Result, exec ...core.DBExecutor) (record.Result, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	res.ID = uuid.New().String()
	stored := res
	repo.db.results[res.ID] = &stored
	return res, nil
}

func (repo *recordRepository) QueryResults(ctx context.Context, filter *record.QueryFilter, exec ...core.DBExecutor) ([]record.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var results []record.Result
	for _, res := range repo.db.results {
		if repo.matches(res.StudentID, res.CourseID, filter) {
			results = append(results, *res)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (repo *recordRepository) CountResults(ctx context.Context, filter *record.QueryFilter, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, res := range repo.db.results {
		if repo.matches(res.StudentID, res.CourseID, filter) {
			count++
		}
	}
	return count, nil
}

func (repo *recordRepository) CreateAttendance(ctx context.Context, att record.Attendance, exec ...core.DBExecutor) (record.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	att.ID = uuid.New().String()
	stored := att
	repo.db.attendance[att.ID] = &stored
	return att, nil
}

func (repo *recordRepository) QueryAttendance(ctx context.Context, filter *record.QueryFilter, exec ...core.DBExecutor) ([]record.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []record.Attendance
	for _, att := range repo.db.attendance {
		if repo.matches(att.StudentID, att.CourseID, filter) {
			records = append(records, *att)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[j].Date.Before(records[i].Date) })
	return records, nil
}
