package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	asg.ID = uuid.New().String()
	stored := asg
	repo.db.assignments[asg.ID] = &stored
	return asg, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, filter assignment.GetFilter, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	asg, ok := repo.db.assignments[filter.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	if filter.TeacherID != "" && !repo.db.teacherOwnsCourse(filter.TeacherID, asg.CourseID) {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return *asg, nil
}

// matchAssignment applies the query filter; callers must hold the lock.
func (repo *assignmentRepository) matchAssignment(asg *assignment.Assignment, filter *assignment.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.CourseID != "" && asg.CourseID != filter.CourseID {
		return false
	}
	if filter.TeacherID != "" && !repo.db.teacherOwnsCourse(filter.TeacherID, asg.CourseID) {
		return false
	}
	return true
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var asgs []assignment.Assignment
	for _, asg := range repo.db.assignments {
		if repo.matchAssignment(asg, filter) {
			asgs = append(asgs, *asg)
		}
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[j].CreatedAt.Before(asgs[i].CreatedAt) })
	return asgs, nil
}

func (repo *assignmentRepository) CountAssignments(ctx context.Context, filter *assignment.QueryFilter, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, asg := range repo.db.assignments {
		if repo.matchAssignment(asg, filter) {
			count++
		}
	}
	return count, nil
}

func (repo *assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission, exec ...core.DBExecutor) (assignment.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	stored := sub
	repo.db.submissions[sub.ID] = &stored
	return sub, nil
}

func (repo *assignmentRepository) GetSubmission(ctx context.Context, filter assignment.SubmissionGetFilter, exec ...core.DBExecutor) (assignment.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sub, ok := repo.db.submissions[filter.ID]
	if !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	if filter.TeacherID != "" {
		asg, ok := repo.db.assignments[sub.AssignmentID]
		if !ok || !repo.db.teacherOwnsCourse(filter.TeacherID, asg.CourseID) {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
	}
	return *sub, nil
}

// matchSubmission applies the query filter; callers must hold the lock.
func (repo *assignmentRepository) matchSubmission(sub *assignment.Submission, filter *assignment.SubmissionFilter) bool {
	if filter == nil {
		return true
	}
	if filter.AssignmentID != "" && sub.AssignmentID != filter.AssignmentID {
		return false
	}
	if filter.StudentID != "" && sub.StudentID != filter.StudentID {
		return false
	}
	if filter.CourseID != "" || filter.TeacherID != "" {
		asg, ok := repo.db.assignments[sub.AssignmentID]
		if !ok {
			return false
		}
		if filter.CourseID != "" && asg.CourseID != filter.CourseID {
			return false
		}
		if filter.TeacherID != "" && !repo.db.teacherOwnsCourse(filter.TeacherID, asg.CourseID) {
			return false
		}
	}
	return true
}

func (repo *assignmentRepository) QuerySubmissions(ctx context.Context, filter *assignment.SubmissionFilter, exec ...core.DBExecutor) ([]assignment.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var subs []assignment.Submission
	for _, sub := range repo.db.submissions {
		if repo.matchSubmission(sub, filter) {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[j].SubmittedAt.Before(subs[i].SubmittedAt) })
	return subs, nil
}

func (repo *assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission, exec ...core.DBExecutor) (assignment.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.submissions[sub.ID]; !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	stored := sub
	repo.db.submissions[sub.ID] = &stored
	return sub, nil
}

func (repo *assignmentRepository) CountSubmissions(ctx context.Context, filter *assignment.SubmissionFilter, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, sub := range repo.db.submissions {
		if repo.matchSubmission(sub, filter) {
			count++
		}
	}
	return count, nil
}
