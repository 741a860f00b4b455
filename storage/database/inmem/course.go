package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Code == code {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = uuid.New().String()
	stored := crs
	repo.db.courses[crs.ID] = &stored
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, filter course.GetFilter, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	crs, ok := repo.db.courses[filter.ID]
	if !ok || (filter.TeacherID != "" && crs.TeacherID != filter.TeacherID) {
		return course.Course{}, course.ErrNotFound
	}
	return *crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if filter != nil && filter.TeacherID != "" && crs.TeacherID != filter.TeacherID {
			continue
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	stored := crs
	repo.db.courses[crs.ID] = &stored
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	repo.db.deleteCourseCascade(id)
	return nil
}

func (repo *courseRepository) CountCourses(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.courses), nil
}

func (repo *courseRepository) CreateFile(ctx context.Context, file course.CourseFile, exec ...core.DBExecutor) (course.CourseFile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	file.ID = uuid.New().String()
	stored := file
	repo.db.courseFiles[file.ID] = &stored
	return file, nil
}

func (repo *courseRepository) QueryFiles(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]course.CourseFile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var files []course.CourseFile
	for _, file := range repo.db.courseFiles {
		if file.CourseID == courseID {
			files = append(files, *file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[j].UploadedAt.Before(files[i].UploadedAt) })
	return files, nil
}

func (repo *courseRepository) CreateAnnouncement(ctx context.Context, ann course.Announcement, exec ...core.DBExecutor) (course.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ann.ID = uuid.New().String()
	stored := ann
	repo.db.announcements[ann.ID] = &stored
	return ann, nil
}

func (repo *courseRepository) QueryAnnouncements(ctx context.Context, filter *course.AnnouncementFilter, exec ...core.DBExecutor) ([]course.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var anns []course.Announcement
	for _, ann := range repo.db.announcements {
		if filter != nil && filter.TeacherID != "" && ann.TeacherID != filter.TeacherID {
			continue
		}
		anns = append(anns, *ann)
	}
	sort.Slice(anns, func(i, j int) bool { return anns[j].CreatedAt.Before(anns[i].CreatedAt) })
	if filter != nil && filter.Limit > 0 && len(anns) > filter.Limit {
		anns = anns[:filter.Limit]
	}
	return anns, nil
}

func (repo *courseRepository) DeleteAnnouncement(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.announcements[id]; !ok {
		return course.ErrAnnouncementNotFound
	}
	delete(repo.db.announcements, id)
	return nil
}

func (repo *courseRepository) CountAnnouncements(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.announcements), nil
}
