// Package inmemdb provides map-backed repositories for tests and local runs
// without PostgreSQL. All tables share one lock so multi-row writes stay
// atomic.
package inmemdb

import (
	"sync"

	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/record"
	"github.com/shulehq/shule/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users           map[string]*user.User
	teacherProfiles map[string]*user.TeacherProfile
	studentProfiles map[string]*user.StudentProfile
	courses         map[string]*course.Course
	courseFiles     map[string]*course.CourseFile
	announcements   map[string]*course.Announcement
	assignments     map[string]*assignment.Assignment
	submissions     map[string]*assignment.Submission
	results         map[string]*record.Result
	attendance      map[string]*record.Attendance
}

func NewDB() *DB {
	return &DB{
		users:           make(map[string]*user.User),
		teacherProfiles: make(map[string]*user.TeacherProfile),
		studentProfiles: make(map[string]*user.StudentProfile),
		courses:         make(map[string]*course.Course),
		courseFiles:     make(map[string]*course.CourseFile),
		announcements:   make(map[string]*course.Announcement),
		assignments:     make(map[string]*assignment.Assignment),
		submissions:     make(map[string]*assignment.Submission),
		results:         make(map[string]*record.Result),
		attendance:      make(map[string]*record.Attendance),
	}
}

// teacherOwnsCourse reports course ownership; callers must hold the lock.
func (db *DB) teacherOwnsCourse(teacherID, courseID string) bool {
	crs, ok := db.courses[courseID]
	return ok && crs.TeacherID == teacherID
}

// deleteCourseCascade removes a course and everything hanging off it; callers
// must hold the write lock.
func (db *DB) deleteCourseCascade(courseID string) {
	for id, file := range db.courseFiles {
		if file.CourseID == courseID {
			delete(db.courseFiles, id)
		}
	}
	for id, asg := range db.assignments {
		if asg.CourseID == courseID {
			for subID, sub := range db.submissions {
				if sub.AssignmentID == asg.ID {
					delete(db.submissions, subID)
				}
			}
			delete(db.assignments, id)
		}
	}
	for id, res := range db.results {
		if res.CourseID == courseID {
			delete(db.results, id)
		}
	}
	for id, att := range db.attendance {
		if att.CourseID == courseID {
			delete(db.attendance, id)
		}
	}
	delete(db.courses, courseID)
}
