package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/record"
	"github.com/shulehq/shule/core/user"
)

const recentLimit = 5

type (
	// StudentDashboard is everything the student landing page shows.
	StudentDashboard struct {
		Results           []record.Result         `json:"results"`
		Attendance        []record.Attendance     `json:"attendance"`
		Assignments       []assignment.Assignment `json:"assignments"`
		Submissions       []assignment.Submission `json:"submissions"`
		PendingCount      int                     `json:"pending_count"`
		AttendancePercent float64                 `json:"attendance_percent"`
		AvgInternal       float64                 `json:"avg_internal"`
		AvgFinal          float64                 `json:"avg_final"`
	}

	// StudentAnalytics backs the marks analytics page.
	StudentAnalytics struct {
		AvgInternal float64 `json:"avg_internal"`
		AvgFinal    float64 `json:"avg_final"`
		OverallAvg  float64 `json:"overall_avg"`
		MeanMarks   float64 `json:"mean_marks"`
	}

	// StudentRow is one student line in the teacher's marksheet view.
	StudentRow struct {
		StudentID         string                          `json:"student_id"`
		RollNo            string                          `json:"roll_no"`
		Name              string                          `json:"name"`
		ClassName         string                          `json:"class_name"`
		Results           map[record.ExamType]ResultEntry `json:"results"`
		Grade             Grade                           `json:"grade"`
		AttendancePercent float64                         `json:"attendance_percent"`
	}

	TeacherStats struct {
		TotalStudents    int `json:"total_students"`
		TotalCourses     int `json:"total_courses"`
		TotalAssignments int `json:"total_assignments"`
		TotalSubmissions int `json:"total_submissions"`
	}

	// TeacherDashboard is everything the teacher landing page shows.
	TeacherDashboard struct {
		Courses       []course.Course       `json:"courses"`
		Students      []StudentRow          `json:"students"`
		Announcements []course.Announcement `json:"announcements"`
		Stats         TeacherStats          `json:"stats"`
	}

	// AdminStats backs the admin landing page counters.
	AdminStats struct {
		TotalStudents       int                   `json:"total_students"`
		TotalTeachers       int                   `json:"total_teachers"`
		TotalCourses        int                   `json:"total_courses"`
		TotalAssignments    int                   `json:"total_assignments"`
		TotalSubmissions    int                   `json:"total_submissions"`
		TotalResults        int                   `json:"total_results"`
		TotalAnnouncements  int                   `json:"total_announcements"`
		RecentStudents      []user.User           `json:"recent_students"`
		RecentTeachers      []user.User           `json:"recent_teachers"`
		RecentAnnouncements []course.Announcement `json:"recent_announcements"`
	}

	// CourseStat is one course line in the admin report.
	CourseStat struct {
		Course      course.Course `json:"course"`
		Students    int           `json:"students"` // distinct students with attendance on the course
		Assignments int           `json:"assignments"`
		Submissions int           `json:"submissions"`
	}

	AdminReport struct {
		TotalStudents int          `json:"total_students"`
		TotalTeachers int          `json:"total_teachers"`
		TotalCourses  int          `json:"total_courses"`
		CourseStats   []CourseStat `json:"course_stats"`
	}

	Service struct {
		users       user.Repository
		courses     course.Repository
		assignments assignment.Repository
		records     record.Repository
	}
)

func NewService(users user.Repository, courses course.Repository, assignments assignment.Repository, records record.Repository) *Service {
	return &Service{users: users, courses: courses, assignments: assignments, records: records}
}

func (svc *Service) StudentDashboard(ctx context.Context, studentID string) (StudentDashboard, error) {
	results, err := svc.records.QueryResults(ctx, &record.QueryFilter{StudentID: studentID})
	if err != nil {
		return StudentDashboard{}, errors.Wrap(err, "loading results")
	}
	attendance, err := svc.records.QueryAttendance(ctx, &record.QueryFilter{StudentID: studentID})
	if err != nil {
		return StudentDashboard{}, errors.Wrap(err, "loading attendance")
	}
	assignments, err := svc.assignments.QueryAssignments(ctx, nil)
	if err != nil {
		return StudentDashboard{}, errors.Wrap(err, "loading assignments")
	}
	submissions, err := svc.assignments.QuerySubmissions(ctx, &assignment.SubmissionFilter{StudentID: studentID})
	if err != nil {
		return StudentDashboard{}, errors.Wrap(err, "loading submissions")
	}

	avgInternal, avgFinal, _ := Averages(results)
	return StudentDashboard{
		Results:           results,
		Attendance:        attendance,
		Assignments:       assignments,
		Submissions:       submissions,
		PendingCount:      len(PendingAssignments(assignments, submissions)),
		AttendancePercent: AttendancePercent(attendance),
		AvgInternal:       avgInternal,
		AvgFinal:          avgFinal,
	}, nil
}

func (svc *Service) StudentAnalytics(ctx context.Context, studentID string) (StudentAnalytics, error) {
	results, err := svc.records.QueryResults(ctx, &record.QueryFilter{StudentID: studentID})
	if err != nil {
		return StudentAnalytics{}, errors.Wrap(err, "loading results")
	}
	avgInternal, avgFinal, overall := Averages(results)
	return StudentAnalytics{
		AvgInternal: avgInternal,
		AvgFinal:    avgFinal,
		OverallAvg:  overall,
		MeanMarks:   MeanMarks(results),
	}, nil
}

// TeacherDashboard assembles the marksheet rows for every student, scoped to
// the acting teacher's courses.
func (svc *Service) TeacherDashboard(ctx context.Context, teacherID string) (TeacherDashboard, error) {
	courses, err := svc.courses.QueryCourses(ctx, &course.QueryFilter{TeacherID: teacherID})
	if err != nil {
		return TeacherDashboard{}, errors.Wrap(err, "loading courses")
	}
	students, err := svc.users.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleStudent}, nil)
	if err != nil {
		return TeacherDashboard{}, errors.Wrap(err, "loading students")
	}
	results, err := svc.records.QueryResults(ctx, &record.QueryFilter{TeacherID: teacherID})
	if err != nil {
		return TeacherDashboard{}, errors.Wrap(err, "loading results")
	}
	attendance, err := svc.records.QueryAttendance(ctx, &record.QueryFilter{TeacherID: teacherID})
	if err != nil {
		return TeacherDashboard{}, errors.Wrap(err, "loading attendance")
	}
	announcements, err := svc.courses.QueryAnnouncements(ctx, &course.AnnouncementFilter{TeacherID: teacherID})
	if err != nil {
		return TeacherDashboard{}, errors.Wrap(err, "loading announcements")
	}
	totalAsgs, err := svc.assignments.CountAssignments(ctx, &assignment.QueryFilter{TeacherID: teacherID})
	if err != nil {
		return TeacherDashboard{}, errors.Wrap(err, "counting assignments")
	}
	totalSubs, err := svc.assignments.CountSubmissions(ctx, &assignment.SubmissionFilter{TeacherID: teacherID})
	if err != nil {
		return TeacherDashboard{}, errors.Wrap(err, "counting submissions")
	}

	resultsByStudent := make(map[string][]record.Result)
	for _, res := range results {
		resultsByStudent[res.StudentID] = append(resultsByStudent[res.StudentID], res)
	}
	attByStudent := make(map[string][]record.Attendance)
	for _, att := range attendance {
		attByStudent[att.StudentID] = append(attByStudent[att.StudentID], att)
	}

	rows := make([]StudentRow, 0, len(students))
	for _, std := range students {
		row := StudentRow{
			StudentID:         std.ID,
			Name:              std.FullName(),
			Results:           ResultsByExamType(resultsByStudent[std.ID]),
			Grade:             GradeForResults(resultsByStudent[std.ID]),
			AttendancePercent: AttendancePercent(attByStudent[std.ID]),
		}
		if std.Student != nil {
			row.RollNo = std.Student.RollNo
			row.ClassName = std.Student.ClassName
		}
		rows = append(rows, row)
	}

	return TeacherDashboard{
		Courses:       courses,
		Students:      rows,
		Announcements: announcements,
		Stats: TeacherStats{
			TotalStudents:    len(students),
			TotalCourses:     len(courses),
			TotalAssignments: totalAsgs,
			TotalSubmissions: totalSubs,
		},
	}, nil
}

func (svc *Service) AdminStats(ctx context.Context) (AdminStats, error) {
	stats := AdminStats{}
	var err error

	if stats.TotalStudents, err = svc.users.CountByRole(ctx, user.RoleStudent); err != nil {
		return AdminStats{}, errors.Wrap(err, "counting students")
	}
	if stats.TotalTeachers, err = svc.users.CountByRole(ctx, user.RoleTeacher); err != nil {
		return AdminStats{}, errors.Wrap(err, "counting teachers")
	}
	if stats.TotalCourses, err = svc.courses.CountCourses(ctx); err != nil {
		return AdminStats{}, errors.Wrap(err, "counting courses")
	}
	if stats.TotalAssignments, err = svc.assignments.CountAssignments(ctx, nil); err != nil {
		return AdminStats{}, errors.Wrap(err, "counting assignments")
	}
	if stats.TotalSubmissions, err = svc.assignments.CountSubmissions(ctx, nil); err != nil {
		return AdminStats{}, errors.Wrap(err, "counting submissions")
	}
	if stats.TotalResults, err = svc.records.CountResults(ctx, nil); err != nil {
		return AdminStats{}, errors.Wrap(err, "counting results")
	}
	if stats.TotalAnnouncements, err = svc.courses.CountAnnouncements(ctx); err != nil {
		return AdminStats{}, errors.Wrap(err, "counting announcements")
	}

	ordering := []core.DBOrdering{{Field: "created_at", Ascending: false}}
	students, err := svc.users.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleStudent}, ordering)
	if err != nil {
		return AdminStats{}, errors.Wrap(err, "loading recent students")
	}
	stats.RecentStudents = firstN(students, recentLimit)
	teachers, err := svc.users.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleTeacher}, ordering)
	if err != nil {
		return AdminStats{}, errors.Wrap(err, "loading recent teachers")
	}
	stats.RecentTeachers = firstN(teachers, recentLimit)
	if stats.RecentAnnouncements, err = svc.courses.QueryAnnouncements(ctx, &course.AnnouncementFilter{Limit: recentLimit}); err != nil {
		return AdminStats{}, errors.Wrap(err, "loading recent announcements")
	}
	return stats, nil
}

// AdminReport is the per-course breakdown behind the printable report page.
func (svc *Service) AdminReport(ctx context.Context) (AdminReport, error) {
	rep := AdminReport{}
	var err error

	if rep.TotalStudents, err = svc.users.CountByRole(ctx, user.RoleStudent); err != nil {
		return AdminReport{}, errors.Wrap(err, "counting students")
	}
	if rep.TotalTeachers, err = svc.users.CountByRole(ctx, user.RoleTeacher); err != nil {
		return AdminReport{}, errors.Wrap(err, "counting teachers")
	}
	courses, err := svc.courses.QueryCourses(ctx, nil)
	if err != nil {
		return AdminReport{}, errors.Wrap(err, "loading courses")
	}
	rep.TotalCourses = len(courses)

	rep.CourseStats = make([]CourseStat, 0, len(courses))
	for _, crs := range courses {
		attendance, err := svc.records.QueryAttendance(ctx, &record.QueryFilter{CourseID: crs.ID})
		if err != nil {
			return AdminReport{}, errors.Wrap(err, "loading course attendance")
		}
		asgs, err := svc.assignments.CountAssignments(ctx, &assignment.QueryFilter{CourseID: crs.ID})
		if err != nil {
			return AdminReport{}, errors.Wrap(err, "counting course assignments")
		}
		subs, err := svc.assignments.CountSubmissions(ctx, &assignment.SubmissionFilter{CourseID: crs.ID})
		if err != nil {
			return AdminReport{}, errors.Wrap(err, "counting course submissions")
		}
		rep.CourseStats = append(rep.CourseStats, CourseStat{
			Course:      crs,
			Students:    EnrollmentCount(attendance),
			Assignments: asgs,
			Submissions: subs,
		})
	}
	return rep, nil
}

func firstN(users []user.User, n int) []user.User {
	if len(users) > n {
		return users[:n]
	}
	return users
}
