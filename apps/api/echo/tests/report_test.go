package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/shulehq/shule/core/record"
	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/user"
	testutil "github.com/shulehq/shule/tests"
)

func Test_reportApi_roleGuards(t *testing.T) {
	a := newTestApp(t)

	admin := testutil.CreateUser(t, a.usrRepo, "boss", "boss@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, a.usrRepo, "hero", "hero@test.cd", "", user.RoleStudent, true)

	tokens := map[string]string{
		"admin":   a.getToken(t, admin),
		"teacher": a.getToken(t, teacher),
		"student": a.getToken(t, hero),
	}

	tests := []struct {
		path    string
		allowed string
	}{
		{path: "/v1/reports/student", allowed: "student"},
		{path: "/v1/reports/student/analytics", allowed: "student"},
		{path: "/v1/reports/teacher", allowed: "teacher"},
		{path: "/v1/reports/admin", allowed: "admin"},
		{path: "/v1/reports/admin/stats", allowed: "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			for role, token := range tokens {
				rec := a.do(http.MethodGet, tt.path, token)
				if role == tt.allowed {
					checkCode(t, rec, http.StatusOK)
				} else {
					checkCode(t, rec, http.StatusForbidden)
				}
			}

			rec := a.do(http.MethodGet, tt.path, "")
			checkCode(t, rec, http.StatusUnauthorized)
		})
	}
}

func Test_reportApi_studentDashboard(t *testing.T) {
	a := newTestApp(t)

	teacher := testutil.CreateUser(t, a.usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, a.usrRepo, "hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, a.crsRepo, "CS101", "Intro to CS", teacher.Teacher.ID)

	testutil.CreateAssignment(t, a.asgRepo, crs.ID, "HW1", time.Now().UTC().Add(24*time.Hour))
	testutil.CreateResult(t, a.recRepo, hero.Student.ID, crs.ID, 80, record.ExamCAI)
	testutil.CreateResult(t, a.recRepo, hero.Student.ID, crs.ID, 90, record.ExamMSE)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateAttendance(t, a.recRepo, hero.Student.ID, crs.ID, day, record.StatusPresent)
	testutil.CreateAttendance(t, a.recRepo, hero.Student.ID, crs.ID, day.AddDate(0, 0, 1), record.StatusAbsent)

	rec := a.do(http.MethodGet, "/v1/reports/student", a.getToken(t, hero))
	checkCode(t, rec, http.StatusOK)
	var dash report.StudentDashboard
	decodeBody(t, rec, &dash)
	if len(dash.Results) != 2 || len(dash.Attendance) != 2 || len(dash.Assignments) != 1 {
		t.Errorf("dashboard = %+v", dash)
	}
	if dash.PendingCount != 1 || dash.AttendancePercent != 50 {
		t.Errorf("dashboard = pending %d, attendance %v", dash.PendingCount, dash.AttendancePercent)
	}

	rec = a.do(http.MethodGet, "/v1/reports/student/analytics", a.getToken(t, hero))
	checkCode(t, rec, http.StatusOK)
	var analytics report.StudentAnalytics
	decodeBody(t, rec, &analytics)
	if analytics.AvgInternal != 80 || analytics.AvgFinal != 90 || analytics.OverallAvg != 85 {
		t.Errorf("analytics = %+v", analytics)
	}
}

func Test_reportApi_teacherDashboard(t *testing.T) {
	a := newTestApp(t)

	teacher := testutil.CreateUser(t, a.usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, a.usrRepo, "hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, a.crsRepo, "CS101", "Intro to CS", teacher.Teacher.ID)
	testutil.CreateResult(t, a.recRepo, hero.Student.ID, crs.ID, 95, record.ExamCAI)

	rec := a.do(http.MethodGet, "/v1/reports/teacher", a.getToken(t, teacher))
	checkCode(t, rec, http.StatusOK)
	var dash report.TeacherDashboard
	decodeBody(t, rec, &dash)
	if len(dash.Courses) != 1 || dash.Stats.TotalStudents != 1 {
		t.Errorf("dashboard = %+v", dash)
	}
	if len(dash.Students) != 1 || dash.Students[0].Grade != report.GradeA {
		t.Errorf("students = %+v", dash.Students)
	}
}

func Test_reportApi_admin(t *testing.T) {
	a := newTestApp(t)

	admin := testutil.CreateUser(t, a.usrRepo, "boss", "boss@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, a.usrRepo, "hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, a.crsRepo, "CS101", "Intro to CS", teacher.Teacher.ID)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateAttendance(t, a.recRepo, hero.Student.ID, crs.ID, day, record.StatusPresent)

	rec := a.do(http.MethodGet, "/v1/reports/admin/stats", a.getToken(t, admin))
	checkCode(t, rec, http.StatusOK)
	var stats report.AdminStats
	decodeBody(t, rec, &stats)
	if stats.TotalStudents != 1 || stats.TotalTeachers != 1 || stats.TotalCourses != 1 {
		t.Errorf("stats = %+v", stats)
	}

	rec = a.do(http.MethodGet, "/v1/reports/admin", a.getToken(t, admin))
	checkCode(t, rec, http.StatusOK)
	var rep report.AdminReport
	decodeBody(t, rec, &rep)
	if len(rep.CourseStats) != 1 || rep.CourseStats[0].Students != 1 {
		t.Errorf("report = %+v", rep)
	}
}
