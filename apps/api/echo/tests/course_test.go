package tests

import (
	"net/http"
	"testing"

	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/user"
	testutil "github.com/shulehq/shule/tests"
)

func Test_courseApi_create(t *testing.T) {
	a := newTestApp(t)

	admin := testutil.CreateUser(t, a.usrRepo, "boss", "boss@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	adminToken := a.getToken(t, admin)

	// admins only
	rec := a.do(http.MethodPost, "/v1/courses", a.getToken(t, teacher),
		marshalObj(t, map[string]string{"code": "CS101", "name": "Intro to CS", "teacher_id": teacher.Teacher.ID}))
	checkCode(t, rec, http.StatusForbidden)

	rec = a.do(http.MethodPost, "/v1/courses", adminToken,
		marshalObj(t, map[string]string{"code": "CS101", "name": "Intro to CS", "teacher_id": teacher.Teacher.ID}))
	checkCode(t, rec, http.StatusCreated)
	var crs course.Course
	decodeBody(t, rec, &crs)
	if crs.Code != "CS101" || crs.TeacherID != teacher.Teacher.ID {
		t.Errorf("created = %+v", crs)
	}

	// duplicate code comes back as a field map
	rec = a.do(http.MethodPost, "/v1/courses", adminToken,
		marshalObj(t, map[string]string{"code": "CS101", "name": "Other", "teacher_id": teacher.Teacher.ID}))
	checkCode(t, rec, http.StatusBadRequest)
	var fields map[string]string
	decodeBody(t, rec, &fields)
	if _, ok := fields["code"]; !ok {
		t.Errorf("body = %+v, want code field error", fields)
	}

	// unknown teacher too
	rec = a.do(http.MethodPost, "/v1/courses", adminToken,
		marshalObj(t, map[string]string{"code": "CS102", "name": "More CS", "teacher_id": "nope"}))
	checkCode(t, rec, http.StatusBadRequest)
	fields = nil
	decodeBody(t, rec, &fields)
	if _, ok := fields["teacher_id"]; !ok {
		t.Errorf("body = %+v, want teacher_id field error", fields)
	}
}

func Test_courseApi_query(t *testing.T) {
	a := newTestApp(t)

	owner := testutil.CreateUser(t, a.usrRepo, "owner", "owner@test.cd", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, a.usrRepo, "other", "other@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, a.usrRepo, "hero", "hero@test.cd", "", user.RoleStudent, true)
	testutil.CreateCourse(t, a.crsRepo, "CS101", "Intro to CS", owner.Teacher.ID)
	testutil.CreateCourse(t, a.crsRepo, "MA101", "Algebra", other.Teacher.ID)

	// students see all courses
	rec := a.do(http.MethodGet, "/v1/courses", a.getToken(t, hero))
	checkCode(t, rec, http.StatusOK)
	var courses []course.Course
	decodeBody(t, rec, &courses)
	if len(courses) != 2 {
		t.Errorf("student sees %d courses, want 2", len(courses))
	}

	// teachers only their own
	rec = a.do(http.MethodGet, "/v1/courses", a.getToken(t, owner))
	checkCode(t, rec, http.StatusOK)
	courses = nil
	decodeBody(t, rec, &courses)
	if len(courses) != 1 || courses[0].Code != "CS101" {
		t.Errorf("teacher sees %+v, want [CS101]", courses)
	}
}

func Test_courseApi_material(t *testing.T) {
	a := newTestApp(t)

	owner := testutil.CreateUser(t, a.usrRepo, "owner", "owner@test.cd", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, a.usrRepo, "other", "other@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, a.crsRepo, "CS101", "Intro to CS", owner.Teacher.ID)

	body := marshalObj(t, map[string]string{"material": "chapter 1 notes"})

	// another teacher's update reads as not found
	rec := a.do(http.MethodPut, "/v1/courses/"+crs.ID+"/material", a.getToken(t, other), body)
	checkCode(t, rec, http.StatusNotFound)
	checkErrBody(t, rec, httpErr{Error: "course not found"})

	rec = a.do(http.MethodPut, "/v1/courses/"+crs.ID+"/material", a.getToken(t, owner), body)
	checkCode(t, rec, http.StatusOK)
	var updated course.Course
	decodeBody(t, rec, &updated)
	if updated.Material != "chapter 1 notes" {
		t.Errorf("material = %q", updated.Material)
	}

	rec = a.do(http.MethodPut, "/v1/courses/"+crs.ID+"/syllabus", a.getToken(t, owner),
		marshalObj(t, map[string]string{"syllabus": "week 1: basics"}))
	checkCode(t, rec, http.StatusOK)
}

func Test_courseApi_files(t *testing.T) {
	a := newTestApp(t)

	owner := testutil.CreateUser(t, a.usrRepo, "owner", "owner@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, a.crsRepo, "CS101", "Intro to CS", owner.Teacher.ID)
	token := a.getToken(t, owner)

	// the file part is required
	form := newMultipartForm().close(t)
	rec := a.doMultipart(t, http.MethodPost, "/v1/courses/"+crs.ID+"/files", token, form)
	checkCode(t, rec, http.StatusBadRequest)

	form = newMultipartForm().file(t, "file", "notes.pdf", "pdf bytes").close(t)
	rec = a.doMultipart(t, http.MethodPost, "/v1/courses/"+crs.ID+"/files", token, form)
	checkCode(t, rec, http.StatusCreated)
	var file course.CourseFile
	decodeBody(t, rec, &file)
	if file.FileName != "notes.pdf" || file.FileRef == "" {
		t.Errorf("file = %+v", file)
	}

	rec = a.do(http.MethodGet, "/v1/courses/"+crs.ID+"/files", token)
	checkCode(t, rec, http.StatusOK)
	var files []course.CourseFile
	decodeBody(t, rec, &files)
	if len(files) != 1 {
		t.Errorf("files = %+v, want 1", files)
	}
}

func Test_courseApi_announcements(t *testing.T) {
	a := newTestApp(t)

	admin := testutil.CreateUser(t, a.usrRepo, "boss", "boss@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, a.usrRepo, "hero", "hero@test.cd", "", user.RoleStudent, true)

	// teachers only
	rec := a.do(http.MethodPost, "/v1/announcements", a.getToken(t, hero),
		marshalObj(t, map[string]string{"message": "exam friday"}))
	checkCode(t, rec, http.StatusForbidden)

	rec = a.do(http.MethodPost, "/v1/announcements", a.getToken(t, teacher),
		marshalObj(t, map[string]string{"message": "exam friday"}))
	checkCode(t, rec, http.StatusCreated)
	var ann course.Announcement
	decodeBody(t, rec, &ann)
	if ann.Message != "exam friday" || ann.TeacherID != teacher.Teacher.ID {
		t.Errorf("announcement = %+v", ann)
	}

	// everyone logged in can read them
	rec = a.do(http.MethodGet, "/v1/announcements", a.getToken(t, hero))
	checkCode(t, rec, http.StatusOK)
	var anns []course.Announcement
	decodeBody(t, rec, &anns)
	if len(anns) != 1 {
		t.Errorf("announcements = %+v, want 1", anns)
	}

	// admins moderate
	rec = a.do(http.MethodDelete, "/v1/announcements/"+ann.ID, a.getToken(t, teacher))
	checkCode(t, rec, http.StatusForbidden)
	rec = a.do(http.MethodDelete, "/v1/announcements/"+ann.ID, a.getToken(t, admin))
	checkCode(t, rec, http.StatusNoContent)
	rec = a.do(http.MethodDelete, "/v1/announcements/"+ann.ID, a.getToken(t, admin))
	checkCode(t, rec, http.StatusNotFound)
}
