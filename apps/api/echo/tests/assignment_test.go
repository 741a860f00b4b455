package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/user"
	testutil "github.com/shulehq/shule/tests"
)

func Test_assignmentApi_lifecycle(t *testing.T) {
	a := newTestApp(t)

	owner := testutil.CreateUser(t, a.usrRepo, "owner", "owner@test.cd", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, a.usrRepo, "other", "other@test.cd", "", user.RoleTeacher, true)
	hero := testutil.CreateUser(t, a.usrRepo, "hero", "hero@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, a.crsRepo, "CS101", "Intro to CS", owner.Teacher.ID)

	ownerToken := a.getToken(t, owner)
	otherToken := a.getToken(t, other)
	heroToken := a.getToken(t, hero)

	// students cannot post assignments
	form := newMultipartForm().
		field(t, "course_id", crs.ID).
		field(t, "title", "HW1").
		field(t, "description", "do exercises 1-10").
		field(t, "due_date", "2026-09-15").
		close(t)
	rec := a.doMultipart(t, http.MethodPost, "/v1/assignments", heroToken, form)
	checkCode(t, rec, http.StatusForbidden)

	// nor teachers on someone else's course
	form = newMultipartForm().
		field(t, "course_id", crs.ID).
		field(t, "title", "HW1").
		field(t, "description", "do exercises 1-10").
		field(t, "due_date", "2026-09-15").
		close(t)
	rec = a.doMultipart(t, http.MethodPost, "/v1/assignments", otherToken, form)
	checkCode(t, rec, http.StatusNotFound)

	// the owner can, with an attachment riding along
	form = newMultipartForm().
		field(t, "course_id", crs.ID).
		field(t, "title", "HW1").
		field(t, "description", "do exercises 1-10").
		field(t, "due_date", time.Now().UTC().Add(7*24*time.Hour).Format(time.RFC3339)).
		file(t, "file", "hw1.pdf", "questions").
		close(t)
	rec = a.doMultipart(t, http.MethodPost, "/v1/assignments", ownerToken, form)
	checkCode(t, rec, http.StatusCreated)
	var asg assignment.Assignment
	decodeBody(t, rec, &asg)
	if asg.Title != "HW1" || asg.FileRef == "" {
		t.Errorf("assignment = %+v", asg)
	}

	// a bad due date is rejected up front
	form = newMultipartForm().
		field(t, "course_id", crs.ID).
		field(t, "title", "HW2").
		field(t, "description", "more").
		field(t, "due_date", "next tuesday").
		close(t)
	rec = a.doMultipart(t, http.MethodPost, "/v1/assignments", ownerToken, form)
	checkCode(t, rec, http.StatusBadRequest)

	// students see the assignment
	rec = a.do(http.MethodGet, "/v1/assignments", heroToken)
	checkCode(t, rec, http.StatusOK)
	var asgs []assignment.Assignment
	decodeBody(t, rec, &asgs)
	if len(asgs) != 1 {
		t.Fatalf("assignments = %+v, want 1", asgs)
	}

	// the other teacher sees none
	rec = a.do(http.MethodGet, "/v1/assignments", otherToken)
	checkCode(t, rec, http.StatusOK)
	asgs = nil
	decodeBody(t, rec, &asgs)
	if len(asgs) != 0 {
		t.Errorf("assignments = %+v, want none", asgs)
	}

	// the student submits; the submission stays Pending until graded
	form = newMultipartForm().file(t, "file", "answers.pdf", "my answers").close(t)
	rec = a.doMultipart(t, http.MethodPost, "/v1/assignments/"+asg.ID+"/submissions", heroToken, form)
	checkCode(t, rec, http.StatusCreated)
	var sub assignment.Submission
	decodeBody(t, rec, &sub)
	if sub.Status != assignment.StatusPending {
		t.Errorf("status = %s, want %s", sub.Status, assignment.StatusPending)
	}
	if sub.StudentID != hero.Student.ID || sub.FileRef == "" {
		t.Errorf("submission = %+v", sub)
	}

	// grading is scoped to the owning teacher
	gradeBody := marshalObj(t, map[string]string{"feedback": "good work", "status": "Graded"})
	rec = a.do(http.MethodPut, "/v1/submissions/"+sub.ID+"/grade", otherToken, gradeBody)
	checkCode(t, rec, http.StatusNotFound)

	rec = a.do(http.MethodPut, "/v1/submissions/"+sub.ID+"/grade", ownerToken, gradeBody)
	checkCode(t, rec, http.StatusOK)
	var graded assignment.Submission
	decodeBody(t, rec, &graded)
	if graded.Status != assignment.StatusGraded || graded.Feedback != "good work" {
		t.Errorf("graded = %+v", graded)
	}

	// an unknown status is rejected
	rec = a.do(http.MethodPut, "/v1/submissions/"+sub.ID+"/grade", ownerToken,
		marshalObj(t, map[string]string{"status": "Perfect"}))
	checkCode(t, rec, http.StatusBadRequest)

	// both sides list the submission
	rec = a.do(http.MethodGet, "/v1/submissions", heroToken)
	checkCode(t, rec, http.StatusOK)
	var subs []assignment.Submission
	decodeBody(t, rec, &subs)
	if len(subs) != 1 || subs[0].Status != assignment.StatusGraded {
		t.Errorf("student submissions = %+v", subs)
	}

	rec = a.do(http.MethodGet, "/v1/submissions", ownerToken)
	checkCode(t, rec, http.StatusOK)
	subs = nil
	decodeBody(t, rec, &subs)
	if len(subs) != 1 {
		t.Errorf("teacher submissions = %+v", subs)
	}

	rec = a.do(http.MethodGet, "/v1/submissions", otherToken)
	checkCode(t, rec, http.StatusOK)
	subs = nil
	decodeBody(t, rec, &subs)
	if len(subs) != 0 {
		t.Errorf("other teacher submissions = %+v, want none", subs)
	}
}
