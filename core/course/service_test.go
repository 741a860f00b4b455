package course_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/user"
	"github.com/shulehq/shule/services/filestore"
	inmemdb "github.com/shulehq/shule/storage/database/inmem"
	testutil "github.com/shulehq/shule/tests"
)

func setup(t *testing.T) (*course.Service, course.Repository, user.Repository) {
	t.Helper()

	conf := testutil.NewConfig()
	conf.FileStore.Root = t.TempDir()

	db := inmemdb.NewDB()
	crsRepo := inmemdb.NewCourseRepository(db)
	usrRepo := inmemdb.NewUserRepository(db)
	svc := course.NewService(crsRepo, usrRepo, filestore.NewDiskStore(conf))
	return svc, crsRepo, usrRepo
}

func Test_Service_Create(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)

	crs, err := svc.Create(ctx, course.NewCourse{
		Code:      "CS101",
		Name:      "Intro to CS",
		TeacherID: teacher.Teacher.ID,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if crs.ID == "" || crs.TeacherID != teacher.Teacher.ID {
		t.Errorf("Create() = %+v", crs)
	}

	// unknown teacher comes back as a field error
	_, err = svc.Create(ctx, course.NewCourse{Code: "CS102", Name: "More CS", TeacherID: "nope"})
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Create() error = %T(%v), want *core.ValidationError", err, err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "teacher_id" {
		t.Errorf("Create() fields = %+v, want field teacher_id", vErr.Fields)
	}
}

func Test_NewCourse_Validate_codeUniqueness(t *testing.T) {
	svc, crsRepo, usrRepo := setup(t)
	validate, _ := testutil.NewValidator()

	teacher := testutil.CreateUser(t, usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", teacher.Teacher.ID)

	nc := course.NewCourse{Code: "CS101", Name: "Other", TeacherID: teacher.Teacher.ID}
	err := nc.Validate(validate, svc)
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Validate() error = %T(%v), want *core.ValidationError", err, err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "code" {
		t.Errorf("Validate() fields = %+v, want field code", vErr.Fields)
	}
}

func Test_Service_ownershipScoping(t *testing.T) {
	svc, crsRepo, usrRepo := setup(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "owner", "owner@test.cd", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, usrRepo, "other", "other@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", owner.Teacher.ID)

	if _, err := svc.GetOwned(ctx, owner.Teacher.ID, crs.ID); err != nil {
		t.Fatalf("GetOwned() failed: %v", err)
	}

	// another teacher's lookup does not reveal the course exists
	if _, err := svc.GetOwned(ctx, other.Teacher.ID, crs.ID); err != course.ErrNotFound {
		t.Errorf("GetOwned() error = %v, want %v", err, course.ErrNotFound)
	}
	if _, err := svc.UpdateMaterial(ctx, other.Teacher.ID, crs.ID, "notes"); err != course.ErrNotFound {
		t.Errorf("UpdateMaterial() error = %v, want %v", err, course.ErrNotFound)
	}

	got, err := svc.GetByID(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Material != "" {
		t.Errorf("Material = %q, want no write from the refused update", got.Material)
	}

	updated, err := svc.UpdateMaterial(ctx, owner.Teacher.ID, crs.ID, "notes")
	if err != nil {
		t.Fatalf("UpdateMaterial() failed: %v", err)
	}
	if updated.Material != "notes" {
		t.Errorf("Material = %q, want notes", updated.Material)
	}

	if _, err = svc.UpdateSyllabus(ctx, owner.Teacher.ID, crs.ID, "week 1: basics"); err != nil {
		t.Fatalf("UpdateSyllabus() failed: %v", err)
	}
	got, _ = svc.GetByID(ctx, crs.ID)
	if got.Syllabus != "week 1: basics" || got.Material != "notes" {
		t.Errorf("GetByID() = %+v", got)
	}
}

func Test_Service_AttachFile(t *testing.T) {
	svc, crsRepo, usrRepo := setup(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "owner", "owner@test.cd", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, usrRepo, "other", "other@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", owner.Teacher.ID)

	file, err := svc.AttachFile(ctx, owner.Teacher.ID, crs.ID, "notes.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("AttachFile() failed: %v", err)
	}
	if file.FileRef == "" || file.FileName != "notes.pdf" {
		t.Errorf("AttachFile() = %+v", file)
	}

	if _, err = svc.AttachFile(ctx, other.Teacher.ID, crs.ID, "x.pdf", strings.NewReader("x")); err != course.ErrNotFound {
		t.Errorf("AttachFile() error = %v, want %v", err, course.ErrNotFound)
	}

	files, err := svc.Files(ctx, owner.Teacher.ID, crs.ID)
	if err != nil {
		t.Fatalf("Files() failed: %v", err)
	}
	if len(files) != 1 || files[0].ID != file.ID {
		t.Errorf("Files() = %+v, want [%+v]", files, file)
	}
}

func Test_Service_announcements(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)

	// announcing requires a teacher profile
	if _, err := svc.Announce(ctx, "nope", course.NewAnnouncement{Message: "hi"}); !core.IsNotFound(err) {
		t.Errorf("Announce() error = %v, want not found", err)
	}

	first, err := svc.Announce(ctx, teacher.Teacher.ID, course.NewAnnouncement{Message: "exam friday"})
	if err != nil {
		t.Fatalf("Announce() failed: %v", err)
	}
	second, err := svc.Announce(ctx, teacher.Teacher.ID, course.NewAnnouncement{Message: "room change"})
	if err != nil {
		t.Fatalf("Announce() failed: %v", err)
	}

	all, err := svc.Announcements(ctx, nil)
	if err != nil {
		t.Fatalf("Announcements() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Announcements() = %d, want 2", len(all))
	}

	if err = svc.DeleteAnnouncement(ctx, first.ID); err != nil {
		t.Fatalf("DeleteAnnouncement() failed: %v", err)
	}
	if err = svc.DeleteAnnouncement(ctx, first.ID); err != course.ErrAnnouncementNotFound {
		t.Errorf("DeleteAnnouncement() error = %v, want %v", err, course.ErrAnnouncementNotFound)
	}

	all, _ = svc.Announcements(ctx, nil)
	if len(all) != 1 || all[0].ID != second.ID {
		t.Errorf("Announcements() = %+v, want [%+v]", all, second)
	}
}

func Test_Service_Delete(t *testing.T) {
	svc, crsRepo, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "prof", "prof@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "CS101", "Intro to CS", teacher.Teacher.ID)

	if err := svc.Delete(ctx, "nope"); err != course.ErrNotFound {
		t.Errorf("Delete(unknown) error = %v, want %v", err, course.ErrNotFound)
	}
	if err := svc.Delete(ctx, crs.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, crs.ID); err != course.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, course.ErrNotFound)
	}
}
