package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"

	echoapi "github.com/shulehq/shule/apps/api/echo"
	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/assignment"
	"github.com/shulehq/shule/core/course"
	"github.com/shulehq/shule/core/record"
	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/user"
	emailsvc "github.com/shulehq/shule/services/email"
	"github.com/shulehq/shule/services/filestore"
	logsvc "github.com/shulehq/shule/services/logger"
	inmemdb "github.com/shulehq/shule/storage/database/inmem"
	testutil "github.com/shulehq/shule/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type testApp struct {
	app  http.Handler
	conf *core.Config

	usrRepo user.Repository
	crsRepo course.Repository
	asgRepo assignment.Repository
	recRepo record.Repository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := testutil.NewConfig()
	conf.FileStore.Root = t.TempDir()

	db := inmemdb.NewDB()
	a := &testApp{
		conf:    conf,
		usrRepo: inmemdb.NewUserRepository(db),
		crsRepo: inmemdb.NewCourseRepository(db),
		asgRepo: inmemdb.NewAssignmentRepository(db),
		recRepo: inmemdb.NewRecordRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	files := filestore.NewDiskStore(conf)
	validate, translator := testutil.NewValidator()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	a.app = echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        user.NewService(nil, a.usrRepo, mailSvc, conf),
		CourseSvc:      course.NewService(a.crsRepo, a.usrRepo, files),
		AssignmentSvc:  assignment.NewService(a.asgRepo, a.crsRepo, files),
		RecordSvc:      record.NewService(a.recRepo, a.crsRepo, a.usrRepo),
		ReportSvc:      report.NewService(a.usrRepo, a.crsRepo, a.asgRepo, a.recRepo),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return a
}

func (a *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := echoapi.GenerateToken(a.conf, echoapi.GetUserClaims(a.conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

// do runs the request against the app and returns the recorded response.
func (a *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.app.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doMultipart(t *testing.T, method, path, token string, form *multipartForm) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, &form.buf)
	req.Header.Set(echo.HeaderContentType, form.writer.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

// multipartForm builds a multipart/form-data request body.
type multipartForm struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(t *testing.T, name, value string) *multipartForm {
	t.Helper()

	if err := f.writer.WriteField(name, value); err != nil {
		t.Fatalf("field(%s): %v", name, err)
	}
	return f
}

func (f *multipartForm) file(t *testing.T, name, filename, content string) *multipartForm {
	t.Helper()

	part, err := f.writer.CreateFormFile(name, filename)
	if err != nil {
		t.Fatalf("file(%s): %v", filename, err)
	}
	if _, err = io.WriteString(part, content); err != nil {
		t.Fatalf("file(%s): %v", filename, err)
	}
	return f
}

func (f *multipartForm) close(t *testing.T) *multipartForm {
	t.Helper()

	if err := f.writer.Close(); err != nil {
		t.Fatalf("close(): %v", err)
	}
	return f
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decodeBody(%s): %v", rec.Body.String(), err)
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func checkErrBody(t *testing.T, rec *httptest.ResponseRecorder, want httpErr) {
	t.Helper()

	var got httpErr
	decodeBody(t, rec, &got)
	if got != want {
		t.Errorf("body = %+v, want %+v", got, want)
	}
}
