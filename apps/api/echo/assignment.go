package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/assignment"
)

type assignmentApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := assignmentApi{
		svc:      deps.AssignmentSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, teacherMiddleware())
	ag.GET("", api.query)
	ag.POST("/:id/submissions", api.submit, studentMiddleware())

	sg := g.Group("/submissions", jwt)
	sg.GET("", api.querySubmissions)
	sg.PUT("/:id/grade", api.grade, teacherMiddleware())
}

// openUpload returns the optional "file" multipart part; both return values
// are nil when the request carries none.
func openUpload(ctx echo.Context) (*multipart.FileHeader, io.ReadCloser, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, nil, nil
	}
	src, err := fh.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening upload")
	}
	return fh, src, nil
}

// parseDueDate accepts a full timestamp or a bare date.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Handlers

// create accepts a multipart form so the attachment rides along with the
// assignment fields.
func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	data := assignment.NewAssignment{
		CourseID:    ctx.FormValue("course_id"),
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
	}
	if raw := ctx.FormValue("due_date"); raw != "" {
		if data.DueDate, err = parseDueDate(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid due_date")
		}
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fh, src, err := openUpload(ctx)
	if err != nil {
		return err
	}
	var filename string
	var file io.Reader
	if fh != nil {
		defer func() { _ = src.Close() }()
		filename, file = fh.Filename, src
	}

	asg, err := api.svc.Create(ctx.Request().Context(), claims.ProfileID, data, filename, file)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

// query lists all assignments for students and admins; teachers only see
// those on their own courses.
func (api *assignmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var asgs []assignment.Assignment
	if claims.IsTeacher {
		asgs, err = api.svc.QueryForTeacher(ctx.Request().Context(), claims.ProfileID)
	} else {
		asgs, err = api.svc.QueryAll(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	fh, src, err := openUpload(ctx)
	if err != nil {
		return err
	}
	var filename string
	var file io.Reader
	if fh != nil {
		defer func() { _ = src.Close() }()
		filename, file = fh.Filename, src
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), claims.ProfileID, ctx.Param("id"), filename, file)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

// querySubmissions shows students their own submissions and teachers every
// submission on their courses.
func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var subs []assignment.Submission
	switch {
	case claims.IsStudent:
		subs, err = api.svc.SubmissionsForStudent(ctx.Request().Context(), claims.ProfileID)
	case claims.IsTeacher:
		subs, err = api.svc.SubmissionsForTeacher(ctx.Request().Context(), claims.ProfileID)
	default:
		return errHTTPForbidden
	}
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []assignment.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data assignment.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Grade(ctx.Request().Context(), claims.ProfileID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
