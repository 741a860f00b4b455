package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/record"
)

type recordApi struct {
	svc      *record.Service
	validate *validator.Validate
}

func registerRecordAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := recordApi{
		svc:      deps.RecordSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/results", jwt)
	rg.POST("", api.enterResult, teacherMiddleware())
	rg.GET("", api.queryResults)

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.markAttendance, teacherMiddleware())
	ag.GET("", api.queryAttendance)
}

// Handlers

func (api *recordApi) enterResult(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data record.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.EnterResult(ctx.Request().Context(), claims.ProfileID, data)
	if err != nil {
		return errors.Wrap(err, "entering result")
	}
	return ctx.JSON(http.StatusCreated, res)
}

// queryResults shows students their own results and teachers those on their
// courses.
func (api *recordApi) queryResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var results []record.Result
	switch {
	case claims.IsStudent:
		results, err = api.svc.ResultsForStudent(ctx.Request().Context(), claims.ProfileID)
	case claims.IsTeacher:
		results, err = api.svc.ResultsForTeacher(ctx.Request().Context(), claims.ProfileID)
	default:
		return errHTTPForbidden
	}
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []record.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *recordApi) markAttendance(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data record.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.MarkAttendance(ctx.Request().Context(), claims.ProfileID, data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *recordApi) queryAttendance(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var records []record.Attendance
	switch {
	case claims.IsStudent:
		records, err = api.svc.AttendanceForStudent(ctx.Request().Context(), claims.ProfileID)
	case claims.IsTeacher:
		records, err = api.svc.AttendanceForTeacher(ctx.Request().Context(), claims.ProfileID)
	default:
		return errHTTPForbidden
	}
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []record.Attendance{}
	}
	return ctx.JSON(http.StatusOK, records)
}
