package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{svc: deps.ReportSvc}

	rg := g.Group("/reports", jwt)
	rg.GET("/student", api.studentDashboard, studentMiddleware())
	rg.GET("/student/analytics", api.studentAnalytics, studentMiddleware())
	rg.GET("/teacher", api.teacherDashboard, teacherMiddleware())
	rg.GET("/admin", api.adminReport, adminMiddleware())
	rg.GET("/admin/stats", api.adminStats, adminMiddleware())
}

// Handlers

func (api *reportApi) studentDashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dash, err := api.svc.StudentDashboard(ctx.Request().Context(), claims.ProfileID)
	if err != nil {
		return errors.Wrap(err, "building student dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *reportApi) studentAnalytics(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	analytics, err := api.svc.StudentAnalytics(ctx.Request().Context(), claims.ProfileID)
	if err != nil {
		return errors.Wrap(err, "building student analytics")
	}
	return ctx.JSON(http.StatusOK, analytics)
}

func (api *reportApi) teacherDashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dash, err := api.svc.TeacherDashboard(ctx.Request().Context(), claims.ProfileID)
	if err != nil {
		return errors.Wrap(err, "building teacher dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *reportApi) adminReport(ctx echo.Context) error {
	rep, err := api.svc.AdminReport(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building admin report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) adminStats(ctx echo.Context) error {
	stats, err := api.svc.AdminStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building admin stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
