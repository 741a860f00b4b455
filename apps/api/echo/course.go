package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.DELETE("/:id", api.destroy, adminMiddleware())
	cg.PUT("/:id/material", api.updateMaterial, teacherMiddleware())
	cg.PUT("/:id/syllabus", api.updateSyllabus, teacherMiddleware())
	cg.POST("/:id/files", api.attachFile, teacherMiddleware())
	cg.GET("/:id/files", api.files, teacherMiddleware())

	ag := g.Group("/announcements", jwt)
	ag.POST("", api.announce, teacherMiddleware())
	ag.GET("", api.announcements)
	ag.DELETE("/:id", api.destroyAnnouncement, adminMiddleware())
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

// query lists all courses; teachers only see their own.
func (api *courseApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var filter *course.QueryFilter
	if claims.IsTeacher {
		filter = &course.QueryFilter{TeacherID: claims.ProfileID}
	}
	courses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) updateMaterial(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.UpdateMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMaterial")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.UpdateMaterial(ctx.Request().Context(), claims.ProfileID, ctx.Param("id"), data.Material)
	if err != nil {
		return errors.Wrap(err, "updating material")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) updateSyllabus(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.UpdateSyllabus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSyllabus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.UpdateSyllabus(ctx.Request().Context(), claims.ProfileID, ctx.Param("id"), data.Syllabus)
	if err != nil {
		return errors.Wrap(err, "updating syllabus")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) attachFile(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	file, err := api.svc.AttachFile(ctx.Request().Context(), claims.ProfileID, ctx.Param("id"), fh.Filename, src)
	if err != nil {
		return errors.Wrap(err, "attaching course file")
	}
	return ctx.JSON(http.StatusCreated, file)
}

func (api *courseApi) files(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	files, err := api.svc.Files(ctx.Request().Context(), claims.ProfileID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying course files")
	}
	if files == nil {
		files = []course.CourseFile{}
	}
	return ctx.JSON(http.StatusOK, files)
}

func (api *courseApi) announce(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ann, err := api.svc.Announce(ctx.Request().Context(), claims.ProfileID, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *courseApi) announcements(ctx echo.Context) error {
	anns, err := api.svc.Announcements(ctx.Request().Context(), nil)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []course.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *courseApi) destroyAnnouncement(ctx echo.Context) error {
	if err := api.svc.DeleteAnnouncement(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
