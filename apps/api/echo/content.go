package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/content"
)

type contentApi struct {
	svc      *content.Service
	validate *validator.Validate
}

func registerContentAPI(g *echo.Group, gt *gate, deps *Deps) {
	api := contentApi{
		svc:      deps.ContentSvc,
		validate: deps.Validate,
	}
	admin := gt.allow(account.RoleAdmin)
	staff := gt.allow(account.StaffRoles...)

	ag := g.Group("", gt.authenticate)

	ag.POST("/admin/classes", api.createClass, admin)
	ag.DELETE("/admin/classes/:id", api.deleteClass, admin)
	ag.GET("/classes", api.queryClasses)

	ag.POST("/chapters", api.createChapter, staff)
	ag.GET("/classes/:id/chapters", api.queryChapters)

	ag.POST("/lessons", api.createLesson, staff)
	ag.GET("/chapters/:id/lessons", api.queryLessons)
	ag.GET("/lessons/:id", api.retrieveLesson)

	ag.POST("/exercises", api.createExercise, staff)
	ag.GET("/lessons/:id/exercises", api.queryExercises)
	ag.GET("/exercises/:id", api.retrieveExercise)
}

// Handlers

func (api *contentApi) createClass(ctx echo.Context) error {
	var data content.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	class, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *contentApi) deleteClass(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *contentApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *contentApi) createChapter(ctx echo.Context) error {
	var data content.NewChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapter")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chap, err := api.svc.CreateChapter(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating chapter")
	}
	return ctx.JSON(http.StatusCreated, chap)
}

func (api *contentApi) queryChapters(ctx echo.Context) error {
	classID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	chapters, err := api.svc.QueryChapters(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying chapters")
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *contentApi) createLesson(ctx echo.Context) error {
	var data content.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lesson, err := api.svc.CreateLesson(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *contentApi) queryLessons(ctx echo.Context) error {
	chapterID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	lessons, err := api.svc.QueryLessons(ctx.Request().Context(), chapterID)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *contentApi) retrieveLesson(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	lesson, err := api.svc.GetLesson(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting lesson")
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *contentApi) createExercise(ctx echo.Context) error {
	var data content.NewExercise
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExercise")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ex, err := api.svc.CreateExercise(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exercise")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api *contentApi) queryExercises(ctx echo.Context) error {
	lessonID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	exercises, err := api.svc.QueryExercises(ctx.Request().Context(), lessonID)
	if err != nil {
		return errors.Wrap(err, "querying exercises")
	}
	return ctx.JSON(http.StatusOK, exercises)
}

func (api *contentApi) retrieveExercise(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	ex, err := api.svc.GetExercise(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting exercise")
	}
	return ctx.JSON(http.StatusOK, ex)
}
