package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/coursework"
)

type courseworkApi struct {
	svc      *coursework.Service
	validate *validator.Validate
}

func registerCourseworkAPI(g *echo.Group, gt *gate, deps *Deps) {
	api := courseworkApi{
		svc:      deps.CourseworkSvc,
		validate: deps.Validate,
	}

	ag := g.Group("", gt.authenticate)
	ag.POST("/submissions", api.submit, gt.allow(account.RoleStudent))
	ag.GET("/exercises/:id/submissions", api.querySubmissions)
	ag.POST("/grades", api.grade, gt.allow(account.StaffRoles...))
}

// Handlers

func (api *courseworkApi) submit(ctx echo.Context) error {
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}

	var data coursework.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *courseworkApi) querySubmissions(ctx echo.Context) error {
	exerciseID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}

	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), acc, exerciseID)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *courseworkApi) grade(ctx echo.Context) error {
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}

	var data coursework.NewGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	grade, err := api.svc.Grade(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "grading")
	}
	return ctx.JSON(http.StatusOK, grade)
}
