package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/message"
)

type messageApi struct {
	svc      *message.Service
	validate *validator.Validate
}

func registerMessageAPI(g *echo.Group, gt *gate, deps *Deps) {
	api := messageApi{
		svc:      deps.MessageSvc,
		validate: deps.Validate,
	}

	ag := g.Group("", gt.authenticate)
	ag.POST("/messages", api.send)
	ag.GET("/messages", api.query)
	ag.POST("/announcements", api.announce, gt.allow(account.StaffRoles...))
	ag.GET("/classes/:id/announcements", api.queryAnnouncements)
}

// Handlers

func (api *messageApi) send(ctx echo.Context) error {
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}

	var data message.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.svc.Send(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) query(ctx echo.Context) error {
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}
	msgs, err := api.svc.Query(ctx.Request().Context(), acc.ID)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) announce(ctx echo.Context) error {
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}

	var data message.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ann, err := api.svc.Announce(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "announcing")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *messageApi) queryAnnouncements(ctx echo.Context) error {
	classID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	anns, err := api.svc.QueryAnnouncements(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}
