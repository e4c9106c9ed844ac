package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/account"
)

type accountApi struct {
	svc      *account.Service
	tokens   *account.TokenService
	validate *validator.Validate
}

func registerAccountAPI(g *echo.Group, gt *gate, deps *Deps) {
	api := accountApi{
		svc:      deps.AccountSvc,
		tokens:   deps.Tokens,
		validate: deps.Validate,
	}

	// un-authed endpoints
	g.POST("/auth/login", api.login)

	// authed endpoints
	ag := g.Group("/auth", gt.authenticate)
	ag.POST("/change-password", api.changePassword)
	ag.GET("/me", api.me)

	ug := g.Group("/admin/users", gt.authenticate)
	ug.POST("", api.create, gt.allow(account.RoleAdmin))
	ug.GET("", api.query, gt.allow(account.StaffRoles...))
	ug.PATCH("/:id", api.setActive, gt.allow(account.RoleAdmin))
}

// Handlers

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.Authenticate(ctx.Request().Context(), data.Identifier, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.tokens.Issue(account.Identity{AccountID: acc.ID, Role: acc.Role})
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: acc.Profile()})
}

func (api *accountApi) changePassword(ctx echo.Context) error {
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}

	var data account.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	if err = api.svc.ChangePassword(ctx.Request().Context(), acc, data.NewPassword); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Password updated successfully"})
}

func (api *accountApi) me(ctx echo.Context) error {
	acc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acc.Profile())
}

func (api *accountApi) create(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating account")
	}
	return ctx.JSON(http.StatusCreated, acc)
}

func (api *accountApi) query(ctx echo.Context) error {
	accs, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying accounts")
	}
	return ctx.JSON(http.StatusOK, accs)
}

func (api *accountApi) setActive(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	ctxAcc, err := mustContextAccount(ctx)
	if err != nil {
		return err
	}

	var data account.SetActive
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetActive")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.SetActive(ctx.Request().Context(), ctxAcc, id, *data.IsActive)
	if err != nil {
		return errors.Wrap(err, "setting account status")
	}
	return ctx.JSON(http.StatusOK, acc)
}
