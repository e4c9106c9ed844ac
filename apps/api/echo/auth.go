package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/account"
)

const (
	contextAccountKey = "account"
	bearerScheme      = "Bearer"
)

// gate authenticates requests and authorizes them by role.
type gate struct {
	tokens *account.TokenService
	svc    *account.Service

	// authenticate verifies the bearer token and loads the account it names.
	authenticate echo.MiddlewareFunc
}

func newGate(tokens *account.TokenService, svc *account.Service) *gate {
	g := &gate{tokens: tokens, svc: svc}
	g.authenticate = middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:    "header:" + echo.HeaderAuthorization,
		AuthScheme:   bearerScheme,
		Validator:    g.validateToken,
		ErrorHandler: authErrorHandler,
	})
	return g
}

// validateToken checks token and stores its account on ctx. Tokens outlive the account's
// state, so the account is read again on every request: a disabled account is rejected
// even with a valid token.
func (g *gate) validateToken(token string, ctx echo.Context) (bool, error) {
	id, err := g.tokens.Verify(token)
	if err != nil {
		return false, err
	}

	acc, err := g.svc.GetByID(ctx.Request().Context(), id.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return false, account.ErrInvalidToken
		}
		return false, errors.Wrap(err, "getting account by id")
	}
	if !acc.IsActive {
		return false, account.ErrInvalidToken
	}

	ctx.Set(contextAccountKey, acc)
	return true, nil
}

// authErrorHandler turns a missing or malformed Authorization header into errUnauthenticated.
// Validation errors pass through.
func authErrorHandler(err error, _ echo.Context) error {
	var missing *middleware.ErrKeyAuthMissing
	if errors.As(err, &missing) {
		return errUnauthenticated
	}
	return err
}

// allow admits accounts whose current role is one of roles. It must run after authenticate.
func (g *gate) allow(roles ...account.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			acc, ok := contextAccount(ctx)
			if !ok {
				return errUnauthenticated
			}
			if !acc.Role.In(roles...) {
				return errForbidden
			}
			return next(ctx)
		}
	}
}

func contextAccount(ctx echo.Context) (account.Account, bool) {
	acc, ok := ctx.Get(contextAccountKey).(account.Account)
	return acc, ok
}

// mustContextAccount returns the authenticated account of a gated route.
func mustContextAccount(ctx echo.Context) (account.Account, error) {
	if acc, ok := contextAccount(ctx); ok {
		return acc, nil
	}
	return account.Account{}, errUnauthenticated
}
