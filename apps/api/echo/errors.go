package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core"
)

var (
	errUnauthenticated = core.NewUnauthenticatedError("authentication required")
	errForbidden       = core.NewForbiddenError("permission denied")
	errInvalidInput    = "invalid input"
)

// kindStatus maps core error kinds to HTTP status codes.
var kindStatus = []struct {
	kind error
	code int
}{
	{core.ErrUnauthenticated, http.StatusUnauthorized},
	{core.ErrForbidden, http.StatusForbidden},
	{core.ErrNotFound, http.StatusNotFound},
	{core.ErrConflict, http.StatusConflict},
	{core.ErrInvalid, http.StatusBadRequest},
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, body := resolveError(err, translator)

		if code == http.StatusInternalServerError {
			args := []interface{}{errors.WithStack(err)}
			if acc, ok := contextAccount(ctx); ok {
				args = append(args, acc)
			}
			logger.Error(http.StatusText(code), args...)

			if ctx.Echo().Debug {
				body["error"] = err.Error()
			}
			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func resolveError(err error, translator ut.Translator) (int, echo.Map) {
	var (
		httpErr  *echo.HTTPError
		vErrs    validator.ValidationErrors
		fieldErr *core.ValidationError
		coreErr  *core.Error
	)

	switch {
	case errors.As(err, &httpErr):
		if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
			httpErr = herr
		}
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, echo.Map{"error": msg}

	case errors.As(err, &vErrs):
		fields := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return http.StatusBadRequest, echo.Map{"error": errInvalidInput, "fields": fields}

	case errors.As(err, &fieldErr):
		msg := errInvalidInput
		if fieldErr.Err != nil {
			msg = fieldErr.Error()
		}
		body := echo.Map{"error": msg}
		if len(fieldErr.Fields) > 0 {
			fields := make(map[string]string, len(fieldErr.Fields))
			for _, fe := range fieldErr.Fields {
				fields[fe.Field] = fe.Error
			}
			body["fields"] = fields
		}
		return http.StatusBadRequest, body

	case errors.As(err, &coreErr):
		for _, ks := range kindStatus {
			if errors.Is(coreErr.Kind, ks.kind) {
				return ks.code, echo.Map{"error": coreErr.Msg}
			}
		}
	}

	// any other error is a server error
	return http.StatusInternalServerError, echo.Map{"error": http.StatusText(http.StatusInternalServerError)}
}
