package echoapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
)

type (
	LoginRequest struct {
		Identifier string `json:"identifier" validate:"required,notblank"` // username or student code
		Password   string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string          `json:"token"`
		User  account.Profile `json:"user"`
	}

	SuccessResponse struct {
		Message string `json:"message"`
	}
)

func (lr LoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}

// pathID parses the positive integer path parameter name.
func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return id, nil
}
