package users

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/validation"
)

const tag = "Auth"

func toHTTPError(err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		details := make([]error, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = &huma.ErrorDetail{Message: f.Message, Location: "body." + f.Field}
		}
		return huma.NewError(http.StatusBadRequest, "validation failed", details...)
	case errors.Is(err, service.ErrUserExists):
		return huma.Error409Conflict("username already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid username or password")
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}
