package users

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/logging"
	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/storage"
)

// RegisterBody is the request body for registering a user.
type RegisterBody struct {
	Username string `json:"username" doc:"Unique user name"`
	Email    string `json:"email" doc:"Contact email address"`
	Password string `json:"password" doc:"Password, at least 8 characters"`
}

type RegisterInput struct {
	Body RegisterBody
}

// User is the public view of a registered user.
type User struct {
	ID       int64  `json:"id" doc:"User id"`
	Username string `json:"username" doc:"User name"`
	Email    string `json:"email" doc:"Email address"`
}

type RegisterOutput struct {
	Body User
}

type userRegistrar interface {
	Register(ctx context.Context, reg service.Registration) (*storage.User, error)
}

// RegisterHandler handles POST /auth/register.
type RegisterHandler struct {
	UserService userRegistrar
}

func NewRegisterHandler(svc userRegistrar) *RegisterHandler {
	return &RegisterHandler{UserService: svc}
}

func (h *RegisterHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-user",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register user",
		Tags:          []string{tag},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *RegisterHandler) handle(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	logData := logging.GetLogData(ctx)

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("registerUserMs")
	}
	user, err := h.UserService.Register(ctx, service.Registration{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(err)
	}

	if logData != nil {
		logData.AddData("userID", user.ID)
	}
	return &RegisterOutput{Body: User{ID: user.ID, Username: user.Username, Email: user.Email}}, nil
}
