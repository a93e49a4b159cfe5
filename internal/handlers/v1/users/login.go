package users

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/logging"
	"github.com/carson-networks/expense-server/internal/service"
)

type LoginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginInput struct {
	Body LoginBody
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token" doc:"Signed JWT"`
	TokenType   string `json:"token_type" doc:"Always bearer"`
}

type LoginOutput struct {
	Body TokenResponse
}

type userAuthenticator interface {
	Login(ctx context.Context, username, password string) (*service.AccessToken, error)
}

// LoginHandler handles POST /auth/login.
type LoginHandler struct {
	UserService userAuthenticator
}

func NewLoginHandler(svc userAuthenticator) *LoginHandler {
	return &LoginHandler{UserService: svc}
}

func (h *LoginHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in",
		Description: "Exchanges a username and password for a bearer token.",
		Tags:        []string{tag},
	}, h.handle)
}

func (h *LoginHandler) handle(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("username", input.Body.Username)
	}

	token, err := h.UserService.Login(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &LoginOutput{Body: TokenResponse{AccessToken: token.Token, TokenType: token.TokenType}}, nil
}
