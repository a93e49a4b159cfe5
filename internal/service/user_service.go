package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/expense-server/internal/auth"
	"github.com/carson-networks/expense-server/internal/operator"
	"github.com/carson-networks/expense-server/internal/operator/actions"
	"github.com/carson-networks/expense-server/internal/storage"
	"github.com/carson-networks/expense-server/internal/validation"
)

const minPasswordLength = 8

// Registration is the input for creating a user.
type Registration struct {
	Username string
	Email    string
	Password string
}

// AccessToken is issued on successful login.
type AccessToken struct {
	Token     string
	TokenType string
}

// UserService handles registration and login.
type UserService struct {
	storage  storage.Storage
	operator *operator.Operator
	tokens   *auth.Tokens
	errs     classifier
}

func NewUserService(store storage.Storage, op *operator.Operator, tokens *auth.Tokens, logger logrus.FieldLogger) *UserService {
	return &UserService{
		storage:  store,
		operator: op,
		tokens:   tokens,
		errs:     classifier{logger: logger},
	}
}

func (r Registration) validate() error {
	verr := &validation.Error{}
	if strings.TrimSpace(r.Username) == "" {
		verr.Add("username", "cannot be empty")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		verr.Add("email", "must be a valid email address")
	}
	if len(r.Password) < minPasswordLength {
		verr.Add("password", "must be at least %d characters", minPasswordLength)
	}
	return verr.OrNil()
}

// Register creates a user with a hashed password.
func (s *UserService) Register(ctx context.Context, reg Registration) (*storage.User, error) {
	if err := reg.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	action := &actions.RegisterUser{
		Username:     strings.TrimSpace(reg.Username),
		Email:        reg.Email,
		PasswordHash: hash,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		err = s.errs.classify("register", 0, err)
		if errors.Is(err, ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return action.Created, nil
}

// Login checks the password against the stored hash of the named user and
// issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	reader, err := s.storage.Read(ctx)
	if err != nil {
		return nil, s.errs.classify("login", 0, err)
	}
	defer reader.Close()

	user, err := reader.Users().FindByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, s.errs.classify("login", 0, err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: token, TokenType: "bearer"}, nil
}
