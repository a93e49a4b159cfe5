package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/expense-server/internal/audit"
	"github.com/carson-networks/expense-server/internal/auth"
	"github.com/carson-networks/expense-server/internal/operator"
	"github.com/carson-networks/expense-server/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Expense *ExpenseService
	User    *UserService
}

// NewService creates a new Service with the given storage. All writes go
// through a single Operator.
func NewService(store storage.Storage, sink audit.Sink, tokens *auth.Tokens, logger logrus.FieldLogger) *Service {
	op := operator.NewOperator(store)
	return &Service{
		Expense: NewExpenseService(store, op, sink, logger, time.Now),
		User:    NewUserService(store, op, tokens, logger),
	}
}
