package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/expense-server/internal/storage"
	"github.com/carson-networks/expense-server/internal/validation"
)

var (
	ErrNotFound           = errors.New("expense not found")
	ErrConflict           = errors.New("request conflicts with stored data")
	ErrStoreFailure       = errors.New("internal store failure")
	ErrUserExists         = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// classifier turns storage errors into the small set callers act on. Store
// failures are logged with the operation and expense id; the raw error
// never leaves the service.
type classifier struct {
	logger logrus.FieldLogger
}

func (c classifier) classify(operation string, id int64, err error) error {
	if err == nil {
		return nil
	}

	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrConflict
	}

	fields := logrus.Fields{"operation": operation}
	if id > 0 {
		fields["expenseID"] = id
	}
	c.logger.WithFields(fields).WithError(err).Error("Service.StoreFailure")
	return ErrStoreFailure
}
