package operator

import (
	"context"
	"errors"
	"fmt"

	"github.com/carson-networks/expense-server/internal/operator/actions"
	"github.com/carson-networks/expense-server/internal/storage"
)

// Operator runs actions inside a write transaction. Each call to Process
// acquires its own writer, so concurrent requests never wait on each other
// here.
type Operator struct {
	storage storage.Storage
}

func NewOperator(s storage.Storage) *Operator {
	return &Operator{storage: s}
}

// Process performs action and commits. If the action or the commit fails
// the transaction is rolled back and no change is visible.
func (o *Operator) Process(ctx context.Context, action actions.IAction) error {
	writer, err := o.storage.Write(ctx)
	if err != nil {
		return err
	}

	err = action.Perform(ctx, writer)
	if err != nil {
		if rbErr := writer.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err = writer.Commit(); err != nil {
		_ = writer.Rollback()
		return err
	}

	return nil
}
