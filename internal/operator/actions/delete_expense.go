package actions

import (
	"context"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/storage"
)

type DeleteExpense struct {
	ID int64

	// Snapshot holds the field values read before the delete was issued.
	Snapshot expense.Snapshot
}

func (d *DeleteExpense) Perform(ctx context.Context, writer storage.Writer) error {
	current, err := writer.Expenses().FindByIDForUpdate(ctx, d.ID)
	if err != nil {
		return err
	}

	d.Snapshot = current.Snapshot()

	return writer.Expenses().Delete(ctx, d.ID)
}
