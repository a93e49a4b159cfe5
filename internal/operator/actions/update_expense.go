package actions

import (
	"context"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/storage"
)

// UpdateExpense merges Fields into the stored expense. A full replace and a
// partial update differ only in which fields are present.
type UpdateExpense struct {
	ID     int64
	Fields expense.Fields

	Updated *expense.Expense
}

func (u *UpdateExpense) Perform(ctx context.Context, writer storage.Writer) error {
	current, err := writer.Expenses().FindByIDForUpdate(ctx, u.ID)
	if err != nil {
		return err
	}

	u.Fields.ApplyTo(current)

	updated, err := writer.Expenses().Update(ctx, current)
	if err != nil {
		return err
	}

	u.Updated = updated
	return nil
}
