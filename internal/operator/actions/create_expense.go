package actions

import (
	"context"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/storage"
)

type CreateExpense struct {
	Expense *expense.Expense

	Created *expense.Expense
}

func (c *CreateExpense) Perform(ctx context.Context, writer storage.Writer) error {
	created, err := writer.Expenses().Insert(ctx, c.Expense)
	if err != nil {
		return err
	}

	c.Created = created
	return nil
}
