package storage

import (
	"context"

	"github.com/carson-networks/expense-server/internal/expense"
)

// Writer is a write transaction. Changes become visible to other sessions
// only after Commit; Rollback discards them. Calling Rollback after Commit
// is a no-op.
type Writer interface {
	Expenses() ExpenseWriter
	Users() UserWriter
	Commit() error
	Rollback() error
}

// ExpenseWriter defines the operations on the expenses table available
// inside a write transaction.
type ExpenseWriter interface {
	ExpenseReader
	// FindByIDForUpdate locks the row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id int64) (*expense.Expense, error)
	// Insert stores e, ignoring e.ID, and returns the stored row.
	Insert(ctx context.Context, e *expense.Expense) (*expense.Expense, error)
	// Update overwrites every column of the row identified by e.ID.
	Update(ctx context.Context, e *expense.Expense) (*expense.Expense, error)
	Delete(ctx context.Context, id int64) error
}

// UserWriter defines the operations on the users table available inside a
// write transaction.
type UserWriter interface {
	UserReader
	Insert(ctx context.Context, u *User) (*User, error)
}
