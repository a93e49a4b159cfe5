package storage

import (
	"context"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/query"
)

// Reader is a consistent read session. Count and List issued through the
// same Reader observe the same snapshot.
type Reader interface {
	Expenses() ExpenseReader
	Users() UserReader
	Close() error
}

// ExpenseReader defines the read operations on the expenses table.
type ExpenseReader interface {
	FindByID(ctx context.Context, id int64) (*expense.Expense, error)
	// Count returns the number of rows matching every predicate, ignoring
	// ordering and pagination.
	Count(ctx context.Context, predicates []query.Predicate) (int64, error)
	List(ctx context.Context, q *query.Query) ([]*expense.Expense, error)
}

// UserReader defines the read operations on the users table.
type UserReader interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}
