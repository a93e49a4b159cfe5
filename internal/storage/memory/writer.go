package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/storage"
)

var errTxDone = errors.New("memory: transaction already committed or rolled back")

// writer buffers the changes of one transaction on top of the version it
// started from.
type writer struct {
	store *Store
	base  *version

	expenses map[int64]*expense.Expense
	created  map[int64]struct{}
	deleted  map[int64]struct{}
	users    map[string]*storage.User

	done bool
}

func (w *writer) Expenses() storage.ExpenseWriter {
	return &expenseTx{
		expenseView: expenseView{lookup: w.lookupExpense, all: w.allExpenses},
		w:           w,
	}
}

func (w *writer) Users() storage.UserWriter {
	return &userTx{userView: userView{lookup: w.lookupUser}, w: w}
}

func (w *writer) Commit() error {
	if w.done {
		return errTxDone
	}
	w.done = true
	return w.store.commit(w)
}

func (w *writer) Rollback() error {
	w.done = true
	return nil
}

func (w *writer) lookupExpense(id int64) (*expense.Expense, bool) {
	if _, gone := w.deleted[id]; gone {
		return nil, false
	}
	if e, ok := w.expenses[id]; ok {
		return e, true
	}
	return w.base.lookupExpense(id)
}

func (w *writer) allExpenses() []*expense.Expense {
	out := make([]*expense.Expense, 0, len(w.base.expenses)+len(w.expenses))
	for id, e := range w.base.expenses {
		if _, gone := w.deleted[id]; gone {
			continue
		}
		if _, changed := w.expenses[id]; changed {
			continue
		}
		out = append(out, e)
	}
	for _, e := range w.expenses {
		out = append(out, e)
	}
	return out
}

func (w *writer) lookupUser(name string) (*storage.User, bool) {
	if u, ok := w.users[name]; ok {
		return u, true
	}
	return w.base.lookupUser(name)
}

type expenseTx struct {
	expenseView
	w *writer
}

func (x *expenseTx) FindByIDForUpdate(ctx context.Context, id int64) (*expense.Expense, error) {
	return x.FindByID(ctx, id)
}

func (x *expenseTx) Insert(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	if err := x.usable(ctx); err != nil {
		return nil, err
	}
	if err := checkExpense(e); err != nil {
		return nil, err
	}

	row := e.Clone()
	row.ID = x.w.store.expenseSeq.Add(1)
	x.w.expenses[row.ID] = row
	x.w.created[row.ID] = struct{}{}
	return row.Clone(), nil
}

func (x *expenseTx) Update(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	if err := x.usable(ctx); err != nil {
		return nil, err
	}
	if _, ok := x.lookup(e.ID); !ok {
		return nil, storage.ErrNotFound
	}
	if err := checkExpense(e); err != nil {
		return nil, err
	}

	row := e.Clone()
	x.w.expenses[row.ID] = row
	return row.Clone(), nil
}

func (x *expenseTx) Delete(ctx context.Context, id int64) error {
	if err := x.usable(ctx); err != nil {
		return err
	}
	if _, ok := x.lookup(id); !ok {
		return storage.ErrNotFound
	}

	delete(x.w.expenses, id)
	if _, ok := x.w.created[id]; ok {
		delete(x.w.created, id)
		return nil
	}
	x.w.deleted[id] = struct{}{}
	return nil
}

func (x *expenseTx) usable(ctx context.Context) error {
	if x.w.done {
		return errTxDone
	}
	return ctx.Err()
}

type userTx struct {
	userView
	w *writer
}

func (u *userTx) Insert(ctx context.Context, user *storage.User) (*storage.User, error) {
	if u.w.done {
		return nil, errTxDone
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(user.Username) == "" || user.PasswordHash == "" {
		return nil, storage.ErrConflict
	}
	if _, taken := u.lookup(user.Username); taken {
		return nil, storage.ErrConflict
	}

	row := *user
	row.ID = u.w.store.userSeq.Add(1)
	row.CreatedAt = u.w.store.clock().UTC()
	u.w.users[row.Username] = &row
	out := row
	return &out, nil
}
