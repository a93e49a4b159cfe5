// Package memory is an in-process record store. Committed state is an
// immutable version that read sessions share; write transactions buffer
// their changes and publish a new version on commit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/query"
	"github.com/carson-networks/expense-server/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

type version struct {
	expenses map[int64]*expense.Expense
	users    map[string]*storage.User
}

// Store implements storage.Storage in memory.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[version]

	expenseSeq atomic.Int64
	userSeq    atomic.Int64
	clock      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{clock: time.Now}
	s.current.Store(&version{
		expenses: map[int64]*expense.Expense{},
		users:    map[string]*storage.User{},
	})
	return s
}

// Read returns a session over the latest committed version.
func (s *Store) Read(ctx context.Context) (storage.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &reader{v: s.current.Load()}, nil
}

// Write begins a transaction based on the latest committed version.
func (s *Store) Write(ctx context.Context) (storage.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &writer{
		store:    s,
		base:     s.current.Load(),
		expenses: map[int64]*expense.Expense{},
		created:  map[int64]struct{}{},
		deleted:  map[int64]struct{}{},
		users:    map[string]*storage.User{},
	}, nil
}

func (s *Store) Close() error {
	return nil
}

// commit publishes the changes of w on top of whatever is current, so the
// last transaction to commit wins for rows touched by both. A commit that
// updates or deletes a row another transaction has already deleted fails
// with storage.ErrNotFound and publishes nothing.
func (s *Store) commit(w *writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()

	for name := range w.users {
		if _, taken := cur.users[name]; taken {
			return storage.ErrConflict
		}
	}
	for id := range w.deleted {
		if _, exists := cur.expenses[id]; !exists {
			return storage.ErrNotFound
		}
	}
	for id := range w.expenses {
		if _, inserted := w.created[id]; inserted {
			continue
		}
		if _, exists := cur.expenses[id]; !exists {
			return storage.ErrNotFound
		}
	}

	next := &version{
		expenses: make(map[int64]*expense.Expense, len(cur.expenses)+len(w.expenses)),
		users:    make(map[string]*storage.User, len(cur.users)+len(w.users)),
	}
	for id, e := range cur.expenses {
		next.expenses[id] = e
	}
	for name, u := range cur.users {
		next.users[name] = u
	}

	for id := range w.deleted {
		delete(next.expenses, id)
	}
	for id, e := range w.expenses {
		next.expenses[id] = e
	}
	for name, u := range w.users {
		next.users[name] = u
	}

	s.current.Store(next)
	return nil
}

type reader struct {
	v *version
}

func (r *reader) Expenses() storage.ExpenseReader {
	return &expenseView{lookup: r.v.lookupExpense, all: r.v.allExpenses}
}

func (r *reader) Users() storage.UserReader {
	return &userView{lookup: r.v.lookupUser}
}

func (r *reader) Close() error {
	return nil
}

func (v *version) lookupExpense(id int64) (*expense.Expense, bool) {
	e, ok := v.expenses[id]
	return e, ok
}

func (v *version) allExpenses() []*expense.Expense {
	out := make([]*expense.Expense, 0, len(v.expenses))
	for _, e := range v.expenses {
		out = append(out, e)
	}
	return out
}

func (v *version) lookupUser(name string) (*storage.User, bool) {
	u, ok := v.users[name]
	return u, ok
}

// expenseView answers the read operations over some set of rows.
type expenseView struct {
	lookup func(id int64) (*expense.Expense, bool)
	all    func() []*expense.Expense
}

func (x *expenseView) FindByID(ctx context.Context, id int64) (*expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := x.lookup(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e.Clone(), nil
}

func (x *expenseView) Count(ctx context.Context, predicates []query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	for _, e := range x.all() {
		if query.MatchAll(predicates, e) {
			n++
		}
	}
	return n, nil
}

func (x *expenseView) List(ctx context.Context, q *query.Query) ([]*expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []*expense.Expense
	for _, e := range x.all() {
		if query.MatchAll(q.Predicates, e) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return q.Order.Less(matched[i], matched[j])
	})

	if q.Page.Offset >= len(matched) {
		return []*expense.Expense{}, nil
	}
	end := q.Page.Offset + q.Page.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*expense.Expense, 0, end-q.Page.Offset)
	for _, e := range matched[q.Page.Offset:end] {
		page = append(page, e.Clone())
	}
	return page, nil
}

type userView struct {
	lookup func(name string) (*storage.User, bool)
}

func (u *userView) FindByUsername(ctx context.Context, username string) (*storage.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found, ok := u.lookup(username)
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *found
	return &c, nil
}

// checkExpense enforces the column constraints of the expenses table.
func checkExpense(e *expense.Expense) error {
	if e.Amount.IsNegative() || strings.TrimSpace(e.Category) == "" || e.Date.IsZero() {
		return storage.ErrConflict
	}
	return nil
}
