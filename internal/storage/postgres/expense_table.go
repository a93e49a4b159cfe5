package postgres

import (
	"context"
	"fmt"

	"github.com/aarondl/opt/null"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/query"
	"github.com/carson-networks/expense-server/internal/storage"
)

const expensesTable = "expenses"

var expenseColumns = []string{
	"id", "amount", "category", "date", "description", "payment_method", "merchant", "is_recurring",
}

// expenseRow is the scanned shape of an expenses row.
type expenseRow struct {
	ID            int64            `db:"id"`
	Amount        decimal.Decimal  `db:"amount"`
	Category      string           `db:"category"`
	Date          expense.Date     `db:"date"`
	Description   null.Val[string] `db:"description"`
	PaymentMethod null.Val[string] `db:"payment_method"`
	Merchant      null.Val[string] `db:"merchant"`
	IsRecurring   bool             `db:"is_recurring"`
}

func (r *expenseRow) toExpense() *expense.Expense {
	return &expense.Expense{
		ID:            r.ID,
		Amount:        r.Amount,
		Category:      r.Category,
		Date:          r.Date,
		Description:   r.Description,
		PaymentMethod: r.PaymentMethod,
		Merchant:      r.Merchant,
		IsRecurring:   r.IsRecurring,
	}
}

var expenseMapper = scan.StructMapper[*expenseRow]()

type expenseTable struct {
	exec bob.Executor
}

var _ storage.ExpenseWriter = (*expenseTable)(nil)

func returningColumns() []any {
	cols := make([]any, len(expenseColumns))
	for i, c := range expenseColumns {
		cols[i] = psql.Quote(c)
	}
	return cols
}

func (t *expenseTable) selectByID(id int64, extra ...bob.Mod[*dialect.SelectQuery]) bob.BaseQuery[*dialect.SelectQuery] {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(returningColumns()...),
		sm.From(expensesTable),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	return psql.Select(append(mods, extra...)...)
}

func (t *expenseTable) one(ctx context.Context, q bob.Query) (*expense.Expense, error) {
	row, err := bob.One(ctx, t.exec, q, expenseMapper)
	if err != nil {
		return nil, translate(err)
	}
	return row.toExpense(), nil
}

// FindByID retrieves an expense by primary key.
func (t *expenseTable) FindByID(ctx context.Context, id int64) (*expense.Expense, error) {
	return t.one(ctx, t.selectByID(id))
}

// FindByIDForUpdate retrieves an expense and locks its row.
func (t *expenseTable) FindByIDForUpdate(ctx context.Context, id int64) (*expense.Expense, error) {
	return t.one(ctx, t.selectByID(id, sm.ForUpdate()))
}

// Count returns the number of expenses matching predicates.
func (t *expenseTable) Count(ctx context.Context, predicates []query.Predicate) (int64, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("count(*)"),
		sm.From(expensesTable),
	}
	mods = append(mods, whereMods(predicates)...)

	n, err := bob.One(ctx, t.exec, psql.Select(mods...), scan.SingleColumnMapper[int64])
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// List returns one ordered page of the expenses matching q.
func (t *expenseTable) List(ctx context.Context, q *query.Query) ([]*expense.Expense, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(returningColumns()...),
		sm.From(expensesTable),
	}
	mods = append(mods, whereMods(q.Predicates)...)
	mods = append(mods, orderMods(q.Order)...)
	mods = append(mods,
		sm.Limit(q.Page.Limit),
		sm.Offset(q.Page.Offset),
	)

	rows, err := bob.All(ctx, t.exec, psql.Select(mods...), expenseMapper)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	result := make([]*expense.Expense, len(rows))
	for i, row := range rows {
		result[i] = row.toExpense()
	}
	return result, nil
}

// Insert stores e and returns the row with its generated id.
func (t *expenseTable) Insert(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	q := psql.Insert(
		im.Into(expensesTable, expenseColumns[1:]...),
		im.Values(psql.Arg(
			e.Amount,
			e.Category,
			e.Date,
			e.Description,
			e.PaymentMethod,
			e.Merchant,
			e.IsRecurring,
		)),
		im.Returning(returningColumns()...),
	)
	return t.one(ctx, q)
}

// Update overwrites every mutable column of the row identified by e.ID.
func (t *expenseTable) Update(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	q := psql.Update(
		um.Table(expensesTable),
		um.SetCol("amount").ToArg(e.Amount),
		um.SetCol("category").ToArg(e.Category),
		um.SetCol("date").ToArg(e.Date),
		um.SetCol("description").ToArg(e.Description),
		um.SetCol("payment_method").ToArg(e.PaymentMethod),
		um.SetCol("merchant").ToArg(e.Merchant),
		um.SetCol("is_recurring").ToArg(e.IsRecurring),
		um.Where(psql.Quote("id").EQ(psql.Arg(e.ID))),
		um.Returning(returningColumns()...),
	)
	return t.one(ctx, q)
}

// Delete removes the row with the given id.
func (t *expenseTable) Delete(ctx context.Context, id int64) error {
	q := psql.Delete(
		dm.From(expensesTable),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	res, err := bob.Exec(ctx, t.exec, q)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
