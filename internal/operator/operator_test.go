package operator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/operator/actions"
	"github.com/carson-networks/expense-server/internal/storage"
	"github.com/carson-networks/expense-server/internal/storage/memory"
)

func food(amount string) *expense.Expense {
	return &expense.Expense{
		Amount:   decimal.RequireFromString(amount),
		Category: "Food",
		Date:     expense.NewDate(2025, time.March, 3),
	}
}

func countExpenses(t *testing.T, s storage.Storage) int64 {
	t.Helper()
	ctx := context.Background()
	r, err := s.Read(ctx)
	require.NoError(t, err)
	defer r.Close()
	n, err := r.Expenses().Count(ctx, nil)
	require.NoError(t, err)
	return n
}

// insertThenFail inserts a row and then fails, so the insert must not
// survive.
type insertThenFail struct{}

func (insertThenFail) Perform(ctx context.Context, writer storage.Writer) error {
	if _, err := writer.Expenses().Insert(ctx, food("1")); err != nil {
		return err
	}
	return errors.New("second step failed")
}

func TestProcess_CommitsOnSuccess(t *testing.T) {
	store := memory.NewStore()
	op := NewOperator(store)

	action := &actions.CreateExpense{Expense: food("4.20")}
	err := op.Process(context.Background(), action)

	require.NoError(t, err)
	require.NotNil(t, action.Created)
	assert.Equal(t, int64(1), action.Created.ID)
	assert.Equal(t, int64(1), countExpenses(t, store))
}

func TestProcess_RollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	op := NewOperator(store)

	err := op.Process(context.Background(), insertThenFail{})

	assert.EqualError(t, err, "second step failed")
	assert.Equal(t, int64(0), countExpenses(t, store))
}

func TestProcess_ConstraintViolationLeavesNoTrace(t *testing.T) {
	store := memory.NewStore()
	op := NewOperator(store)
	require.NoError(t, op.Process(context.Background(), &actions.CreateExpense{Expense: food("1")}))

	bad := food("1")
	bad.Category = ""
	err := op.Process(context.Background(), &actions.CreateExpense{Expense: bad})

	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Equal(t, int64(1), countExpenses(t, store))
}

func TestUpdateExpense_MissingRow(t *testing.T) {
	op := NewOperator(memory.NewStore())

	err := op.Process(context.Background(), &actions.UpdateExpense{ID: 9})

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateExpense_AppliesFields(t *testing.T) {
	store := memory.NewStore()
	op := NewOperator(store)
	create := &actions.CreateExpense{Expense: food("3")}
	require.NoError(t, op.Process(context.Background(), create))

	fields, err := expense.DecodeFields([]byte(`{"merchant":"Corner Shop"}`))
	require.NoError(t, err)
	update := &actions.UpdateExpense{ID: create.Created.ID, Fields: fields}
	require.NoError(t, op.Process(context.Background(), update))

	assert.Equal(t, "Corner Shop", update.Updated.Merchant.GetOrZero())
	assert.True(t, update.Updated.Amount.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "Food", update.Updated.Category)
}

func TestDeleteExpense_CapturesSnapshot(t *testing.T) {
	store := memory.NewStore()
	op := NewOperator(store)
	create := &actions.CreateExpense{Expense: food("12.5")}
	require.NoError(t, op.Process(context.Background(), create))

	del := &actions.DeleteExpense{ID: create.Created.ID}
	require.NoError(t, op.Process(context.Background(), del))

	assert.Equal(t, create.Created.ID, del.Snapshot.ID)
	assert.Equal(t, "12.5", del.Snapshot.Amount)
	assert.Equal(t, "Food", del.Snapshot.Category)
	assert.Equal(t, int64(0), countExpenses(t, store))

	err := op.Process(context.Background(), &actions.DeleteExpense{ID: create.Created.ID})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegisterUser_Duplicate(t *testing.T) {
	op := NewOperator(memory.NewStore())

	require.NoError(t, op.Process(context.Background(), &actions.RegisterUser{Username: "ana", PasswordHash: "h"}))
	err := op.Process(context.Background(), &actions.RegisterUser{Username: "ana", PasswordHash: "h"})

	assert.ErrorIs(t, err, storage.ErrConflict)
}
