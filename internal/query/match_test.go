package query

import (
	"sort"
	"testing"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/expense-server/internal/expense"
)

func sample(id int64, amount string, category string, day int, merchant null.Val[string]) *expense.Expense {
	return &expense.Expense{
		ID:          id,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Date:        expense.NewDate(2025, time.April, day),
		Description: null.From("weekly " + category),
		Merchant:    merchant,
	}
}

func ids(list []*expense.Expense) []int64 {
	out := make([]int64, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestMatch_Compare(t *testing.T) {
	e := sample(5, "12.50", "Food", 10, null.From("Deli"))

	assert.True(t, Match(amountCompare(OpGTE, decimal.RequireFromString("12.5")), e))
	assert.False(t, Match(amountCompare(OpLTE, decimal.RequireFromString("12.49")), e))
	assert.True(t, Match(dateCompare(OpLTE, expense.NewDate(2025, time.April, 10)), e))
	assert.False(t, Match(dateCompare(OpGTE, expense.NewDate(2025, time.April, 11)), e))
	assert.True(t, Match(idCompare(OpGT, 4), e))
	assert.False(t, Match(idCompare(OpGT, 5), e))
	assert.True(t, Match(idCompare(OpLTE, 5), e))
	assert.True(t, Match(idCompare(OpLTE, 6), e))
	assert.False(t, Match(idCompare(OpLTE, 4), e))
	assert.True(t, Match(Compare{Field: FieldIsRecurring, Op: OpEQ, Value: false}, e))
}

func TestMatch_FoldedText(t *testing.T) {
	e := sample(1, "1", "Food", 1, null.From("ACME Corp"))

	assert.True(t, Match(FoldEqual{Field: FieldMerchant, Value: "acme corp"}, e))
	assert.True(t, Match(FoldIn{Field: FieldCategory, Values: []string{"rent", "food"}}, e))
	assert.True(t, Match(FoldContains{Field: FieldMerchant, Term: "me co"}, e))
	assert.False(t, Match(FoldContains{Field: FieldMerchant, Term: "%"}, e))
}

func TestMatch_NullNeverMatches(t *testing.T) {
	e := sample(1, "1", "Food", 1, null.FromPtr[string](nil))

	assert.False(t, Match(FoldEqual{Field: FieldMerchant, Value: ""}, e))
	assert.False(t, Match(FoldContains{Field: FieldMerchant, Term: ""}, e))
	assert.False(t, Match(FoldContains{Field: FieldPaymentMethod, Term: ""}, e))
}

func TestMatch_AnyOf(t *testing.T) {
	e := sample(1, "1", "Travel", 1, null.FromPtr[string](nil))
	preds, err := BuildPredicates(Params{Q: ptr("TRAV")})
	require.NoError(t, err)

	assert.True(t, MatchAll(preds, e))

	preds, err = BuildPredicates(Params{Q: ptr("groceries")})
	require.NoError(t, err)
	assert.False(t, MatchAll(preds, e))
}

func TestMatchAll_Conjunction(t *testing.T) {
	e := sample(3, "40", "Food", 5, null.From("Deli"))
	preds, err := BuildPredicates(Params{MinAmount: dec("10"), Category: ptr("food"), MaxID: ptr(int64(2))})
	require.NoError(t, err)

	assert.False(t, MatchAll(preds, e))
	assert.True(t, MatchAll(preds[:2], e))
	assert.True(t, MatchAll(nil, e))
}

func TestOrderLess_TieBreakByID(t *testing.T) {
	list := []*expense.Expense{
		sample(2, "10", "a", 1, null.From("m")),
		sample(1, "10", "a", 1, null.From("m")),
		sample(3, "5", "a", 1, null.From("m")),
	}

	asc := Order{Field: FieldAmount, Direction: Asc}
	sort.SliceStable(list, func(i, j int) bool { return asc.Less(list[i], list[j]) })
	assert.Equal(t, []int64{3, 1, 2}, ids(list))

	desc := Order{Field: FieldAmount, Direction: Desc}
	sort.SliceStable(list, func(i, j int) bool { return desc.Less(list[i], list[j]) })
	assert.Equal(t, []int64{2, 1, 3}, ids(list))
}

func TestOrderLess_NullMerchant(t *testing.T) {
	list := []*expense.Expense{
		sample(1, "1", "a", 1, null.FromPtr[string](nil)),
		sample(2, "1", "a", 1, null.From("Zed")),
		sample(3, "1", "a", 1, null.From("Alpha")),
	}

	asc := Order{Field: FieldMerchant, Direction: Asc}
	sort.SliceStable(list, func(i, j int) bool { return asc.Less(list[i], list[j]) })
	assert.Equal(t, []int64{3, 2, 1}, ids(list))

	desc := Order{Field: FieldMerchant, Direction: Desc}
	sort.SliceStable(list, func(i, j int) bool { return desc.Less(list[i], list[j]) })
	assert.Equal(t, []int64{1, 2, 3}, ids(list))
}
