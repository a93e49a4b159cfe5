package query

import (
	"strings"

	"github.com/aarondl/opt/null"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/expense-server/internal/expense"
)

// MatchAll reports whether e satisfies every predicate.
func MatchAll(preds []Predicate, e *expense.Expense) bool {
	for _, p := range preds {
		if !Match(p, e) {
			return false
		}
	}
	return true
}

// Match evaluates a single predicate against e in process. It follows SQL
// semantics for NULL text columns: no predicate on a NULL value matches.
func Match(p Predicate, e *expense.Expense) bool {
	switch p := p.(type) {
	case Compare:
		return matchCompare(p, e)
	case FoldEqual:
		v, ok := textField(p.Field, e)
		return ok && strings.ToLower(v) == p.Value
	case FoldIn:
		v, ok := textField(p.Field, e)
		if !ok {
			return false
		}
		lv := strings.ToLower(v)
		for _, want := range p.Values {
			if lv == want {
				return true
			}
		}
		return false
	case FoldContains:
		v, ok := textField(p.Field, e)
		return ok && strings.Contains(strings.ToLower(v), strings.ToLower(p.Term))
	case AnyOf:
		for _, sub := range p.Predicates {
			if Match(sub, e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchCompare(p Compare, e *expense.Expense) bool {
	var cmp int
	switch p.Field {
	case FieldID:
		want, ok := p.Value.(int64)
		if !ok {
			return false
		}
		cmp = compareInt(e.ID, want)
	case FieldAmount:
		want, ok := p.Value.(decimal.Decimal)
		if !ok {
			return false
		}
		cmp = e.Amount.Cmp(want)
	case FieldDate:
		want, ok := p.Value.(expense.Date)
		if !ok {
			return false
		}
		cmp = e.Date.Compare(want)
	case FieldIsRecurring:
		want, ok := p.Value.(bool)
		if !ok || p.Op != OpEQ {
			return false
		}
		return e.IsRecurring == want
	default:
		return false
	}

	switch p.Op {
	case OpEQ:
		return cmp == 0
	case OpGT:
		return cmp > 0
	case OpGTE:
		return cmp >= 0
	case OpLTE:
		return cmp <= 0
	default:
		return false
	}
}

// textField returns the value of a text column and whether it is non-NULL.
func textField(f Field, e *expense.Expense) (string, bool) {
	switch f {
	case FieldCategory:
		return e.Category, true
	case FieldDescription:
		return e.Description.Get()
	case FieldMerchant:
		return e.Merchant.Get()
	case FieldPaymentMethod:
		return e.PaymentMethod.Get()
	default:
		return "", false
	}
}

// Less reports whether a sorts before b under o, including the id
// tie-break. NULL merchants sort after every value in ascending order and
// before every value in descending order.
func (o Order) Less(a, b *expense.Expense) bool {
	for _, t := range o.Terms() {
		c := compareField(t.Field, a, b)
		if c == 0 {
			continue
		}
		if t.Direction == Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareField(f Field, a, b *expense.Expense) int {
	switch f {
	case FieldID:
		return compareInt(a.ID, b.ID)
	case FieldAmount:
		return a.Amount.Cmp(b.Amount)
	case FieldDate:
		return a.Date.Compare(b.Date)
	case FieldCategory:
		return strings.Compare(a.Category, b.Category)
	case FieldMerchant:
		return compareNullable(a.Merchant, b.Merchant)
	default:
		return 0
	}
}

func compareNullable(a, b null.Val[string]) int {
	av, aok := a.Get()
	bv, bok := b.Get()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	default:
		return strings.Compare(av, bv)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
