package query

import (
	"github.com/shopspring/decimal"

	"github.com/carson-networks/expense-server/internal/expense"
)

// Field names an expense column a predicate or ordering refers to.
type Field string

const (
	FieldID            Field = "id"
	FieldAmount        Field = "amount"
	FieldCategory      Field = "category"
	FieldDate          Field = "date"
	FieldDescription   Field = "description"
	FieldPaymentMethod Field = "payment_method"
	FieldMerchant      Field = "merchant"
	FieldIsRecurring   Field = "is_recurring"
)

// Op is a comparison operator.
type Op int

const (
	OpEQ Op = iota
	OpGT
	OpGTE
	OpLTE
)

func (o Op) String() string {
	switch o {
	case OpEQ:
		return "="
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLTE:
		return "<="
	default:
		return "?"
	}
}

// Predicate is one boolean condition over an expense. The set of predicate
// types is closed; stores translate each of them to their native form.
type Predicate interface {
	predicate()
}

// Compare is Field Op Value. Value is int64 for id, decimal.Decimal for
// amount, expense.Date for date and bool for is_recurring.
type Compare struct {
	Field Field
	Op    Op
	Value any
}

// FoldEqual matches when the lower-cased field equals Value, which is
// already lower-cased. NULL never matches.
type FoldEqual struct {
	Field Field
	Value string
}

// FoldIn matches when the lower-cased field is one of Values, which are
// already lower-cased.
type FoldIn struct {
	Field  Field
	Values []string
}

// FoldContains matches when the field contains Term, ignoring case. Term is
// literal text; it carries no wildcards.
type FoldContains struct {
	Field Field
	Term  string
}

// AnyOf matches when at least one of Predicates matches.
type AnyOf struct {
	Predicates []Predicate
}

func (Compare) predicate()      {}
func (FoldEqual) predicate()    {}
func (FoldIn) predicate()       {}
func (FoldContains) predicate() {}
func (AnyOf) predicate()        {}

func idCompare(op Op, id int64) Compare {
	return Compare{Field: FieldID, Op: op, Value: id}
}

func amountCompare(op Op, amount decimal.Decimal) Compare {
	return Compare{Field: FieldAmount, Op: op, Value: amount}
}

func dateCompare(op Op, date expense.Date) Compare {
	return Compare{Field: FieldDate, Op: op, Value: date}
}
