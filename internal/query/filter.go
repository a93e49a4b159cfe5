package query

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/validation"
)

// Params holds the optional listing filters. A nil pointer or empty slice
// means no constraint from that filter.
type Params struct {
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	Category      *string
	Categories    []string
	StartDate     *expense.Date
	EndDate       *expense.Date
	IsRecurring   *bool
	Merchant      *string
	MerchantLike  *string
	PaymentMethod *string
	Q             *string
	SinceID       *int64
	MaxID         *int64
}

// searchFields are OR-ed by the free-text filter.
var searchFields = []Field{FieldDescription, FieldMerchant, FieldCategory, FieldPaymentMethod}

// Validate checks bounds and range consistency.
func (p Params) Validate() *validation.Error {
	verr := &validation.Error{}

	if p.MinAmount != nil && p.MinAmount.IsNegative() {
		verr.Add("min_amount", "must be greater than or equal to 0")
	}
	if p.MaxAmount != nil && p.MaxAmount.IsNegative() {
		verr.Add("max_amount", "must be greater than or equal to 0")
	}
	if p.MinAmount != nil && p.MaxAmount != nil && p.MinAmount.GreaterThan(*p.MaxAmount) {
		verr.Add("min_amount", "cannot be greater than max_amount")
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		verr.Add("start_date", "cannot be after end_date")
	}
	if p.SinceID != nil && *p.SinceID < 0 {
		verr.Add("since_id", "must be greater than or equal to 0")
	}
	if p.MaxID != nil && *p.MaxID < 0 {
		verr.Add("max_id", "must be greater than or equal to 0")
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// BuildPredicates validates p and returns the conjunction of predicates it
// describes. The result is empty when no filter is set.
func BuildPredicates(p Params) ([]Predicate, error) {
	if verr := p.Validate(); verr != nil {
		return nil, verr
	}

	var preds []Predicate

	if p.MinAmount != nil {
		preds = append(preds, amountCompare(OpGTE, *p.MinAmount))
	}
	if p.MaxAmount != nil {
		preds = append(preds, amountCompare(OpLTE, *p.MaxAmount))
	}

	if cats := categorySet(p.Category, p.Categories); len(cats) > 0 {
		preds = append(preds, FoldIn{Field: FieldCategory, Values: cats})
	}

	if p.StartDate != nil {
		preds = append(preds, dateCompare(OpGTE, *p.StartDate))
	}
	if p.EndDate != nil {
		preds = append(preds, dateCompare(OpLTE, *p.EndDate))
	}

	if p.IsRecurring != nil {
		preds = append(preds, Compare{Field: FieldIsRecurring, Op: OpEQ, Value: *p.IsRecurring})
	}

	if p.Merchant != nil {
		preds = append(preds, FoldEqual{Field: FieldMerchant, Value: strings.ToLower(*p.Merchant)})
	}
	if p.MerchantLike != nil {
		preds = append(preds, FoldContains{Field: FieldMerchant, Term: *p.MerchantLike})
	}
	if p.PaymentMethod != nil {
		preds = append(preds, FoldEqual{Field: FieldPaymentMethod, Value: strings.ToLower(*p.PaymentMethod)})
	}

	if p.Q != nil && *p.Q != "" {
		search := AnyOf{Predicates: make([]Predicate, len(searchFields))}
		for i, f := range searchFields {
			search.Predicates[i] = FoldContains{Field: f, Term: *p.Q}
		}
		preds = append(preds, search)
	}

	if p.SinceID != nil {
		preds = append(preds, idCompare(OpGT, *p.SinceID))
	}
	if p.MaxID != nil {
		preds = append(preds, idCompare(OpLTE, *p.MaxID))
	}

	return preds, nil
}

// categorySet unions the single and repeated category filters, lower-cased
// and without duplicates or empty entries, preserving first-seen order.
func categorySet(single *string, many []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if c == "" {
			return
		}
		lc := strings.ToLower(c)
		if _, ok := seen[lc]; ok {
			return
		}
		seen[lc] = struct{}{}
		out = append(out, lc)
	}
	if single != nil {
		add(*single)
	}
	for _, c := range many {
		add(c)
	}
	return out
}
