package expense

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/aarondl/opt/null"
	"github.com/aarondl/opt/omitnull"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/expense-server/internal/validation"
)

// Field names as they appear on the wire.
const (
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldDate          = "date"
	FieldDescription   = "description"
	FieldPaymentMethod = "payment_method"
	FieldMerchant      = "merchant"
	FieldIsRecurring   = "is_recurring"
)

// AmountScale and AmountIntegerDigits bound an amount to what the
// NUMERIC(14, 2) column stores without rounding or overflow.
const (
	AmountScale         = 2
	AmountIntegerDigits = 12
)

var maxAmount = decimal.New(1, AmountIntegerDigits)

// Fields is a mutation request. Every field is either unset, explicitly
// null, or a value, so create, full replace and partial update can share
// one representation.
type Fields struct {
	Amount        omitnull.Val[decimal.Decimal] `json:"amount"`
	Category      omitnull.Val[string]          `json:"category"`
	Date          omitnull.Val[Date]            `json:"date"`
	Description   omitnull.Val[string]          `json:"description"`
	PaymentMethod omitnull.Val[string]          `json:"payment_method"`
	Merchant      omitnull.Val[string]          `json:"merchant"`
	IsRecurring   omitnull.Val[bool]            `json:"is_recurring"`
}

// DecodeFields parses a JSON object into Fields. Unknown keys, such as the
// id and $schema of a record read back from the API, are ignored; malformed
// values are validation failures.
func DecodeFields(body []byte) (Fields, error) {
	var f Fields
	if len(bytes.TrimSpace(body)) == 0 {
		return f, validation.New("body", "request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&f); err != nil {
		return Fields{}, validation.New("body", "%s", err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Fields{}, validation.New("body", "unexpected data after JSON object")
	}
	return f, nil
}

type presence struct {
	name     string
	unset    bool
	null     bool
	nullable bool
}

func (f Fields) presence() []presence {
	return []presence{
		{FieldAmount, f.Amount.IsUnset(), f.Amount.IsNull(), false},
		{FieldCategory, f.Category.IsUnset(), f.Category.IsNull(), false},
		{FieldDate, f.Date.IsUnset(), f.Date.IsNull(), false},
		{FieldDescription, f.Description.IsUnset(), f.Description.IsNull(), true},
		{FieldPaymentMethod, f.PaymentMethod.IsUnset(), f.PaymentMethod.IsNull(), true},
		{FieldMerchant, f.Merchant.IsUnset(), f.Merchant.IsNull(), true},
		{FieldIsRecurring, f.IsRecurring.IsUnset(), f.IsRecurring.IsNull(), false},
	}
}

// RequireComplete checks that every field is present, as a full replace
// demands. Nullable fields may be present as null.
func (f Fields) RequireComplete() *validation.Error {
	verr := &validation.Error{}
	for _, p := range f.presence() {
		if p.unset {
			verr.Add(p.name, "is required for a full replace")
		}
	}
	return verrOrNil(verr)
}

// RequireCreatable checks that the fields without a default are present.
func (f Fields) RequireCreatable() *validation.Error {
	verr := &validation.Error{}
	if f.Amount.IsUnset() {
		verr.Add(FieldAmount, "is required")
	}
	if f.Category.IsUnset() {
		verr.Add(FieldCategory, "is required")
	}
	if f.Date.IsUnset() {
		verr.Add(FieldDate, "is required")
	}
	return verrOrNil(verr)
}

// Validate applies the business rules to the fields that are present.
// today is the reference date for the no-future-dates rule.
func (f Fields) Validate(today Date) *validation.Error {
	verr := &validation.Error{}
	for _, p := range f.presence() {
		if p.null && !p.nullable {
			verr.Add(p.name, "cannot be null")
		}
	}

	if amount, ok := f.Amount.Get(); ok {
		switch {
		case amount.IsNegative():
			verr.Add(FieldAmount, "must be greater than or equal to 0")
		case !amount.Equal(amount.Truncate(AmountScale)):
			verr.Add(FieldAmount, "must have at most %d decimal places", AmountScale)
		case amount.GreaterThanOrEqual(maxAmount):
			verr.Add(FieldAmount, "must be less than %s", maxAmount.String())
		}
	}
	if category, ok := f.Category.Get(); ok && strings.TrimSpace(category) == "" {
		verr.Add(FieldCategory, "cannot be empty")
	}
	if date, ok := f.Date.Get(); ok && date.After(today) {
		verr.Add(FieldDate, "cannot be in the future")
	}
	return verrOrNil(verr)
}

// NewExpense builds a record from creatable fields, applying defaults for
// the optional ones.
func (f Fields) NewExpense() *Expense {
	e := &Expense{}
	f.ApplyTo(e)
	return e
}

// ApplyTo merges the present fields into e. Absent fields are left
// untouched and explicit nulls clear nullable fields.
func (f Fields) ApplyTo(e *Expense) {
	if v, ok := f.Amount.Get(); ok {
		e.Amount = v
	}
	if v, ok := f.Category.Get(); ok {
		e.Category = v
	}
	if v, ok := f.Date.Get(); ok {
		e.Date = v
	}
	if v, ok := f.IsRecurring.Get(); ok {
		e.IsRecurring = v
	}
	mergeNullable(&e.Description, f.Description)
	mergeNullable(&e.PaymentMethod, f.PaymentMethod)
	mergeNullable(&e.Merchant, f.Merchant)
}

func mergeNullable(dst *null.Val[string], src omitnull.Val[string]) {
	switch {
	case src.IsUnset():
	case src.IsNull():
		*dst = null.Val[string]{}
	default:
		*dst = null.From(src.MustGet())
	}
}

func verrOrNil(verr *validation.Error) *validation.Error {
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}
