package expense

import (
	"github.com/aarondl/opt/null"
	"github.com/shopspring/decimal"
)

// Expense is a single spending record. ID is assigned by the store.
type Expense struct {
	ID            int64
	Amount        decimal.Decimal
	Category      string
	Date          Date
	Description   null.Val[string]
	PaymentMethod null.Val[string]
	Merchant      null.Val[string]
	IsRecurring   bool
}

// Clone returns a copy that shares no mutable state with e.
func (e *Expense) Clone() *Expense {
	c := *e
	return &c
}

// Snapshot is the audit record of an expense, captured before deletion.
type Snapshot struct {
	ID            int64   `json:"id"`
	Amount        string  `json:"amount"`
	Category      string  `json:"category"`
	Date          string  `json:"date"`
	Description   *string `json:"description"`
	Merchant      *string `json:"merchant"`
	PaymentMethod *string `json:"payment_method"`
	IsRecurring   bool    `json:"is_recurring"`
}

// Snapshot captures the current field values of e.
func (e *Expense) Snapshot() Snapshot {
	return Snapshot{
		ID:            e.ID,
		Amount:        e.Amount.String(),
		Category:      e.Category,
		Date:          e.Date.String(),
		Description:   e.Description.Ptr(),
		Merchant:      e.Merchant.Ptr(),
		PaymentMethod: e.PaymentMethod.Ptr(),
		IsRecurring:   e.IsRecurring,
	}
}
