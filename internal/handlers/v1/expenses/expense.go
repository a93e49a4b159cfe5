package expenses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/auth"
	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/validation"
)

const tag = "Expenses"

// security marks an operation as protected by the bearer scheme.
var security = []map[string][]string{{auth.SecurityScheme: {}}}

// Expense is the API model for an expense record.
type Expense struct {
	ID            int64   `json:"id" doc:"Expense id"`
	Amount        string  `json:"amount" doc:"Decimal amount, never negative"`
	Category      string  `json:"category" doc:"Category name"`
	Date          string  `json:"date" format:"date" doc:"Calendar date, YYYY-MM-DD"`
	Description   *string `json:"description" nullable:"true" doc:"Free-text description"`
	PaymentMethod *string `json:"payment_method" nullable:"true" doc:"Payment method"`
	Merchant      *string `json:"merchant" nullable:"true" doc:"Merchant name"`
	IsRecurring   bool    `json:"is_recurring" doc:"Whether the expense repeats"`
}

func fromExpense(e *expense.Expense) Expense {
	return Expense{
		ID:            e.ID,
		Amount:        e.Amount.String(),
		Category:      e.Category,
		Date:          e.Date.String(),
		Description:   e.Description.Ptr(),
		PaymentMethod: e.PaymentMethod.Ptr(),
		Merchant:      e.Merchant.Ptr(),
		IsRecurring:   e.IsRecurring,
	}
}

// parseID parses the id path parameter. Anything but a positive integer is
// rejected before the service is called.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, huma.NewError(http.StatusBadRequest, "invalid expense id", &huma.ErrorDetail{
			Message:  "must be a positive integer",
			Location: "path.id",
			Value:    raw,
		})
	}
	return id, nil
}

// toHTTPError maps service errors to API errors. location prefixes the
// field names of validation failures ("body", "query").
func toHTTPError(err error, location string) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return validationError(verr, location)
	case errors.Is(err, service.ErrNotFound):
		return huma.Error404NotFound("expense not found")
	case errors.Is(err, service.ErrConflict):
		return huma.Error409Conflict("request conflicts with stored data")
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}

func validationError(verr *validation.Error, location string) error {
	details := make([]error, len(verr.Fields))
	for i, f := range verr.Fields {
		loc := location + "." + f.Field
		switch f.Field {
		case "id":
			loc = "path.id"
		case "body":
			loc = "body"
		}
		details[i] = &huma.ErrorDetail{Message: f.Message, Location: loc}
	}
	return huma.NewError(http.StatusBadRequest, "validation failed", details...)
}
