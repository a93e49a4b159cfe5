package expenses

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/logging"
)

// CreateExpenseInput is the Huma input for creating an expense. The body is
// decoded by hand so that missing fields and explicit nulls can be told
// apart.
type CreateExpenseInput struct {
	RawBody []byte
}

// CreateExpenseOutput is the Huma output for creating an expense.
type CreateExpenseOutput struct {
	Location string `header:"Location"`
	Body     Expense
}

type expenseCreator interface {
	Create(ctx context.Context, fields expense.Fields) (*expense.Expense, error)
}

// CreateExpenseHandler handles POST /expenses.
type CreateExpenseHandler struct {
	ExpenseService expenseCreator
}

func NewCreateExpenseHandler(svc expenseCreator) *CreateExpenseHandler {
	return &CreateExpenseHandler{ExpenseService: svc}
}

// Register registers the create expense endpoint with the Huma API.
func (h *CreateExpenseHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-expense",
		Method:        http.MethodPost,
		Path:          "/expenses",
		Summary:       "Create expense",
		Description:   "Creates an expense. amount, category and date are required; is_recurring defaults to false and the text fields to null.",
		Tags:          []string{tag},
		DefaultStatus: http.StatusCreated,
		Security:      security,
	}, h.handle)
}

func (h *CreateExpenseHandler) handle(ctx context.Context, input *CreateExpenseInput) (*CreateExpenseOutput, error) {
	logData := logging.GetLogData(ctx)

	fields, err := expense.DecodeFields(input.RawBody)
	if err != nil {
		return nil, toHTTPError(err, "body")
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createExpenseMs")
	}
	created, err := h.ExpenseService.Create(ctx, fields)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(err, "body")
	}

	if logData != nil {
		logData.AddData("expenseID", created.ID)
	}

	return &CreateExpenseOutput{
		Location: "/expenses/" + strconv.FormatInt(created.ID, 10),
		Body:     fromExpense(created),
	}, nil
}
