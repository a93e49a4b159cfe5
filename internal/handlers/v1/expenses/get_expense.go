package expenses

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/logging"
)

type GetExpenseInput struct {
	ID string `path:"id" doc:"Expense id"`
}

type GetExpenseOutput struct {
	Body Expense
}

type expenseGetter interface {
	Get(ctx context.Context, id int64) (*expense.Expense, error)
}

// GetExpenseHandler handles GET /expenses/{id}.
type GetExpenseHandler struct {
	ExpenseService expenseGetter
}

func NewGetExpenseHandler(svc expenseGetter) *GetExpenseHandler {
	return &GetExpenseHandler{ExpenseService: svc}
}

func (h *GetExpenseHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-expense",
		Method:      http.MethodGet,
		Path:        "/expenses/{id}",
		Summary:     "Get expense",
		Tags:        []string{tag},
		Security:    security,
	}, h.handle)
}

func (h *GetExpenseHandler) handle(ctx context.Context, input *GetExpenseInput) (*GetExpenseOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("expenseID", id)
	}

	e, err := h.ExpenseService.Get(ctx, id)
	if err != nil {
		return nil, toHTTPError(err, "path")
	}
	return &GetExpenseOutput{Body: fromExpense(e)}, nil
}
