package expenses

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/logging"
)

type DeleteExpenseInput struct {
	ID string `path:"id" doc:"Expense id"`
}

type expenseDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteExpenseHandler handles DELETE /expenses/{id}.
type DeleteExpenseHandler struct {
	ExpenseService expenseDeleter
}

func NewDeleteExpenseHandler(svc expenseDeleter) *DeleteExpenseHandler {
	return &DeleteExpenseHandler{ExpenseService: svc}
}

func (h *DeleteExpenseHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "delete-expense",
		Method:        http.MethodDelete,
		Path:          "/expenses/{id}",
		Summary:       "Delete expense",
		Tags:          []string{tag},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
	}, h.handle)
}

func (h *DeleteExpenseHandler) handle(ctx context.Context, input *DeleteExpenseInput) (*struct{}, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	var stopTimer func()
	if logData != nil {
		logData.AddData("expenseID", id)
		stopTimer = logData.AddTiming("deleteExpenseMs")
	}
	err = h.ExpenseService.Delete(ctx, id)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(err, "path")
	}
	return nil, nil
}
