package expenses

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/logging"
)

// UpdateExpenseInput is shared by full replace and partial update.
type UpdateExpenseInput struct {
	ID      string `path:"id" doc:"Expense id"`
	RawBody []byte
}

type UpdateExpenseOutput struct {
	Body Expense
}

type expenseUpdater interface {
	Replace(ctx context.Context, id int64, fields expense.Fields) (*expense.Expense, error)
	Patch(ctx context.Context, id int64, fields expense.Fields) (*expense.Expense, error)
}

// UpdateExpenseHandler handles PUT and PATCH /expenses/{id}.
type UpdateExpenseHandler struct {
	ExpenseService expenseUpdater
}

func NewUpdateExpenseHandler(svc expenseUpdater) *UpdateExpenseHandler {
	return &UpdateExpenseHandler{ExpenseService: svc}
}

// Register registers both update endpoints with the Huma API.
func (h *UpdateExpenseHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "replace-expense",
		Method:      http.MethodPut,
		Path:        "/expenses/{id}",
		Summary:     "Replace expense",
		Description: "Overwrites every field. All fields must be supplied; description, payment_method and merchant may be null.",
		Tags:        []string{tag},
		Security:    security,
	}, h.handleReplace)

	huma.Register(api, huma.Operation{
		OperationID: "patch-expense",
		Method:      http.MethodPatch,
		Path:        "/expenses/{id}",
		Summary:     "Update expense fields",
		Description: "Changes only the supplied fields. A null clears a nullable field.",
		Tags:        []string{tag},
		Security:    security,
	}, h.handlePatch)
}

func (h *UpdateExpenseHandler) handleReplace(ctx context.Context, input *UpdateExpenseInput) (*UpdateExpenseOutput, error) {
	return h.handle(ctx, input, "replaceExpenseMs", h.ExpenseService.Replace)
}

func (h *UpdateExpenseHandler) handlePatch(ctx context.Context, input *UpdateExpenseInput) (*UpdateExpenseOutput, error) {
	return h.handle(ctx, input, "patchExpenseMs", h.ExpenseService.Patch)
}

func (h *UpdateExpenseHandler) handle(
	ctx context.Context,
	input *UpdateExpenseInput,
	timing string,
	update func(context.Context, int64, expense.Fields) (*expense.Expense, error),
) (*UpdateExpenseOutput, error) {
	logData := logging.GetLogData(ctx)

	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}
	fields, err := expense.DecodeFields(input.RawBody)
	if err != nil {
		return nil, toHTTPError(err, "body")
	}

	var stopTimer func()
	if logData != nil {
		logData.AddData("expenseID", id)
		stopTimer = logData.AddTiming(timing)
	}
	updated, err := update(ctx, id, fields)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(err, "body")
	}

	return &UpdateExpenseOutput{Body: fromExpense(updated)}, nil
}
