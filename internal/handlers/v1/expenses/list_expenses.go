package expenses

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/logging"
	"github.com/carson-networks/expense-server/internal/query"
	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/validation"
)

// knownListParams is every query parameter the list endpoint accepts.
var knownListParams = map[string]struct{}{
	"min_amount": {}, "max_amount": {},
	"category": {}, "categories": {},
	"start_date": {}, "end_date": {},
	"is_recurring": {},
	"merchant": {}, "merchant_like": {},
	"payment_method": {},
	"q":        {},
	"since_id": {}, "max_id": {},
	"sort_by": {}, "sort_dir": {},
	"limit": {}, "offset": {},
}

// ListExpensesInput is the Huma input for listing expenses. Values are
// taken as strings and parsed by hand so that every malformed parameter is
// reported in a single 400 response. An empty value counts as absent.
type ListExpensesInput struct {
	MinAmount     string `query:"min_amount" doc:"Lower bound on amount, inclusive"`
	MaxAmount     string `query:"max_amount" doc:"Upper bound on amount, inclusive"`
	Category      string `query:"category" doc:"Exact category, case-insensitive"`
	StartDate     string `query:"start_date" doc:"Earliest date, inclusive (YYYY-MM-DD)"`
	EndDate       string `query:"end_date" doc:"Latest date, inclusive (YYYY-MM-DD)"`
	IsRecurring   string `query:"is_recurring" doc:"Boolean: true/false, yes/no, on/off or 1/0"`
	Merchant      string `query:"merchant" doc:"Exact merchant, case-insensitive"`
	MerchantLike  string `query:"merchant_like" doc:"Substring of merchant, case-insensitive"`
	PaymentMethod string `query:"payment_method" doc:"Exact payment method, case-insensitive"`
	Q             string `query:"q" doc:"Free-text search over description, merchant, category and payment method"`
	SinceID       string `query:"since_id" doc:"Only ids greater than this"`
	MaxID         string `query:"max_id" doc:"Only ids less than or equal to this"`
	SortBy        string `query:"sort_by" doc:"One of id, date, amount, category, merchant. Defaults to date"`
	SortDir       string `query:"sort_dir" doc:"asc or desc. Defaults to desc"`
	Limit         string `query:"limit" doc:"Page size, 1 to 200. Defaults to 50"`
	Offset        string `query:"offset" doc:"Number of matching rows to skip. Defaults to 0"`

	categories []string
	unknown    []string
}

// Resolve collects the repeated categories parameter and any parameter the
// endpoint does not recognise.
func (i *ListExpensesInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	values := u.Query()
	i.categories = values["categories"]
	for name := range values {
		if _, ok := knownListParams[name]; !ok {
			i.unknown = append(i.unknown, name)
		}
	}
	sort.Strings(i.unknown)
	return nil
}

// ListExpensesOutput is the Huma output for listing expenses.
type ListExpensesOutput struct {
	TotalCount string `header:"X-Total-Count" doc:"Number of expenses matching the filters across all pages"`
	Body       []Expense
}

type expenseLister interface {
	List(ctx context.Context, req query.Request) (*service.ListResult, error)
}

// ListExpensesHandler handles GET /expenses.
type ListExpensesHandler struct {
	ExpenseService expenseLister
}

func NewListExpensesHandler(svc expenseLister) *ListExpensesHandler {
	return &ListExpensesHandler{ExpenseService: svc}
}

// Register registers the list expenses endpoint with the Huma API.
func (h *ListExpensesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-expenses",
		Method:      http.MethodGet,
		Path:        "/expenses",
		Summary:     "List expenses",
		Description: "Returns one page of expenses matching every supplied filter. categories may be repeated and is combined with category.",
		Tags:        []string{tag},
		Security:    security,
	}, h.handle)
}

// parseListExpensesInput converts the raw query parameters into a request.
// Bounds and cross-field checks are left to query.Build.
func parseListExpensesInput(input *ListExpensesInput) (query.Request, error) {
	verr := &validation.Error{}
	for _, name := range input.unknown {
		verr.Add(name, "unknown query parameter")
	}

	p := query.Params{
		Category:      optString(input.Category),
		Categories:    input.categories,
		Merchant:      optString(input.Merchant),
		MerchantLike:  optString(input.MerchantLike),
		PaymentMethod: optString(input.PaymentMethod),
		Q:             optString(input.Q),
	}
	p.MinAmount = parseDecimal(verr, "min_amount", input.MinAmount)
	p.MaxAmount = parseDecimal(verr, "max_amount", input.MaxAmount)
	p.StartDate = parseDate(verr, "start_date", input.StartDate)
	p.EndDate = parseDate(verr, "end_date", input.EndDate)
	p.SinceID = parseInt64(verr, "since_id", input.SinceID)
	p.MaxID = parseInt64(verr, "max_id", input.MaxID)

	p.IsRecurring = parseBool(verr, "is_recurring", input.IsRecurring)

	req := query.Request{
		Params:  p,
		SortBy:  input.SortBy,
		SortDir: input.SortDir,
		Limit:   parseInt(verr, "limit", input.Limit),
		Offset:  parseInt(verr, "offset", input.Offset),
	}
	if err := verr.OrNil(); err != nil {
		return query.Request{}, err
	}
	return req, nil
}

func (h *ListExpensesHandler) handle(ctx context.Context, input *ListExpensesInput) (*ListExpensesOutput, error) {
	logData := logging.GetLogData(ctx)

	req, err := parseListExpensesInput(input)
	if err != nil {
		return nil, toHTTPError(err, "query")
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listExpensesMs")
	}
	result, err := h.ExpenseService.List(ctx, req)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(err, "query")
	}

	if logData != nil {
		logData.AddData("expenseCount", len(result.Expenses))
		logData.AddData("totalCount", result.Total)
	}

	body := make([]Expense, len(result.Expenses))
	for i, e := range result.Expenses {
		body[i] = fromExpense(e)
	}
	return &ListExpensesOutput{
		TotalCount: strconv.FormatInt(result.Total, 10),
		Body:       body,
	}, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// boolWords are the spellings accepted for boolean query values, compared
// case-insensitively.
var boolWords = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true,
	"false": false, "f": false, "no": false, "n": false, "off": false, "0": false,
}

func parseBool(verr *validation.Error, name, raw string) *bool {
	if raw == "" {
		return nil
	}
	b, ok := boolWords[strings.ToLower(raw)]
	if !ok {
		verr.Add(name, "must be a boolean (true/false, yes/no, on/off, 1/0)")
		return nil
	}
	return &b
}

func parseDecimal(verr *validation.Error, name, raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(name, "must be a decimal number")
		return nil
	}
	return &d
}

func parseDate(verr *validation.Error, name, raw string) *expense.Date {
	if raw == "" {
		return nil
	}
	d, err := expense.ParseDate(raw)
	if err != nil {
		verr.Add(name, "must be a date in YYYY-MM-DD format")
		return nil
	}
	return &d
}

func parseInt64(verr *validation.Error, name, raw string) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		verr.Add(name, "must be an integer")
		return nil
	}
	return &n
}

func parseInt(verr *validation.Error, name, raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(name, "must be an integer")
		return nil
	}
	return &n
}
