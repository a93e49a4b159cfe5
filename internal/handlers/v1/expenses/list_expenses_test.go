package expenses

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/query"
	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/validation"
)

// -- parseListExpensesInput unit tests --

func TestParseListExpensesInput_Empty(t *testing.T) {
	req, err := parseListExpensesInput(&ListExpensesInput{})
	require.NoError(t, err)
	assert.Equal(t, query.Request{}, req)
}

func TestParseListExpensesInput_AllParams(t *testing.T) {
	input := &ListExpensesInput{
		MinAmount:     "1.5",
		MaxAmount:     "20",
		Category:      "Food",
		StartDate:     "2025-01-01",
		EndDate:       "2025-01-31",
		IsRecurring:   "TRUE",
		Merchant:      "Cafe",
		MerchantLike:  "caf",
		PaymentMethod: "card",
		Q:             "latte",
		SinceID:       "3",
		MaxID:         "90",
		SortBy:        "amount",
		SortDir:       "asc",
		Limit:         "10",
		Offset:        "20",
		categories:    []string{"Travel", "Rent"},
	}

	req, err := parseListExpensesInput(input)
	require.NoError(t, err)

	p := req.Params
	assert.True(t, p.MinAmount.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, p.MaxAmount.Equal(decimal.RequireFromString("20")))
	assert.Equal(t, "Food", *p.Category)
	assert.Equal(t, []string{"Travel", "Rent"}, p.Categories)
	assert.Equal(t, expense.NewDate(2025, time.January, 1), *p.StartDate)
	assert.Equal(t, expense.NewDate(2025, time.January, 31), *p.EndDate)
	assert.True(t, *p.IsRecurring)
	assert.Equal(t, "Cafe", *p.Merchant)
	assert.Equal(t, "caf", *p.MerchantLike)
	assert.Equal(t, "card", *p.PaymentMethod)
	assert.Equal(t, "latte", *p.Q)
	assert.Equal(t, int64(3), *p.SinceID)
	assert.Equal(t, int64(90), *p.MaxID)
	assert.Equal(t, "amount", req.SortBy)
	assert.Equal(t, "asc", req.SortDir)
	assert.Equal(t, 10, *req.Limit)
	assert.Equal(t, 20, *req.Offset)
}

func TestParseListExpensesInput_ReportsEveryMalformedValue(t *testing.T) {
	input := &ListExpensesInput{
		MinAmount:   "cheap",
		StartDate:   "01/02/2025",
		IsRecurring: "maybe",
		SinceID:     "x",
		Limit:       "ten",
		unknown:     []string{"colour"},
	}

	_, err := parseListExpensesInput(input)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	var fields []string
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"colour", "min_amount", "start_date", "is_recurring", "since_id", "limit"}, fields)
}

func TestParseListExpensesInput_BooleanSpellings(t *testing.T) {
	cases := map[string]bool{
		"true": true, "True": true, "1": true, "yes": true, "ON": true, "y": true,
		"false": false, "0": false, "no": false, "off": false, "F": false,
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			req, err := parseListExpensesInput(&ListExpensesInput{IsRecurring: raw})
			require.NoError(t, err)
			require.NotNil(t, req.Params.IsRecurring)
			assert.Equal(t, want, *req.Params.IsRecurring)
		})
	}
}

// -- HTTP integration tests --

func TestHTTP_ListExpenses_DefaultsAndTotalHeader(t *testing.T) {
	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, query.Request{}).
		Return(&service.ListResult{Expenses: []*expense.Expense{coffee()}, Total: 42}, nil)

	resp := newTestAPI(t, svc).Get("/expenses")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "42", resp.Header().Get("X-Total-Count"))
	var body []Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, int64(7), body[0].ID)
}

func TestHTTP_ListExpenses_EmptyPageIsArray(t *testing.T) {
	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, mock.Anything).
		Return(&service.ListResult{Expenses: []*expense.Expense{}, Total: 3}, nil)

	resp := newTestAPI(t, svc).Get("/expenses?offset=100")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", strings.TrimSpace(resp.Body.String()))
	assert.Equal(t, "3", resp.Header().Get("X-Total-Count"))
}

func TestHTTP_ListExpenses_RepeatedCategories(t *testing.T) {
	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, mock.MatchedBy(func(req query.Request) bool {
		return assert.ObjectsAreEqual([]string{"Food", "Travel"}, req.Params.Categories) &&
			req.Params.Category != nil && *req.Params.Category == "Rent"
	})).Return(&service.ListResult{Expenses: []*expense.Expense{}}, nil)

	resp := newTestAPI(t, svc).Get("/expenses?categories=Food&categories=Travel&category=Rent")

	assert.Equal(t, http.StatusOK, resp.Code)
	svc.AssertExpectations(t)
}

func TestHTTP_ListExpenses_EmptyValuesAreAbsent(t *testing.T) {
	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, query.Request{}).
		Return(&service.ListResult{Expenses: []*expense.Expense{}}, nil)

	resp := newTestAPI(t, svc).Get("/expenses?category=&q=&limit=")

	assert.Equal(t, http.StatusOK, resp.Code)
	svc.AssertExpectations(t)
}

func TestHTTP_ListExpenses_IsRecurringWord(t *testing.T) {
	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, mock.MatchedBy(func(req query.Request) bool {
		return req.Params.IsRecurring != nil && !*req.Params.IsRecurring
	})).Return(&service.ListResult{Expenses: []*expense.Expense{}}, nil)

	resp := newTestAPI(t, svc).Get("/expenses?is_recurring=no")

	assert.Equal(t, http.StatusOK, resp.Code)
	svc.AssertExpectations(t)
}

func TestHTTP_ListExpenses_UnknownParameter(t *testing.T) {
	svc := new(mockExpenseService)

	resp := newTestAPI(t, svc).Get("/expenses?colour=red")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	e := decodeError(t, strings.NewReader(resp.Body.String()))
	assert.Equal(t, []string{"query.colour"}, locations(e))
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestHTTP_ListExpenses_ServiceValidationFailure(t *testing.T) {
	verr := validation.New("sort_by", "invalid sort_by, allowed: amount, category, date, id, merchant")
	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, mock.Anything).Return(nil, verr)

	resp := newTestAPI(t, svc).Get("/expenses?sort_by=color")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	e := decodeError(t, strings.NewReader(resp.Body.String()))
	assert.Equal(t, []string{"query.sort_by"}, locations(e))
}

func TestHTTP_ListExpenses_StoreFailure(t *testing.T) {
	svc := new(mockExpenseService)
	svc.On("List", mock.Anything, mock.Anything).Return(nil, service.ErrStoreFailure)

	resp := newTestAPI(t, svc).Get("/expenses")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
