package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/expense-server/internal/audit"
	"github.com/carson-networks/expense-server/internal/expense"
	"github.com/carson-networks/expense-server/internal/operator"
	"github.com/carson-networks/expense-server/internal/operator/actions"
	"github.com/carson-networks/expense-server/internal/query"
	"github.com/carson-networks/expense-server/internal/storage"
	"github.com/carson-networks/expense-server/internal/validation"
)

// ListResult is one page of expenses and the number of expenses matching
// the filters across all pages.
type ListResult struct {
	Expenses []*expense.Expense
	Total    int64
}

// ExpenseService handles expense business logic.
type ExpenseService struct {
	storage  storage.Storage
	operator *operator.Operator
	audit    audit.Sink
	logger   logrus.FieldLogger
	errs     classifier
	now      func() time.Time
}

// NewExpenseService creates a new ExpenseService. now supplies the clock
// that decides which dates lie in the future.
func NewExpenseService(store storage.Storage, op *operator.Operator, sink audit.Sink, logger logrus.FieldLogger, now func() time.Time) *ExpenseService {
	if now == nil {
		now = time.Now
	}
	return &ExpenseService{
		storage:  store,
		operator: op,
		audit:    sink,
		logger:   logger,
		errs:     classifier{logger: logger},
		now:      now,
	}
}

func (s *ExpenseService) today() expense.Date {
	return expense.DateOf(s.now())
}

// List validates the request, then counts and pages the matching expenses
// within one read session.
func (s *ExpenseService) List(ctx context.Context, req query.Request) (*ListResult, error) {
	q, err := query.Build(req)
	if err != nil {
		return nil, err
	}

	reader, err := s.storage.Read(ctx)
	if err != nil {
		return nil, s.errs.classify("list", 0, err)
	}
	defer reader.Close()

	total, err := reader.Expenses().Count(ctx, q.Predicates)
	if err != nil {
		return nil, s.errs.classify("list", 0, err)
	}

	list, err := reader.Expenses().List(ctx, q)
	if err != nil {
		return nil, s.errs.classify("list", 0, err)
	}

	return &ListResult{Expenses: list, Total: total}, nil
}

// Get retrieves an expense by id.
func (s *ExpenseService) Get(ctx context.Context, id int64) (*expense.Expense, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	reader, err := s.storage.Read(ctx)
	if err != nil {
		return nil, s.errs.classify("get", id, err)
	}
	defer reader.Close()

	e, err := reader.Expenses().FindByID(ctx, id)
	if err != nil {
		return nil, s.errs.classify("get", id, err)
	}
	return e, nil
}

// Create stores a new expense. amount, category and date are required.
func (s *ExpenseService) Create(ctx context.Context, fields expense.Fields) (*expense.Expense, error) {
	verr := &validation.Error{}
	verr.Merge(fields.RequireCreatable())
	verr.Merge(fields.Validate(s.today()))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	action := &actions.CreateExpense{Expense: fields.NewExpense()}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, s.errs.classify("create", 0, err)
	}
	return action.Created, nil
}

// Replace overwrites every field of an expense. All fields must be present.
func (s *ExpenseService) Replace(ctx context.Context, id int64, fields expense.Fields) (*expense.Expense, error) {
	verr := &validation.Error{}
	verr.Merge(idError(id))
	verr.Merge(fields.RequireComplete())
	verr.Merge(fields.Validate(s.today()))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return s.update(ctx, "replace", id, fields)
}

// Patch changes only the fields present in fields.
func (s *ExpenseService) Patch(ctx context.Context, id int64, fields expense.Fields) (*expense.Expense, error) {
	verr := &validation.Error{}
	verr.Merge(idError(id))
	verr.Merge(fields.Validate(s.today()))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return s.update(ctx, "patch", id, fields)
}

func (s *ExpenseService) update(ctx context.Context, operation string, id int64, fields expense.Fields) (*expense.Expense, error) {
	action := &actions.UpdateExpense{ID: id, Fields: fields}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, s.errs.classify(operation, id, err)
	}
	return action.Updated, nil
}

// Delete removes an expense and reports its final field values to the
// audit sink once the delete is committed. A failing sink does not fail the
// delete.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}

	action := &actions.DeleteExpense{ID: id}
	if err := s.operator.Process(ctx, action); err != nil {
		return s.errs.classify("delete", id, err)
	}

	if s.audit != nil {
		if err := s.audit.ExpenseDeleted(ctx, action.Snapshot); err != nil {
			s.logger.WithField("expenseID", id).WithError(err).Warn("Service.Delete.AuditFailed")
		}
	}
	return nil
}

func idError(id int64) *validation.Error {
	if id < 1 {
		return validation.New("id", "must be a positive integer")
	}
	return nil
}

func checkID(id int64) error {
	return idError(id).OrNil()
}
