// Package audit records snapshots of deleted expenses.
package audit

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/expense-server/internal/expense"
)

// Sink receives the snapshot of every deleted expense after the delete has
// been committed.
type Sink interface {
	ExpenseDeleted(ctx context.Context, snapshot expense.Snapshot) error
}

// LogSink writes each snapshot as a structured log entry.
type LogSink struct {
	logger logrus.FieldLogger
}

func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) ExpenseDeleted(_ context.Context, snapshot expense.Snapshot) error {
	s.logger.WithFields(logrus.Fields{
		"expenseID":     snapshot.ID,
		"amount":        snapshot.Amount,
		"category":      snapshot.Category,
		"date":          snapshot.Date,
		"description":   deref(snapshot.Description),
		"merchant":      deref(snapshot.Merchant),
		"paymentMethod": deref(snapshot.PaymentMethod),
		"isRecurring":   snapshot.IsRecurring,
	}).Info("Expense.Deleted")
	return nil
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Multi fans a snapshot out to every sink. All sinks are called even when
// some fail; the failures are joined.
type Multi []Sink

func (m Multi) ExpenseDeleted(ctx context.Context, snapshot expense.Snapshot) error {
	var errs []error
	for _, s := range m {
		if err := s.ExpenseDeleted(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
