// Package postgres implements storage.Storage on PostgreSQL. Queries are
// composed with bob and executed through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/expense-server/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Options configures the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Storage struct {
	sqlDB *sql.DB
	db    bob.DB
}

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts Options) (*Storage, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Storage{sqlDB: sqlDB, db: bob.NewDB(sqlDB)}, nil
}

// Read begins a read-only repeatable-read transaction so that every query
// of the session sees one snapshot.
func (s *Storage) Read(ctx context.Context) (storage.Reader, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}
	return &Reader{ctx: ctx, tx: tx}, nil
}

// Write begins a read-committed transaction.
func (s *Storage) Write(ctx context.Context) (storage.Writer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin write: %w", err)
	}
	return &Writer{ctx: ctx, tx: tx}, nil
}

func (s *Storage) Close() error {
	return s.sqlDB.Close()
}

type Reader struct {
	ctx context.Context
	tx  bob.Tx
}

func (r *Reader) Expenses() storage.ExpenseReader {
	return &expenseTable{exec: r.tx}
}

func (r *Reader) Users() storage.UserReader {
	return &userTable{exec: r.tx}
}

// Close ends the read transaction.
func (r *Reader) Close() error {
	return ignoreDone(r.tx.Rollback(r.ctx))
}

type Writer struct {
	ctx context.Context
	tx  bob.Tx
}

func (w *Writer) Expenses() storage.ExpenseWriter {
	return &expenseTable{exec: w.tx}
}

func (w *Writer) Users() storage.UserWriter {
	return &userTable{exec: w.tx}
}

func (w *Writer) Commit() error {
	return translate(w.tx.Commit(w.ctx))
}

func (w *Writer) Rollback() error {
	return ignoreDone(w.tx.Rollback(w.ctx))
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// translate maps driver errors onto the storage sentinels. Integrity
// constraint violations (SQLSTATE class 23) become storage.ErrConflict.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return fmt.Errorf("%w: %s", storage.ErrConflict, pqErr.Constraint)
	}
	return err
}
