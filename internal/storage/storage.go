package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("storage: record not found")
	// ErrConflict is returned when a write violates a store constraint
	// (unique, check or not-null).
	ErrConflict = errors.New("storage: constraint violation")
)

// Storage hands out read sessions and write transactions. Each request
// acquires its own session and releases it on every path.
type Storage interface {
	Read(ctx context.Context) (Reader, error)
	Write(ctx context.Context) (Writer, error)
	Close() error
}
