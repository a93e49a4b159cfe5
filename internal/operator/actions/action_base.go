package actions

import (
	"context"

	"github.com/carson-networks/expense-server/internal/storage"
)

// IAction is one unit of work performed inside a write transaction. Results
// are stored on the action itself and are valid only after a successful
// commit.
type IAction interface {
	Perform(ctx context.Context, writer storage.Writer) error
}
