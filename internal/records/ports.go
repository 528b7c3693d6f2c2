// Package records defines the port through which the rest of the service
// reaches the expense record store. Implementations live in
// internal/storage (SQLite) and records/memory (in-memory, tests and dev).
package records

import (
	"context"

	"costtracker/internal/core"
)

// DefaultScanLimit is the bounded-fetch size aggregation callers use. A
// single capped scan stands in for real pagination; data sets beyond this
// size are a documented limitation of the design.
const DefaultScanLimit = 1000

// Store is the record store port. Get returns (nil, nil) for an absent id;
// Update returns core.ErrNotFound when the target does not exist; Delete is
// idempotent.
type Store interface {
	Create(ctx context.Context, fields core.ExpenseFields) (core.Expense, error)
	Get(ctx context.Context, id string) (*core.Expense, error)
	Update(ctx context.Context, id string, update core.ExpenseUpdate) (core.Expense, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]core.Expense, error)
}
