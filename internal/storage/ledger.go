// Package storage implements the durable expense ledger, the single source
// of truth every report is derived from.
package storage

import (
	"context"

	"outlay/internal/core"
)

// Ledger is the store contract the aggregation engine and the service layer
// depend on. All date filtering is at calendar-day granularity; results are
// ordered descending by creation time.
type Ledger interface {
	// Insert persists a new expense and returns the assigned id.
	Insert(ctx context.Context, e core.Expense) (int64, error)

	// Get returns the expense with the given id, or core.ErrNotFound.
	Get(ctx context.Context, id int64) (core.Expense, error)

	// Update replaces the mutable fields of the record matching e.ID. The
	// stored creation timestamp is kept; it is the grouping key and never
	// changes after insert. Returns core.ErrNotFound if no such id exists.
	Update(ctx context.Context, e core.Expense) error

	// Delete removes the record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id int64) error

	// QueryByDateRange returns all expenses whose calendar day falls in
	// [start, end], most recent first.
	QueryByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)

	// QueryByDate is QueryByDateRange with start = end = date.
	QueryByDate(ctx context.Context, date core.Date) ([]core.Expense, error)

	// QueryByCategory returns all expenses in the category, most recent first.
	QueryByCategory(ctx context.Context, category core.Category) ([]core.Expense, error)

	Close() error
}
