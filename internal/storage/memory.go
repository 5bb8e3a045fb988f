package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"outlay/internal/core"
)

// MemoryLedger keeps the ledger in process memory. It backs the "memory"
// backend and the test suites; semantics match SQLiteLedger exactly.
type MemoryLedger struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{nextID: 1}
}

func (l *MemoryLedger) Close() error { return nil }

func (l *MemoryLedger) Insert(_ context.Context, e core.Expense) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.ID = l.nextID
	l.nextID++
	e.CreatedAt = e.CreatedAt.UTC()
	l.items = append(l.items, e)
	return e.ID, nil
}

func (l *MemoryLedger) Get(_ context.Context, id int64) (core.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("get expense %d: %w", id, core.ErrNotFound)
}

func (l *MemoryLedger) Update(_ context.Context, e core.Expense) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.items {
		if cur.ID == e.ID {
			// Creation time is immutable; only the display fields change.
			cur.Title = e.Title
			cur.Amount = e.Amount
			cur.Category = e.Category
			cur.Notes = e.Notes
			cur.ReceiptPath = e.ReceiptPath
			l.items[i] = cur
			return nil
		}
	}
	return fmt.Errorf("update expense %d: %w", e.ID, core.ErrNotFound)
}

func (l *MemoryLedger) Delete(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.items {
		if cur.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (l *MemoryLedger) QueryByDateRange(_ context.Context, start, end core.Date) ([]core.Expense, error) {
	q := core.ReportQuery{Start: start, End: end}
	return l.filter(func(e core.Expense) bool { return q.Contains(e.Date()) }), nil
}

func (l *MemoryLedger) QueryByDate(ctx context.Context, date core.Date) ([]core.Expense, error) {
	return l.QueryByDateRange(ctx, date, date)
}

func (l *MemoryLedger) QueryByCategory(_ context.Context, category core.Category) ([]core.Expense, error) {
	return l.filter(func(e core.Expense) bool { return e.Category == category }), nil
}

func (l *MemoryLedger) filter(keep func(core.Expense) bool) []core.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []core.Expense
	for _, e := range l.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
