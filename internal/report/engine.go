// Package report computes derived views over the expense ledger: totals by
// day, totals by category, and range totals, scoped by an inclusive date
// range.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
	"outlay/internal/storage"
)

// Snapshot bundles every aggregate for one query, derived from a single
// ledger read so the three totals always agree exactly.
type Snapshot struct {
	DailyTotals    []core.DailyTotal
	CategoryTotals []core.CategoryTotal
	TotalAmount    core.Money
	TotalCount     int
}

// Engine computes aggregates on demand. It holds no state of its own; every
// result is a pure function of the ledger at read time.
type Engine struct {
	ledger storage.Ledger
}

func NewEngine(ledger storage.Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// Snapshot computes all four aggregates from one consistent range read.
func (e *Engine) Snapshot(ctx context.Context, q core.ReportQuery) (Snapshot, error) {
	if err := q.Validate(); err != nil {
		return Snapshot{}, err
	}
	expenses, err := e.ledger.QueryByDateRange(ctx, q.Start, q.End)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read ledger for snapshot: %w", err)
	}
	return aggregate(expenses), nil
}

// DailyTotals groups in-range expenses by calendar day, most recent day
// first. Days without expenses are absent (sparse series).
func (e *Engine) DailyTotals(ctx context.Context, q core.ReportQuery) ([]core.DailyTotal, error) {
	snap, err := e.Snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.DailyTotals, nil
}

// CategoryTotals groups in-range expenses by category, largest amount first.
func (e *Engine) CategoryTotals(ctx context.Context, q core.ReportQuery) ([]core.CategoryTotal, error) {
	snap, err := e.Snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.CategoryTotals, nil
}

// TotalAmount sums every in-range expense; zero for an empty range.
func (e *Engine) TotalAmount(ctx context.Context, q core.ReportQuery) (core.Money, error) {
	snap, err := e.Snapshot(ctx, q)
	if err != nil {
		return core.Money{}, err
	}
	return snap.TotalAmount, nil
}

// TotalCount counts every in-range expense; zero for an empty range.
func (e *Engine) TotalCount(ctx context.Context, q core.ReportQuery) (int, error) {
	snap, err := e.Snapshot(ctx, q)
	if err != nil {
		return 0, err
	}
	return snap.TotalCount, nil
}

func aggregate(expenses []core.Expense) Snapshot {
	var snap Snapshot

	byDay := make(map[core.Date]*core.DailyTotal)
	byCategory := make(map[core.Category]*core.CategoryTotal)

	for _, e := range expenses {
		snap.TotalAmount = snap.TotalAmount.Add(e.Amount)
		snap.TotalCount++

		day := e.Date()
		dt, ok := byDay[day]
		if !ok {
			dt = &core.DailyTotal{Date: day}
			byDay[day] = dt
		}
		dt.Amount = dt.Amount.Add(e.Amount)
		dt.Count++

		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &core.CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
		}
		ct.Amount = ct.Amount.Add(e.Amount)
		ct.Count++
	}

	snap.DailyTotals = make([]core.DailyTotal, 0, len(byDay))
	for _, dt := range byDay {
		snap.DailyTotals = append(snap.DailyTotals, *dt)
	}
	sort.Slice(snap.DailyTotals, func(i, j int) bool {
		return snap.DailyTotals[i].Date.After(snap.DailyTotals[j].Date.Time)
	})

	snap.CategoryTotals = make([]core.CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		ct.Percentage = percentage(ct.Amount, snap.TotalAmount)
		snap.CategoryTotals = append(snap.CategoryTotals, *ct)
	}
	sort.Slice(snap.CategoryTotals, func(i, j int) bool {
		a, b := snap.CategoryTotals[i], snap.CategoryTotals[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		// Deterministic tiebreak on the stable category identifier.
		return a.Category < b.Category
	})

	return snap
}

// percentage computes amount/total*100 rounded to two decimals.
func percentage(amount, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	pct := decimal.NewFromInt(amount.Cents).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total.Cents)).
		Round(2)
	f, _ := pct.Float64()
	return f
}
