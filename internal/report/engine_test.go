package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"outlay/internal/core"
	"outlay/internal/storage"
)

func seedLedger(t *testing.T) *storage.MemoryLedger {
	t.Helper()
	ledger := storage.NewMemoryLedger()
	ctx := context.Background()

	// 2024-01-10: three Food entries totalling 150.00.
	// 2024-01-11: two Travel entries totalling 50.00.
	entries := []struct {
		title string
		cents int64
		cat   core.Category
		ts    time.Time
	}{
		{"Breakfast", 3000, core.FoodDining, time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)},
		{"Lunch", 7000, core.FoodDining, time.Date(2024, 1, 10, 13, 0, 0, 0, time.UTC)},
		{"Dinner", 5000, core.FoodDining, time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)},
		{"Bus", 2000, core.Travel, time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)},
		{"Train", 3000, core.Travel, time.Date(2024, 1, 11, 18, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		if _, err := ledger.Insert(ctx, core.Expense{
			Title:     e.title,
			Amount:    core.Money{Cents: e.cents},
			Category:  e.cat,
			CreatedAt: e.ts,
		}); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
	return ledger
}

func TestSnapshotExample(t *testing.T) {
	engine := NewEngine(seedLedger(t))
	q := core.ReportQuery{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 1, 11)}

	snap, err := engine.Snapshot(context.Background(), q)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if snap.TotalAmount.Cents != 20000 {
		t.Errorf("TotalAmount = %d cents, want 20000", snap.TotalAmount.Cents)
	}
	if snap.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", snap.TotalCount)
	}

	wantDaily := []core.DailyTotal{
		{Date: core.NewDate(2024, 1, 11), Amount: core.Money{Cents: 5000}, Count: 2},
		{Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 15000}, Count: 3},
	}
	if len(snap.DailyTotals) != len(wantDaily) {
		t.Fatalf("DailyTotals has %d entries, want %d", len(snap.DailyTotals), len(wantDaily))
	}
	for i, want := range wantDaily {
		got := snap.DailyTotals[i]
		if got.Date != want.Date || got.Amount != want.Amount || got.Count != want.Count {
			t.Errorf("DailyTotals[%d] = %+v, want %+v", i, got, want)
		}
	}

	if len(snap.CategoryTotals) != 2 {
		t.Fatalf("CategoryTotals has %d entries, want 2", len(snap.CategoryTotals))
	}
	food, travel := snap.CategoryTotals[0], snap.CategoryTotals[1]
	if food.Category != core.FoodDining || food.Amount.Cents != 15000 || food.Count != 3 {
		t.Errorf("top category = %+v, want Food 150.00 x3", food)
	}
	if travel.Category != core.Travel || travel.Amount.Cents != 5000 || travel.Count != 2 {
		t.Errorf("second category = %+v, want Travel 50.00 x2", travel)
	}
	if food.Percentage != 75.0 || travel.Percentage != 25.0 {
		t.Errorf("percentages = %v/%v, want 75/25", food.Percentage, travel.Percentage)
	}
}

func TestSnapshotConsistencyLaw(t *testing.T) {
	engine := NewEngine(seedLedger(t))
	q := core.ReportQuery{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}

	snap, err := engine.Snapshot(context.Background(), q)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	var daily, byCategory int64
	for _, d := range snap.DailyTotals {
		daily += d.Amount.Cents
	}
	for _, c := range snap.CategoryTotals {
		byCategory += c.Amount.Cents
	}
	// Exact equality: cents arithmetic, no tolerance needed.
	if daily != snap.TotalAmount.Cents || byCategory != snap.TotalAmount.Cents {
		t.Errorf("sum(daily)=%d sum(category)=%d total=%d, all must be equal",
			daily, byCategory, snap.TotalAmount.Cents)
	}
}

func TestSnapshotSortingInvariants(t *testing.T) {
	ledger := seedLedger(t)
	ctx := context.Background()
	// Tie on amount between two categories: identifier decides the order.
	for _, cat := range []core.Category{core.Gifts, core.Donations} {
		if _, err := ledger.Insert(ctx, core.Expense{
			Title:     "tie",
			Amount:    core.Money{Cents: 4200},
			Category:  cat,
			CreatedAt: time.Date(2024, 1, 12, 12, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	engine := NewEngine(ledger)
	q := core.ReportQuery{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}
	snap, err := engine.Snapshot(ctx, q)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	seen := map[core.Date]bool{}
	for i, d := range snap.DailyTotals {
		if seen[d.Date] {
			t.Errorf("date %s appears twice", d.Date)
		}
		seen[d.Date] = true
		if i > 0 && !d.Date.Before(snap.DailyTotals[i-1].Date.Time) {
			t.Errorf("daily totals not strictly descending at index %d", i)
		}
	}

	cats := map[core.Category]bool{}
	for i, c := range snap.CategoryTotals {
		if cats[c.Category] {
			t.Errorf("category %s appears twice", c.Category)
		}
		cats[c.Category] = true
		if i > 0 {
			prev := snap.CategoryTotals[i-1]
			if c.Amount.Cents > prev.Amount.Cents {
				t.Errorf("category totals not descending at index %d", i)
			}
			if c.Amount.Cents == prev.Amount.Cents && c.Category < prev.Category {
				t.Errorf("amount tie not broken by identifier at index %d", i)
			}
		}
	}
}

func TestSnapshotEmptyRange(t *testing.T) {
	engine := NewEngine(seedLedger(t))
	q := core.ReportQuery{Start: core.NewDate(2030, 1, 1), End: core.NewDate(2030, 1, 31)}

	snap, err := engine.Snapshot(context.Background(), q)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.DailyTotals) != 0 || len(snap.CategoryTotals) != 0 {
		t.Errorf("empty range must yield empty collections: %+v", snap)
	}
	if snap.TotalAmount.Cents != 0 || snap.TotalCount != 0 {
		t.Errorf("empty range must yield zero scalars: %+v", snap)
	}
}

func TestSnapshotInvalidRange(t *testing.T) {
	engine := NewEngine(seedLedger(t))
	q := core.ReportQuery{Start: core.NewDate(2024, 2, 1), End: core.NewDate(2024, 1, 1)}

	if _, err := engine.Snapshot(context.Background(), q); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("Snapshot inverted range: got %v, want ErrInvalidRange", err)
	}
}
