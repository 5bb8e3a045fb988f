package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"outlay/internal/core"
)

// backends runs the same contract tests over every Ledger implementation.
func backends(t *testing.T) map[string]Ledger {
	t.Helper()

	sqlite, err := NewSQLiteLedger(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite ledger: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Ledger{
		"sqlite": sqlite,
		"memory": NewMemoryLedger(),
	}
}

func expenseAt(title string, cents int64, cat core.Category, ts time.Time) core.Expense {
	return core.Expense{
		Title:     title,
		Amount:    core.Money{Cents: cents},
		Category:  cat,
		CreatedAt: ts,
	}
}

func TestLedgerInsertAndGet(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ts := time.Date(2024, 1, 10, 9, 15, 0, 0, time.UTC)

			id, err := ledger.Insert(ctx, expenseAt("Coffee", 350, core.CoffeeTea, ts))
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if id == 0 {
				t.Fatal("Insert returned zero id")
			}

			got, err := ledger.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Title != "Coffee" || got.Amount.Cents != 350 || got.Category != core.CoffeeTea {
				t.Errorf("Get = %+v, fields do not round-trip", got)
			}
			if !got.CreatedAt.Equal(ts) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, ts)
			}

			id2, err := ledger.Insert(ctx, expenseAt("Lunch", 1200, core.Restaurants, ts.Add(time.Hour)))
			if err != nil {
				t.Fatalf("second Insert: %v", err)
			}
			if id2 == id {
				t.Error("ids must be unique")
			}
		})
	}
}

func TestLedgerUpdate(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ts := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
			id, err := ledger.Insert(ctx, expenseAt("Grocerys", 2000, core.Groceries, ts))
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}

			updated := expenseAt("Groceries", 2150, core.Groceries, ts.AddDate(0, 0, 5))
			updated.ID = id
			if err := ledger.Update(ctx, updated); err != nil {
				t.Fatalf("Update: %v", err)
			}

			got, err := ledger.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get after update: %v", err)
			}
			if got.Title != "Groceries" || got.Amount.Cents != 2150 {
				t.Errorf("updated fields not stored: %+v", got)
			}
			if !got.CreatedAt.Equal(ts) {
				t.Errorf("CreatedAt changed on update: %v, want %v", got.CreatedAt, ts)
			}

			missing := expenseAt("Ghost", 100, core.Other, ts)
			missing.ID = 9999
			if err := ledger.Update(ctx, missing); !errors.Is(err, core.ErrNotFound) {
				t.Errorf("Update missing id: got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestLedgerDeleteIdempotent(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ts := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
			id, err := ledger.Insert(ctx, expenseAt("Taxi", 900, core.Transportation, ts))
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}

			if err := ledger.Delete(ctx, id); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := ledger.Get(ctx, id); !errors.Is(err, core.ErrNotFound) {
				t.Errorf("Get after delete: got %v, want ErrNotFound", err)
			}
			// A second delete, and a delete of an id that never existed,
			// both succeed.
			if err := ledger.Delete(ctx, id); err != nil {
				t.Errorf("repeat Delete: %v", err)
			}
			if err := ledger.Delete(ctx, 123456); err != nil {
				t.Errorf("Delete unknown id: %v", err)
			}

			rows, err := ledger.QueryByDate(ctx, core.NewDate(2024, 1, 10))
			if err != nil {
				t.Fatalf("QueryByDate: %v", err)
			}
			if len(rows) != 0 {
				t.Errorf("deleted expense still visible: %+v", rows)
			}
		})
	}
}

func TestLedgerDateRangeQueries(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			// Spread entries across a month boundary. A lexical prefix match
			// would mishandle this; a calendar comparison must not.
			stamps := []time.Time{
				time.Date(2024, 1, 31, 23, 50, 0, 0, time.UTC),
				time.Date(2024, 2, 1, 0, 10, 0, 0, time.UTC),
				time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC),
				time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC),
			}
			for i, ts := range stamps {
				if _, err := ledger.Insert(ctx, expenseAt("e", int64(100*(i+1)), core.Other, ts)); err != nil {
					t.Fatalf("Insert: %v", err)
				}
			}

			got, err := ledger.QueryByDateRange(ctx, core.NewDate(2024, 1, 31), core.NewDate(2024, 2, 1))
			if err != nil {
				t.Fatalf("QueryByDateRange: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("range 01-31..02-01: got %d expenses, want 3", len(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i].CreatedAt.After(got[i-1].CreatedAt) {
					t.Errorf("results not descending by created_at: %v before %v", got[i-1].CreatedAt, got[i].CreatedAt)
				}
			}

			day, err := ledger.QueryByDate(ctx, core.NewDate(2024, 2, 1))
			if err != nil {
				t.Fatalf("QueryByDate: %v", err)
			}
			if len(day) != 2 {
				t.Errorf("2024-02-01: got %d expenses, want 2", len(day))
			}

			empty, err := ledger.QueryByDateRange(ctx, core.NewDate(2023, 1, 1), core.NewDate(2023, 12, 31))
			if err != nil {
				t.Fatalf("empty range query: %v", err)
			}
			if len(empty) != 0 {
				t.Errorf("out-of-range query returned %d expenses", len(empty))
			}
		})
	}
}

func TestLedgerQueryByCategory(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
			if _, err := ledger.Insert(ctx, expenseAt("Bus", 250, core.PublicTransport, ts)); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if _, err := ledger.Insert(ctx, expenseAt("Metro", 180, core.PublicTransport, ts.Add(time.Hour))); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if _, err := ledger.Insert(ctx, expenseAt("Pizza", 1500, core.Restaurants, ts)); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			got, err := ledger.QueryByCategory(ctx, core.PublicTransport)
			if err != nil {
				t.Fatalf("QueryByCategory: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("got %d transport expenses, want 2", len(got))
			}
			if got[0].Title != "Metro" {
				t.Errorf("expected most recent first, got %q", got[0].Title)
			}
		})
	}
}

func TestLedgerOrderWithinSameSecond(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			// Sub-second spread inside one wall-clock second. An encoding
			// that trims trailing fractional zeros sorts the whole-second
			// entry after the others.
			early := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
			mid := early.Add(250 * time.Millisecond)
			late := early.Add(500 * time.Millisecond)
			for _, e := range []core.Expense{
				expenseAt("mid", 200, core.Other, mid),
				expenseAt("early", 100, core.Other, early),
				expenseAt("late", 300, core.Other, late),
			} {
				if _, err := ledger.Insert(ctx, e); err != nil {
					t.Fatalf("Insert: %v", err)
				}
			}

			got, err := ledger.QueryByDate(ctx, core.NewDate(2024, 1, 10))
			if err != nil {
				t.Fatalf("QueryByDate: %v", err)
			}
			want := []string{"late", "mid", "early"}
			if len(got) != len(want) {
				t.Fatalf("got %d expenses, want %d", len(got), len(want))
			}
			for i, title := range want {
				if got[i].Title != title {
					t.Errorf("position %d: got %q (created %v), want %q",
						i, got[i].Title, got[i].CreatedAt, title)
				}
			}
		})
	}
}
