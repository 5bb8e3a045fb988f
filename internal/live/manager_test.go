package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"outlay/internal/core"
	"outlay/internal/report"
	"outlay/internal/storage"
)

func newFixture(t *testing.T) (*storage.MemoryLedger, *Broker, *Manager) {
	t.Helper()
	ledger := storage.NewMemoryLedger()
	broker := NewBroker()
	// Polling disabled: tests drive every emission through the broker.
	manager := NewManager(report.NewEngine(ledger), broker, 0, nil)
	return ledger, broker, manager
}

func insert(t *testing.T, ledger *storage.MemoryLedger, cents int64, ts time.Time) {
	t.Helper()
	if _, err := ledger.Insert(context.Background(), core.Expense{
		Title:     "entry",
		Amount:    core.Money{Cents: cents},
		Category:  core.Groceries,
		CreatedAt: ts,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func receive(t *testing.T, ch <-chan report.Snapshot) report.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	panic("unreachable")
}

func TestSubscribeEmitsInitialSnapshot(t *testing.T) {
	ledger, _, manager := newFixture(t)
	insert(t, ledger, 1500, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))

	q := core.ReportQuery{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 1, 11)}
	sub, err := manager.Subscribe(context.Background(), q)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	snap := receive(t, sub.C)
	if snap.TotalAmount.Cents != 1500 || snap.TotalCount != 1 {
		t.Errorf("initial snapshot = %+v, want total 1500/1", snap)
	}
}

func TestSubscribeReactsToInRangeMutation(t *testing.T) {
	ledger, broker, manager := newFixture(t)
	insert(t, ledger, 1000, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))

	q := core.ReportQuery{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 1, 11)}
	sub, err := manager.Subscribe(context.Background(), q)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	receive(t, sub.C)

	insert(t, ledger, 500, time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC))
	broker.Notify(core.NewDate(2024, 1, 11))

	snap := receive(t, sub.C)
	if snap.TotalAmount.Cents != 1500 || snap.TotalCount != 2 {
		t.Errorf("post-mutation snapshot = %+v, want total 1500/2", snap)
	}
	if len(snap.DailyTotals) != 2 || snap.DailyTotals[0].Date != core.NewDate(2024, 1, 11) {
		t.Errorf("new date missing from daily totals: %+v", snap.DailyTotals)
	}
}

func TestSubscribeIgnoresOutOfRangeMutation(t *testing.T) {
	ledger, broker, manager := newFixture(t)

	q := core.ReportQuery{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 1, 11)}
	sub, err := manager.Subscribe(context.Background(), q)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	receive(t, sub.C)

	insert(t, ledger, 999, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	broker.Notify(core.NewDate(2024, 3, 1))

	select {
	case snap := <-sub.C:
		t.Errorf("out-of-range mutation produced an emission: %+v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	ledger, broker, manager := newFixture(t)

	q := core.ReportQuery{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}
	sub, err := manager.Subscribe(context.Background(), q)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	receive(t, sub.C)

	sub.Unsubscribe()
	if n := broker.Subscribers(); n != 0 {
		t.Errorf("broker still has %d listeners after unsubscribe", n)
	}

	// Mutation after teardown must not reach the subscriber.
	insert(t, ledger, 700, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	broker.Notify(core.NewDate(2024, 1, 15))

	select {
	case snap, ok := <-sub.C:
		if ok {
			t.Errorf("snapshot delivered after unsubscribe: %+v", snap)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("channel should be closed after unsubscribe")
	}

	// Unsubscribe is idempotent.
	sub.Unsubscribe()
}

func TestRepeatedResubscribeLeavesNoDuplicateListeners(t *testing.T) {
	_, broker, manager := newFixture(t)

	q := core.ReportQuery{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}
	for i := 0; i < 5; i++ {
		sub, err := manager.Subscribe(context.Background(), q)
		if err != nil {
			t.Fatalf("Subscribe %d: %v", i, err)
		}
		receive(t, sub.C)
		sub.Unsubscribe()
	}
	if n := broker.Subscribers(); n != 0 {
		t.Errorf("%d listeners leaked across resubscriptions", n)
	}
}

func TestSubscribeInvalidRange(t *testing.T) {
	_, _, manager := newFixture(t)
	q := core.ReportQuery{Start: core.NewDate(2024, 2, 1), End: core.NewDate(2024, 1, 1)}
	if _, err := manager.Subscribe(context.Background(), q); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("Subscribe inverted range: got %v, want ErrInvalidRange", err)
	}
}

func TestCoalescedNotifications(t *testing.T) {
	ledger, broker, manager := newFixture(t)
	insert(t, ledger, 100, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))

	q := core.ReportQuery{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 1, 10)}
	sub, err := manager.Subscribe(context.Background(), q)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	receive(t, sub.C)

	// A burst of notifications must leave the consumer with the latest
	// consistent snapshot, not a backlog of stale intermediates.
	for i := 0; i < 10; i++ {
		insert(t, ledger, 100, time.Date(2024, 1, 10, 10, i, 0, 0, time.UTC))
		broker.Notify(core.NewDate(2024, 1, 10))
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-sub.C:
			if snap.TotalCount == 11 {
				if snap.TotalAmount.Cents != 1100 {
					t.Errorf("final snapshot amount = %d, want 1100", snap.TotalAmount.Cents)
				}
				return
			}
		case <-deadline:
			t.Fatal("never observed the final coalesced snapshot")
		}
	}
}

func TestProjectedStreams(t *testing.T) {
	ledger, broker, manager := newFixture(t)
	insert(t, ledger, 2500, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))

	q := core.ReportQuery{Start: core.NewDate(2024, 1, 10), End: core.NewDate(2024, 1, 10)}

	daily, err := manager.SubscribeDailyTotals(context.Background(), q)
	if err != nil {
		t.Fatalf("SubscribeDailyTotals: %v", err)
	}
	defer daily.Unsubscribe()

	totals, err := manager.SubscribeRangeTotals(context.Background(), q)
	if err != nil {
		t.Fatalf("SubscribeRangeTotals: %v", err)
	}
	defer totals.Unsubscribe()

	select {
	case ds := <-daily.C:
		if len(ds) != 1 || ds[0].Amount.Cents != 2500 {
			t.Errorf("daily stream = %+v, want one day of 2500", ds)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daily stream never emitted")
	}

	select {
	case rt := <-totals.C:
		if rt.Amount.Cents != 2500 || rt.Count != 1 {
			t.Errorf("range totals stream = %+v, want 2500/1", rt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("range totals stream never emitted")
	}

	// Each projection rides its own combined subscription.
	if n := broker.Subscribers(); n != 2 {
		t.Errorf("expected 2 broker listeners, got %d", n)
	}
}
