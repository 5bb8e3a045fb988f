package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"outlay/internal/core"
	"outlay/internal/report"
)

// DefaultPollInterval matches the report screen's periodic refresh. Polling
// is a safety net on top of broker notifications, both paths coalesce into
// the same trigger channel.
const DefaultPollInterval = 30 * time.Second

// Manager creates live subscriptions over the aggregation engine.
type Manager struct {
	engine *report.Engine
	broker *Broker
	poll   time.Duration
	logger *slog.Logger
}

// NewManager wires the engine and broker together. poll <= 0 disables the
// periodic refresh ticker.
func NewManager(engine *report.Engine, broker *Broker, poll time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{engine: engine, broker: broker, poll: poll, logger: logger}
}

// Subscription is a live stream of combined snapshots. C is closed after
// Unsubscribe returns; no snapshot is ever delivered past that point.
type Subscription struct {
	C <-chan report.Snapshot

	out    chan report.Snapshot
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
	cancel func()
}

// Unsubscribe tears the stream down: the broker registration is removed,
// the poll ticker stops, and C is closed. Blocks until the pump goroutine
// has exited, so no emission can race past the call.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		close(s.stop)
		<-s.done
	})
}

// Subscribe computes and emits the current snapshot for query, then re-emits
// after every ledger mutation touching the range (and on each poll tick).
// A failed recomputation is logged and skipped; the previous snapshot stays
// the last word until a read succeeds again.
func (m *Manager) Subscribe(ctx context.Context, query core.ReportQuery) (*Subscription, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	initial, err := m.engine.Snapshot(ctx, query)
	if err != nil {
		return nil, err
	}

	trigger := make(chan struct{}, 1)
	id := m.broker.register(query, trigger)

	sub := &Subscription{
		out:    make(chan report.Snapshot, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		cancel: func() { m.broker.unregister(id) },
	}
	sub.C = sub.out

	go m.pump(ctx, query, initial, trigger, sub)
	return sub, nil
}

func (m *Manager) pump(ctx context.Context, query core.ReportQuery, initial report.Snapshot, trigger <-chan struct{}, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.out)

	var ticker *time.Ticker
	var tick <-chan time.Time
	if m.poll > 0 {
		ticker = time.NewTicker(m.poll)
		tick = ticker.C
		defer ticker.Stop()
	}

	if !m.deliver(sub, initial) {
		return
	}

	for {
		select {
		case <-sub.stop:
			return
		case <-ctx.Done():
			sub.cancel()
			return
		case <-trigger:
		case <-tick:
		}

		snap, err := m.engine.Snapshot(ctx, query)
		if err != nil {
			// Transient read failures do not kill the subscription; the
			// last good snapshot stands.
			m.logger.WarnContext(ctx, "Snapshot recomputation failed, keeping last emission",
				"start", query.Start.String(),
				"end", query.End.String(),
				"error", err)
			continue
		}
		if !m.deliver(sub, snap) {
			return
		}
	}
}

// deliver hands a snapshot to the consumer, replacing an unconsumed older
// one so a slow reader always sees the latest state. Returns false when the
// subscription is stopping.
func (m *Manager) deliver(sub *Subscription, snap report.Snapshot) bool {
	for {
		select {
		case <-sub.stop:
			return false
		case sub.out <- snap:
			return true
		default:
		}
		// Buffer full: drop the stale snapshot and retry.
		select {
		case <-sub.out:
		default:
		}
	}
}
