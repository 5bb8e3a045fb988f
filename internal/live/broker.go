// Package live delivers aggregation results as push-based snapshot streams
// that update whenever the ledger changes inside a subscription's range.
package live

import (
	"sync"

	"outlay/internal/core"
)

// Broker fans ledger-change notifications out to active subscriptions. The
// service layer calls Notify with the affected calendar day after every
// successful mutation; subscriptions whose range contains that day are
// triggered. Trigger channels have capacity one, so bursts of overlapping
// notifications coalesce into a single recomputation.
type Broker struct {
	mu   sync.Mutex
	seq  int64
	subs map[int64]registration
}

type registration struct {
	query   core.ReportQuery
	trigger chan struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int64]registration)}
}

// Notify wakes every subscription whose range contains date. A zero date
// means the affected day is unknown and wakes everyone.
func (b *Broker) Notify(date core.Date) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, reg := range b.subs {
		if !date.IsZero() && !reg.query.Contains(date) {
			continue
		}
		select {
		case reg.trigger <- struct{}{}:
		default:
			// A recomputation is already pending; this trigger folds into it.
		}
	}
}

// register adds a trigger channel scoped to query and returns its id.
func (b *Broker) register(query core.ReportQuery, trigger chan struct{}) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.subs[b.seq] = registration{query: query, trigger: trigger}
	return b.seq
}

func (b *Broker) unregister(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Subscribers returns the number of registered listeners.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
