package live

import (
	"context"

	"outlay/internal/core"
	"outlay/internal/report"
)

// RangeTotal is the scalar pair emitted by SubscribeRangeTotals.
type RangeTotal struct {
	Amount core.Money
	Count  int
}

// Stream is a live sequence of one projection of the combined snapshot.
// Every projection derives from the same snapshot stream, never from a
// second subscription, so concurrent streams can not disagree.
type Stream[T any] struct {
	C     <-chan T
	inner *Subscription
}

func (s *Stream[T]) Unsubscribe() {
	s.inner.Unsubscribe()
}

// SubscribeDailyTotals streams the per-day totals for the query range.
func (m *Manager) SubscribeDailyTotals(ctx context.Context, query core.ReportQuery) (*Stream[[]core.DailyTotal], error) {
	return project(m, ctx, query, func(s report.Snapshot) []core.DailyTotal { return s.DailyTotals })
}

// SubscribeCategoryTotals streams the per-category totals for the query range.
func (m *Manager) SubscribeCategoryTotals(ctx context.Context, query core.ReportQuery) (*Stream[[]core.CategoryTotal], error) {
	return project(m, ctx, query, func(s report.Snapshot) []core.CategoryTotal { return s.CategoryTotals })
}

// SubscribeRangeTotals streams the range total amount and count.
func (m *Manager) SubscribeRangeTotals(ctx context.Context, query core.ReportQuery) (*Stream[RangeTotal], error) {
	return project(m, ctx, query, func(s report.Snapshot) RangeTotal {
		return RangeTotal{Amount: s.TotalAmount, Count: s.TotalCount}
	})
}

func project[T any](m *Manager, ctx context.Context, query core.ReportQuery, pick func(report.Snapshot) T) (*Stream[T], error) {
	inner, err := m.Subscribe(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make(chan T, 1)
	go func() {
		defer close(out)
		for snap := range inner.C {
			v := pick(snap)
			// Latest-wins, mirroring Manager.deliver: replace an unread
			// value instead of blocking the snapshot pump.
			select {
			case out <- v:
				continue
			default:
			}
			select {
			case <-out:
			default:
			}
			out <- v
		}
	}()

	return &Stream[T]{C: out, inner: inner}, nil
}
