// Package worker consumes ledger change events from the message broker and
// keeps an external report sink up to date with the affected days.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/export"
	"outlay/internal/report"
)

// Sink receives a refreshed report for one day. *share.SheetsSink satisfies
// it; a nil sink degrades to logging the recomputed totals.
type Sink interface {
	Push(ctx context.Context, state export.ReportState) error
}

// ReportWorker reacts to change events by recomputing the affected day's
// aggregates from the ledger and pushing the result to the sink.
type ReportWorker struct {
	engine *report.Engine
	sink   Sink
	clock  core.Clock
	logger *slog.Logger
}

func NewReportWorker(engine *report.Engine, sink Sink, clock core.Clock, logger *slog.Logger) *ReportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWorker{engine: engine, sink: sink, clock: clock, logger: logger}
}

// HandleChange recomputes the snapshot for the event's day and pushes it.
// An event with an unparseable date is dropped without error so it never
// requeues as a poison message.
func (w *ReportWorker) HandleChange(ctx context.Context, event *amqp.ChangeEvent) error {
	day, err := core.ParseDate(event.Date)
	if err != nil {
		w.logger.Warn("Dropping change event with bad date",
			"date", event.Date,
			"kind", string(event.Kind),
			"id", event.ID)
		return nil
	}

	query := core.ReportQuery{Start: day, End: day}
	snap, err := w.engine.Snapshot(ctx, query)
	if err != nil {
		return fmt.Errorf("recompute day %s: %w", day, err)
	}

	if w.sink == nil {
		w.logger.Info("Day recomputed",
			"date", day.String(),
			"total_cents", snap.TotalAmount.Cents,
			"count", snap.TotalCount)
		return nil
	}

	state := export.ReportState{
		Query:       query,
		Snapshot:    snap,
		GeneratedAt: core.DateOf(w.clock.Now()),
	}
	if err := w.sink.Push(ctx, state); err != nil {
		return fmt.Errorf("push day %s: %w", day, err)
	}
	w.logger.Info("Day pushed to sink", "date", day.String(), "count", snap.TotalCount)
	return nil
}

// Run consumes change events until the context ends. A dropped broker
// connection triggers a reconnect with backoff before consumption resumes.
func (w *ReportWorker) Run(ctx context.Context, client *amqp.Client) error {
	for {
		err := client.Consume(ctx, func(event *amqp.ChangeEvent) error {
			return w.HandleChange(ctx, event)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warn("Event consumption interrupted", "error", err)
		if err := client.Reconnect(ctx); err != nil {
			return err
		}
	}
}
