// Package services orchestrates ledger mutations: persist, wake live
// subscriptions, and publish change events for external consumers.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/live"
	"outlay/internal/storage"
)

// ExpenseService coordinates writes across the ledger, the live broker,
// and AMQP. The broker and the events client are both optional; a nil
// client simply skips publishing.
type ExpenseService struct {
	ledger storage.Ledger
	broker *live.Broker
	events *amqp.Client
	clock  core.Clock
}

func NewExpenseService(ledger storage.Ledger, broker *live.Broker, events *amqp.Client, clock core.Clock) *ExpenseService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &ExpenseService{
		ledger: ledger,
		broker: broker,
		events: events,
		clock:  clock,
	}
}

// InsertExpense validates and persists a new entry. The creation timestamp
// is assigned here unless the caller already set one (imports, backfills).
func (s *ExpenseService) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock.Now()
	}

	id, err := s.ledger.Insert(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	e.ID = id

	s.notify(e.Date())
	s.publish(ctx, amqp.ChangeCreated, id, e.Date())

	return e, nil
}

// UpdateExpense replaces the mutable fields of an existing entry. The
// creation timestamp never changes, so the entry stays on its original day.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	existing, err := s.ledger.Get(ctx, e.ID)
	if err != nil {
		return core.Expense{}, err
	}

	e.CreatedAt = existing.CreatedAt
	if err := s.ledger.Update(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.notify(e.Date())
	s.publish(ctx, amqp.ChangeUpdated, e.ID, e.Date())

	return e, nil
}

// DeleteExpense removes an entry. Deleting an absent ID succeeds without
// notifying anyone, since no aggregate changed.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	existing, err := s.ledger.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.ledger.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.notify(existing.Date())
	s.publish(ctx, amqp.ChangeDeleted, id, existing.Date())

	return nil
}

// GetExpense fetches a single entry by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.ledger.Get(ctx, id)
}

// ExpensesByDate lists the entries of one calendar day, newest first.
func (s *ExpenseService) ExpensesByDate(ctx context.Context, date core.Date) ([]core.Expense, error) {
	return s.ledger.QueryByDate(ctx, date)
}

// ExpensesByCategory lists all entries of one category, newest first.
func (s *ExpenseService) ExpensesByCategory(ctx context.Context, category core.Category) ([]core.Expense, error) {
	if !category.Valid() {
		return nil, core.ErrInvalidCategory
	}
	return s.ledger.QueryByCategory(ctx, category)
}

func (s *ExpenseService) notify(date core.Date) {
	if s.broker != nil {
		s.broker.Notify(date)
	}
}

// publish sends the change event best-effort. The write already succeeded,
// so a publish failure is logged and swallowed.
func (s *ExpenseService) publish(ctx context.Context, kind amqp.ChangeKind, id int64, date core.Date) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishChange(ctx, kind, id, date.String()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"kind", kind, "id", id, "error", err)
	}
}
