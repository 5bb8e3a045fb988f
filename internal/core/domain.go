package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidRange    = errors.New("invalid date range")
	ErrNotFound        = errors.New("expense not found")
	ErrStorage         = errors.New("storage failure")
)

type (
	// Money is an exact monetary value in minor units. All aggregation is
	// integer arithmetic, so sums never drift.
	Money struct {
		Cents int64
	}

	// Date identifies a calendar day in UTC. The time-of-day component is
	// always zero; comparisons are on the day, never on a string prefix.
	Date struct {
		time.Time
	}

	// Expense is a single ledger entry. CreatedAt is assigned once and acts
	// as both the chronological key and the report grouping key.
	Expense struct {
		ID          int64
		Title       string
		Amount      Money
		Category    Category
		Notes       string
		ReceiptPath string
		CreatedAt   time.Time
	}
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Date returns the calendar day the expense belongs to.
func (e Expense) Date() Date {
	return DateOf(e.CreatedAt)
}
