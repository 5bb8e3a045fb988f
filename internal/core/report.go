package core

import "time"

// Clock provides the current time. Injected everywhere a timestamp is
// assigned so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DailyTotal is the aggregate of all expenses on one calendar day. Derived,
// never persisted.
type DailyTotal struct {
	Date   Date
	Amount Money
	Count  int
}

// CategoryTotal is the aggregate of all in-range expenses for one category.
// Percentage is the share of the range total, rounded to two decimals.
type CategoryTotal struct {
	Category   Category
	Amount     Money
	Count      int
	Percentage float64
}

// ReportQuery scopes an aggregation to an inclusive calendar-day range.
type ReportQuery struct {
	Start Date
	End   Date
}

func (q ReportQuery) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return ErrInvalidRange
	}
	if q.Start.After(q.End.Time) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether d falls inside the query range.
func (q ReportQuery) Contains(d Date) bool {
	return !d.Before(q.Start.Time) && !d.After(q.End.Time)
}

// LastDays builds the query covering the n most recent days, today included.
func LastDays(clock Clock, n int) ReportQuery {
	end := DateOf(clock.Now())
	return ReportQuery{Start: end.AddDays(-(n - 1)), End: end}
}

// CurrentMonth builds the query from the first of the month through today.
func CurrentMonth(clock Clock) ReportQuery {
	end := DateOf(clock.Now())
	return ReportQuery{Start: NewDate(end.Year(), int(end.Month()), 1), End: end}
}
