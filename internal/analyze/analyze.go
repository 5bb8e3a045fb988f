// Package analyze derives qualitative signals, spending trend and threshold
// alerts, from aggregated report data.
package analyze

import (
	"sort"

	"outlay/internal/core"
)

// Trend classifies recent spending against the immediately preceding days.
type Trend string

const (
	TrendIncreasing Trend = "INCREASING"
	TrendDecreasing Trend = "DECREASING"
	TrendStable     Trend = "STABLE"
)

// AlertKind identifies the condition that raised an alert.
type AlertKind string

const (
	AlertHighDailySpending     AlertKind = "HIGH_DAILY_SPENDING"
	AlertHighCategorySpending  AlertKind = "HIGH_CATEGORY_SPENDING"
	AlertRapidSpendingIncrease AlertKind = "RAPID_SPENDING_INCREASE"
)

// Alert is a threshold-triggered notification. Date is set for daily alerts,
// Category for category alerts; the rapid-increase alert carries neither.
type Alert struct {
	Kind     AlertKind
	Date     core.Date
	Category core.Category
	Amount   core.Money
}

// Analyzer holds the tunable thresholds. The zero value is unusable; build
// one with NewAnalyzer or set the limits explicitly from configuration.
type Analyzer struct {
	// DailyLimit triggers a HighDailySpending alert for any day strictly
	// above it.
	DailyLimit core.Money
	// CategoryLimit triggers a HighCategorySpending alert for any category
	// strictly above it.
	CategoryLimit core.Money
	// TrendPriority is the fixed priority score of the rapid-increase
	// alert when ranking against amount-based alerts.
	TrendPriority core.Money
	// MaxAlerts caps how many alerts are returned, highest priority first.
	MaxAlerts int
}

// NewAnalyzer returns an analyzer with the default thresholds: daily limit
// 1000.00, category limit 5000.00, top 2 alerts.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		DailyLimit:    core.Money{Cents: 100_000},
		CategoryLimit: core.Money{Cents: 500_000},
		TrendPriority: core.Money{Cents: 100_000},
		MaxAlerts:     2,
	}
}

// Trend compares the three most recent daily totals against the three before
// them. dailyTotals must be sorted descending by date, the order the
// aggregation engine produces. Fewer than two entries, or a zero preceding
// window, is STABLE. A change beyond +-10% is INCREASING or DECREASING.
func (a *Analyzer) Trend(dailyTotals []core.DailyTotal) Trend {
	if len(dailyTotals) < 2 {
		return TrendStable
	}

	recent := sumWindow(dailyTotals, 0, 3)
	previous := sumWindow(dailyTotals, 3, 3)
	if previous == 0 {
		return TrendStable
	}

	pctChange := float64(recent-previous) / float64(previous) * 100
	switch {
	case pctChange > 10:
		return TrendIncreasing
	case pctChange < -10:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Alerts evaluates every threshold over the aggregates and returns up to
// MaxAlerts alerts ordered by descending priority.
func (a *Analyzer) Alerts(dailyTotals []core.DailyTotal, categoryTotals []core.CategoryTotal) []Alert {
	var alerts []Alert

	for _, daily := range dailyTotals {
		if daily.Amount.Cents > a.DailyLimit.Cents {
			alerts = append(alerts, Alert{
				Kind:   AlertHighDailySpending,
				Date:   daily.Date,
				Amount: daily.Amount,
			})
		}
	}

	for _, cat := range categoryTotals {
		if cat.Amount.Cents > a.CategoryLimit.Cents {
			alerts = append(alerts, Alert{
				Kind:     AlertHighCategorySpending,
				Category: cat.Category,
				Amount:   cat.Amount,
			})
		}
	}

	if a.Trend(dailyTotals) == TrendIncreasing {
		alerts = append(alerts, Alert{Kind: AlertRapidSpendingIncrease})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return a.priority(alerts[i]) > a.priority(alerts[j])
	})

	if a.MaxAlerts > 0 && len(alerts) > a.MaxAlerts {
		alerts = alerts[:a.MaxAlerts]
	}
	return alerts
}

func (a *Analyzer) priority(al Alert) int64 {
	if al.Kind == AlertRapidSpendingIncrease {
		return a.TrendPriority.Cents
	}
	return al.Amount.Cents
}

func sumWindow(totals []core.DailyTotal, offset, n int) int64 {
	var sum int64
	for i := offset; i < offset+n && i < len(totals); i++ {
		sum += totals[i].Amount.Cents
	}
	return sum
}
