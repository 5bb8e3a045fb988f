package analyze

import (
	"testing"

	"outlay/internal/core"
)

// daily builds a descending-by-date series starting at 2024-01-31 moving
// backwards, with the given amounts in cents.
func daily(cents ...int64) []core.DailyTotal {
	out := make([]core.DailyTotal, len(cents))
	for i, c := range cents {
		out[i] = core.DailyTotal{
			Date:   core.NewDate(2024, 1, 31).AddDays(-i),
			Amount: core.Money{Cents: c},
			Count:  1,
		}
	}
	return out
}

func TestTrend(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name   string
		totals []core.DailyTotal
		want   Trend
	}{
		{"empty", nil, TrendStable},
		{"single entry", daily(50_00), TrendStable},
		{"no previous window", daily(100_00, 100_00, 100_00), TrendStable},
		// recent 300.00, previous 200.00 -> +50%
		{"increasing", daily(100_00, 100_00, 100_00, 100_00, 100_00), TrendIncreasing},
		// recent 150.00, previous 300.00 -> -50%
		{"decreasing", daily(50_00, 50_00, 50_00, 100_00, 100_00, 100_00), TrendDecreasing},
		// recent 315.00, previous 300.00 -> +5%
		{"within band", daily(105_00, 105_00, 105_00, 100_00, 100_00, 100_00), TrendStable},
		// exactly +10% is not an increase (strict >)
		{"boundary ten percent", daily(110_00, 110_00, 110_00, 100_00, 100_00, 100_00), TrendStable},
		// partial windows still compare whatever is present
		{"short windows", daily(120_00, 120_00, 100_00, 100_00), TrendIncreasing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Trend(tt.totals); got != tt.want {
				t.Errorf("Trend() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAlertsDailyThresholdStrict(t *testing.T) {
	a := NewAnalyzer()

	over := []core.DailyTotal{{Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 100_100}, Count: 1}}
	alerts := a.Alerts(over, nil)
	if len(alerts) != 1 || alerts[0].Kind != AlertHighDailySpending {
		t.Fatalf("1001.00 day: got %+v, want one HighDailySpending alert", alerts)
	}
	if alerts[0].Date != core.NewDate(2024, 1, 10) || alerts[0].Amount.Cents != 100_100 {
		t.Errorf("alert payload = %+v", alerts[0])
	}

	exact := []core.DailyTotal{{Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 100_000}, Count: 1}}
	if alerts := a.Alerts(exact, nil); len(alerts) != 0 {
		t.Errorf("1000.00 exactly must not alert, got %+v", alerts)
	}
}

func TestAlertsCategoryThreshold(t *testing.T) {
	a := NewAnalyzer()

	cats := []core.CategoryTotal{
		{Category: core.Travel, Amount: core.Money{Cents: 600_000}, Count: 4},
		{Category: core.Groceries, Amount: core.Money{Cents: 500_000}, Count: 9},
	}
	alerts := a.Alerts(nil, cats)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1 (5000.00 exactly must not alert)", len(alerts))
	}
	if alerts[0].Kind != AlertHighCategorySpending || alerts[0].Category != core.Travel {
		t.Errorf("alert = %+v, want HighCategorySpending for Travel", alerts[0])
	}
}

func TestAlertsTopTwoByPriority(t *testing.T) {
	a := NewAnalyzer()

	dailies := []core.DailyTotal{
		{Date: core.NewDate(2024, 1, 12), Amount: core.Money{Cents: 150_000}, Count: 2},
		{Date: core.NewDate(2024, 1, 11), Amount: core.Money{Cents: 120_000}, Count: 1},
		{Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 110_000}, Count: 1},
	}
	cats := []core.CategoryTotal{
		{Category: core.Shopping, Amount: core.Money{Cents: 700_000}, Count: 5},
	}

	alerts := a.Alerts(dailies, cats)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want top 2", len(alerts))
	}
	if alerts[0].Kind != AlertHighCategorySpending || alerts[0].Amount.Cents != 700_000 {
		t.Errorf("highest priority alert = %+v, want the 7000.00 category", alerts[0])
	}
	if alerts[1].Kind != AlertHighDailySpending || alerts[1].Amount.Cents != 150_000 {
		t.Errorf("second alert = %+v, want the 1500.00 day", alerts[1])
	}
}

func TestAlertsIncludeRapidIncrease(t *testing.T) {
	a := NewAnalyzer()

	// Strong increase, daily amounts below the daily limit.
	dailies := daily(90_000, 90_000, 90_000, 10_000, 10_000, 10_000)
	alerts := a.Alerts(dailies, nil)
	if len(alerts) != 1 || alerts[0].Kind != AlertRapidSpendingIncrease {
		t.Fatalf("got %+v, want a single RapidSpendingIncrease alert", alerts)
	}
}

func TestAlertsCustomThresholds(t *testing.T) {
	a := &Analyzer{
		DailyLimit:    core.Money{Cents: 10_000},
		CategoryLimit: core.Money{Cents: 20_000},
		TrendPriority: core.Money{Cents: 10_000},
		MaxAlerts:     5,
	}

	dailies := []core.DailyTotal{{Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 15_000}, Count: 1}}
	cats := []core.CategoryTotal{{Category: core.Rent, Amount: core.Money{Cents: 25_000}, Count: 1}}

	alerts := a.Alerts(dailies, cats)
	if len(alerts) != 2 {
		t.Fatalf("custom thresholds: got %d alerts, want 2", len(alerts))
	}
}
