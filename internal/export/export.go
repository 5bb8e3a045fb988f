// Package export renders aggregated report data into shareable documents:
// plain text, CSV, HTML, and XLSX.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
	"outlay/internal/report"
)

const (
	longDateFormat = "02 Jan 2006"
	csvDateFormat  = "02/01/2006"
)

// ReportState is everything a formatter needs: the query that scoped the
// aggregation, the snapshot it produced, and the generation date.
type ReportState struct {
	Query       core.ReportQuery
	Snapshot    report.Snapshot
	GeneratedAt core.Date
}

// Formatter renders report documents. CurrencySymbol prefixes every amount
// in the human-readable formats; CSV amounts stay bare for machine parsing.
type Formatter struct {
	CurrencySymbol string
}

func NewFormatter(currencySymbol string) *Formatter {
	return &Formatter{CurrencySymbol: currencySymbol}
}

// amount renders cents as a fixed two-decimal string, e.g. 12345 -> "123.45".
func amount(m core.Money) string {
	return decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func (f *Formatter) money(m core.Money) string {
	return f.CurrencySymbol + amount(m)
}

// PlainText renders the report with a fixed section order: header, summary,
// daily breakdown, category breakdown.
func (f *Formatter) PlainText(state ReportState) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "EXPENSE REPORT\n")
	fmt.Fprintf(&b, "Period: %s - %s\n",
		state.Query.Start.Format(longDateFormat), state.Query.End.Format(longDateFormat))
	fmt.Fprintf(&b, "Generated on: %s\n", state.GeneratedAt.Format(longDateFormat))
	fmt.Fprintln(&b, strings.Repeat("=", 50))
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "SUMMARY\n")
	fmt.Fprintf(&b, "Total Amount: %s\n", f.money(state.Snapshot.TotalAmount))
	fmt.Fprintf(&b, "Total Expenses: %d\n", state.Snapshot.TotalCount)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "DAILY BREAKDOWN\n")
	for _, daily := range state.Snapshot.DailyTotals {
		fmt.Fprintf(&b, "%s: %s (%d expenses)\n",
			daily.Date.Format(longDateFormat), f.money(daily.Amount), daily.Count)
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "CATEGORY BREAKDOWN\n")
	for _, cat := range state.Snapshot.CategoryTotals {
		fmt.Fprintf(&b, "%s: %s (%d expenses)\n",
			cat.Category.DisplayName(), f.money(cat.Amount), cat.Count)
	}

	return []byte(b.String())
}

// CSV renders one row per day. Compatibility quirk, kept deliberately: the
// category field on every row is the flattened range-wide category
// breakdown, not a per-day one. Downstream consumers of the original format
// depend on this shape; flag any change to stakeholders first.
func (f *Formatter) CSV(state ReportState) []byte {
	var b strings.Builder

	b.WriteString("Date,Amount,Count,Category,CategoryAmount,CategoryCount\n")

	categoryInfo := make([]string, len(state.Snapshot.CategoryTotals))
	for i, cat := range state.Snapshot.CategoryTotals {
		categoryInfo[i] = fmt.Sprintf("%s:%s:%d", cat.Category, amount(cat.Amount), cat.Count)
	}
	flattened := strings.Join(categoryInfo, ";")

	for _, daily := range state.Snapshot.DailyTotals {
		fmt.Fprintf(&b, "%s,%s,%d,%s\n",
			daily.Date.Format(csvDateFormat), amount(daily.Amount), daily.Count, flattened)
	}

	return []byte(b.String())
}
