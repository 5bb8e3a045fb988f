package export

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Expense Report</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { border-bottom: 2px solid #222; padding-bottom: 0.5rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f0f0f0; }
td.amount { text-align: right; }
.meta { color: #666; }
</style>
</head>
<body>
<h1>Expense Report</h1>
<p class="meta">Period: {{.Period}}<br>Generated on: {{.GeneratedAt}}</p>
<h2>Summary</h2>
<p>Total Amount: <strong>{{.TotalAmount}}</strong><br>Total Expenses: {{.TotalCount}}</p>
<h2>Daily Breakdown</h2>
<table>
<tr><th>Date</th><th>Amount</th><th>Expenses</th></tr>
{{range .Daily}}<tr><td>{{.Date}}</td><td class="amount">{{.Amount}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
<h2>Category Breakdown</h2>
<table>
<tr><th>Category</th><th>Amount</th><th>Expenses</th><th>Share</th></tr>
{{range .Categories}}<tr><td>{{.Name}}</td><td class="amount">{{.Amount}}</td><td>{{.Count}}</td><td>{{.Percentage}}%</td></tr>
{{end}}</table>
</body>
</html>
`))

type htmlRow struct {
	Date   string
	Amount string
	Count  int
}

type htmlCategory struct {
	Name       string
	Amount     string
	Count      int
	Percentage string
}

type htmlData struct {
	Period      string
	GeneratedAt string
	TotalAmount string
	TotalCount  int
	Daily       []htmlRow
	Categories  []htmlCategory
}

// HTML renders the report as a standalone styled page.
func (f *Formatter) HTML(state ReportState) ([]byte, error) {
	data := htmlData{
		Period: state.Query.Start.Format(longDateFormat) + " - " +
			state.Query.End.Format(longDateFormat),
		GeneratedAt: state.GeneratedAt.Format(longDateFormat),
		TotalAmount: f.money(state.Snapshot.TotalAmount),
		TotalCount:  state.Snapshot.TotalCount,
	}
	for _, daily := range state.Snapshot.DailyTotals {
		data.Daily = append(data.Daily, htmlRow{
			Date:   daily.Date.Format(longDateFormat),
			Amount: f.money(daily.Amount),
			Count:  daily.Count,
		})
	}
	for _, cat := range state.Snapshot.CategoryTotals {
		data.Categories = append(data.Categories, htmlCategory{
			Name:       cat.Category.DisplayName(),
			Amount:     f.money(cat.Amount),
			Count:      cat.Count,
			Percentage: formatPercentage(cat.Percentage),
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatPercentage(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2)
}
