package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"outlay/internal/analyze"
	"outlay/internal/core"
	"outlay/internal/export"
	"outlay/internal/report"
)

type dailyTotalJSON struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Count  int    `json:"count"`
}

type categoryTotalJSON struct {
	Category    string  `json:"category"`
	DisplayName string  `json:"display_name"`
	Amount      string  `json:"amount"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
}

type snapshotJSON struct {
	Start          string              `json:"start"`
	End            string              `json:"end"`
	DailyTotals    []dailyTotalJSON    `json:"daily_totals"`
	CategoryTotals []categoryTotalJSON `json:"category_totals"`
	TotalAmount    string              `json:"total_amount"`
	TotalCount     int                 `json:"total_count"`
}

func toSnapshotJSON(q core.ReportQuery, snap report.Snapshot) snapshotJSON {
	out := snapshotJSON{
		Start:          q.Start.String(),
		End:            q.End.String(),
		DailyTotals:    make([]dailyTotalJSON, 0, len(snap.DailyTotals)),
		CategoryTotals: make([]categoryTotalJSON, 0, len(snap.CategoryTotals)),
		TotalAmount:    amountString(snap.TotalAmount),
		TotalCount:     snap.TotalCount,
	}
	for _, d := range snap.DailyTotals {
		out.DailyTotals = append(out.DailyTotals, dailyTotalJSON{
			Date:   d.Date.String(),
			Amount: amountString(d.Amount),
			Count:  d.Count,
		})
	}
	for _, c := range snap.CategoryTotals {
		out.CategoryTotals = append(out.CategoryTotals, categoryTotalJSON{
			Category:    string(c.Category),
			DisplayName: c.Category.DisplayName(),
			Amount:      amountString(c.Amount),
			Count:       c.Count,
			Percentage:  c.Percentage,
		})
	}
	return out
}

// snapshot returns the aggregation for q, consulting the cache first.
func (s *Server) snapshot(r *http.Request, q core.ReportQuery) (report.Snapshot, error) {
	key := q.Start.String() + "/" + q.End.String()
	if snap, ok := s.snapshotCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Snapshot cache hit", "start", q.Start.String(), "end", q.End.String())
		return snap, nil
	}

	snap, err := s.engine.Snapshot(r.Context(), q)
	if err != nil {
		return report.Snapshot{}, err
	}
	s.snapshotCache.Set(key, snap)
	return snap, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q, err := s.rangeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.snapshot(r, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotJSON(q, snap))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q, err := s.rangeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.snapshot(r, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"trend": string(s.analyzer.Trend(snap.DailyTotals)),
	})
}

type alertJSON struct {
	Kind     string `json:"kind"`
	Date     string `json:"date,omitempty"`
	Category string `json:"category,omitempty"`
	Amount   string `json:"amount,omitempty"`
}

func toAlertJSON(a analyze.Alert) alertJSON {
	out := alertJSON{Kind: string(a.Kind)}
	if !a.Date.IsZero() {
		out.Date = a.Date.String()
	}
	if a.Category != "" {
		out.Category = string(a.Category)
	}
	if a.Amount.Cents != 0 {
		out.Amount = amountString(a.Amount)
	}
	return out
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	q, err := s.rangeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.snapshot(r, q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	alerts := s.analyzer.Alerts(snap.DailyTotals, snap.CategoryTotals)
	out := make([]alertJSON, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExport renders the report in the requested format: text (default),
// csv, html, or xlsx.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q, err := s.rangeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.snapshot(r, q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	state := export.ReportState{
		Query:       q,
		Snapshot:    snap,
		GeneratedAt: core.DateOf(s.clock.Now()),
	}

	format := r.URL.Query().Get("format")
	var (
		body        []byte
		contentType string
		filename    string
	)
	switch format {
	case "", "text":
		body = s.formatter.PlainText(state)
		contentType = "text/plain; charset=utf-8"
		filename = "expense-report.txt"
	case "csv":
		body = s.formatter.CSV(state)
		contentType = "text/csv; charset=utf-8"
		filename = "expense-report.csv"
	case "html":
		body, err = s.formatter.HTML(state)
		contentType = "text/html; charset=utf-8"
		filename = "expense-report.html"
	case "xlsx":
		body, err = s.formatter.XLSX(state)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "expense-report.xlsx"
	default:
		badRequest(w, "unknown format: want text, csv, html, or xlsx")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

// handleStream delivers live snapshots over server-sent events. One event is
// sent immediately, then one after every ledger change inside the range,
// until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	q, err := s.rangeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	sub, err := s.manager.Subscribe(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, open := <-sub.C:
			if !open {
				return
			}
			payload, err := json.Marshal(toSnapshotJSON(q, snap))
			if err != nil {
				slog.ErrorContext(r.Context(), "Failed to marshal snapshot event", "error", err)
				continue
			}
			if _, err := w.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
