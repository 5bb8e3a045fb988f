package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes: validation problems
// are 400, missing records 404, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrInvalidCategory):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// amountString renders cents as a two-decimal amount, e.g. 1550 -> "15.50".
func amountString(m core.Money) string {
	return decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// rangeQuery builds the report range from request parameters. Accepted
// forms: start+end (YYYY-MM-DD), days=N, month=current. Default is the
// last 7 days.
func (s *Server) rangeQuery(r *http.Request) (core.ReportQuery, error) {
	params := r.URL.Query()

	startRaw := strings.TrimSpace(params.Get("start"))
	endRaw := strings.TrimSpace(params.Get("end"))
	if startRaw != "" || endRaw != "" {
		start, err := core.ParseDate(startRaw)
		if err != nil {
			return core.ReportQuery{}, core.ErrInvalidRange
		}
		end, err := core.ParseDate(endRaw)
		if err != nil {
			return core.ReportQuery{}, core.ErrInvalidRange
		}
		q := core.ReportQuery{Start: start, End: end}
		return q, q.Validate()
	}

	if params.Get("month") == "current" {
		return core.CurrentMonth(s.clock), nil
	}

	days := 7
	if raw := strings.TrimSpace(params.Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return core.ReportQuery{}, core.ErrInvalidRange
		}
		days = n
	}
	return core.LastDays(s.clock, days), nil
}
