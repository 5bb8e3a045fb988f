package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"outlay/internal/core"
)

type expenseRequest struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
	ReceiptPath string `json:"receipt_path"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Notes       string `json:"notes,omitempty"`
	ReceiptPath string `json:"receipt_path,omitempty"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Amount:      amountString(e.Amount),
		Category:    string(e.Category),
		Notes:       e.Notes,
		ReceiptPath: e.ReceiptPath,
		Date:        e.Date().String(),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// decodeExpense turns a request body into a domain expense. Field-level
// validation stays in the service layer; only shape problems are rejected
// here.
func decodeExpense(r *http.Request) (core.Expense, error) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return core.Expense{}, errors.New("malformed JSON body")
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Expense{}, core.ErrInvalidAmount
	}

	e := core.Expense{
		Title:       sanitizeInput(req.Title),
		Amount:      core.Money{Cents: cents},
		Category:    core.Category(strings.ToUpper(strings.TrimSpace(req.Category))),
		Notes:       sanitizeInput(req.Notes),
		ReceiptPath: strings.TrimSpace(req.ReceiptPath),
	}

	if req.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			return core.Expense{}, errors.New("invalid created_at: want RFC 3339")
		}
		e.CreatedAt = t
	}

	return e, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := decodeExpense(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.service.InsertExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.snapshotCache.Clear()
	writeJSON(w, http.StatusCreated, toExpenseResponse(saved))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid expense id")
		return
	}

	e, err := decodeExpense(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e.ID = id

	updated, err := s.service.UpdateExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.snapshotCache.Clear()
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid expense id")
		return
	}

	if err := s.service.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.snapshotCache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid expense id")
		return
	}

	e, err := s.service.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

// handleListExpenses lists by date (?date=YYYY-MM-DD) or by category
// (?category=NAME). Exactly one selector is required.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	dateRaw := strings.TrimSpace(params.Get("date"))
	categoryRaw := strings.TrimSpace(params.Get("category"))

	var (
		items []core.Expense
		err   error
	)
	switch {
	case dateRaw != "" && categoryRaw != "":
		badRequest(w, "use either date or category, not both")
		return
	case dateRaw != "":
		date, perr := core.ParseDate(dateRaw)
		if perr != nil {
			badRequest(w, "invalid date: want YYYY-MM-DD")
			return
		}
		items, err = s.service.ExpensesByDate(r.Context(), date)
	case categoryRaw != "":
		items, err = s.service.ExpensesByCategory(r.Context(), core.Category(strings.ToUpper(categoryRaw)))
	default:
		badRequest(w, "missing date or category parameter")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]expenseResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	if s.receipts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "receipt storage not configured"})
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		badRequest(w, "missing receipt file")
		return
	}
	defer file.Close()

	name, err := s.receipts.Save(header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"receipt_path": name})
}

func (s *Server) handleDownloadReceipt(w http.ResponseWriter, r *http.Request) {
	if s.receipts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "receipt storage not configured"})
		return
	}

	f, err := s.receipts.Open(r.PathValue("name"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "receipt not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
