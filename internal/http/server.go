// Package http exposes the ledger and the reporting engine over a JSON API,
// including a server-sent-events stream of live report snapshots.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"outlay/internal/analyze"
	"outlay/internal/cache"
	"outlay/internal/core"
	"outlay/internal/export"
	"outlay/internal/live"
	"outlay/internal/receipts"
	"outlay/internal/report"
	"outlay/internal/services"
)

type Server struct {
	http.Server

	service   *services.ExpenseService
	engine    *report.Engine
	manager   *live.Manager
	analyzer  *analyze.Analyzer
	formatter *export.Formatter
	receipts  *receipts.Store
	clock     core.Clock

	rateLimiter *rateLimiter

	// snapshotCache keeps recently requested report snapshots; any ledger
	// mutation clears it wholesale.
	snapshotCache *cache.LRU[report.Snapshot]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// Options carries the dependencies NewServer wires into the route table.
// Receipts may be nil; the upload endpoint then responds 503.
type Options struct {
	Addr      string
	Service   *services.ExpenseService
	Engine    *report.Engine
	Manager   *live.Manager
	Analyzer  *analyze.Analyzer
	Formatter *export.Formatter
	Receipts  *receipts.Store
	Clock     core.Clock
}

func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	clock := opts.Clock
	if clock == nil {
		clock = core.SystemClock{}
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		service:       opts.Service,
		engine:        opts.Engine,
		manager:       opts.Manager,
		analyzer:      opts.Analyzer,
		formatter:     opts.Formatter,
		receipts:      opts.Receipts,
		clock:         clock,
		rateLimiter:   newRateLimiter(),
		snapshotCache: cache.NewLRU[report.Snapshot](100, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.snapshotCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("POST /expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.withSecurityHeaders(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/{id}", s.withSecurityHeaders(s.handleGetExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.withSecurityHeaders(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.withSecurityHeaders(s.handleDeleteExpense))

	mux.HandleFunc("GET /report", s.withSecurityHeaders(s.handleReport))
	mux.HandleFunc("GET /report/trend", s.withSecurityHeaders(s.handleTrend))
	mux.HandleFunc("GET /report/alerts", s.withSecurityHeaders(s.handleAlerts))
	mux.HandleFunc("GET /report/export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("GET /report/stream", s.withSecurityHeaders(s.handleStream))

	mux.HandleFunc("POST /receipts", s.withSecurityHeaders(s.handleUploadReceipt))
	mux.HandleFunc("GET /receipts/{name}", s.withSecurityHeaders(s.handleDownloadReceipt))

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// Shutdown stops the background cleanup goroutines and then drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting on mutations,
// request IDs, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter captures the status code for request logging. Flush is
// forwarded so the SSE stream keeps working through the wrapper.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
