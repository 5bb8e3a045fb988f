package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"outlay/internal/amqp"
	"outlay/internal/config"
	"outlay/internal/core"
	applog "outlay/internal/log"
	"outlay/internal/report"
	"outlay/internal/share"
	"outlay/internal/storage"
	"outlay/internal/worker"
)

func main() {
	// Load .env for local development; absent files are fine.
	_ = godotenv.Load()

	logger := applog.Setup()
	logger.Info("Starting outlay-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	var (
		ledger storage.Ledger
		err    error
	)
	switch cfg.DataBackend {
	case "sqlite":
		ledger, err = storage.NewSQLiteLedger(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite ledger", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
	default:
		ledger = storage.NewMemoryLedger()
	}
	defer ledger.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()
	logger.Info("Consuming ledger change events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The Sheets sink is optional; without it the worker logs recomputed
	// totals instead of pushing them anywhere.
	var sink worker.Sink
	if os.Getenv("GOOGLE_SPREADSHEET_ID") != "" {
		sheets, err := share.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets sink", "error", err)
			os.Exit(1)
		}
		sink = sheets
		logger.Info("Google Sheets sink enabled")
	} else {
		logger.Info("Google Sheets sink disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.NewReportWorker(report.NewEngine(ledger), sink, core.SystemClock{}, applog.Component("worker"))

	if err := w.Run(ctx, client); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shut down")
}
