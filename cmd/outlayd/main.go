package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"outlay/internal/amqp"
	"outlay/internal/analyze"
	"outlay/internal/config"
	"outlay/internal/core"
	"outlay/internal/export"
	apphttp "outlay/internal/http"
	"outlay/internal/live"
	applog "outlay/internal/log"
	"outlay/internal/receipts"
	"outlay/internal/report"
	"outlay/internal/services"
	"outlay/internal/storage"
)

func main() {
	// Load .env for local development; absent files are fine.
	_ = godotenv.Load()

	logger := applog.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
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
	logger.Info("Ledger initialized", "backend", cfg.DataBackend)

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("AMQP change events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP change events disabled - no AMQP_URL provided")
	}

	store, err := receipts.NewStore(cfg.ReceiptDir)
	if err != nil {
		logger.Error("Failed to initialize receipt store", "error", err, "dir", cfg.ReceiptDir)
		os.Exit(1)
	}

	broker := live.NewBroker()
	engine := report.NewEngine(ledger)
	manager := live.NewManager(engine, broker, cfg.PollInterval, applog.Component("live"))
	service := services.NewExpenseService(ledger, broker, events, core.SystemClock{})

	analyzer := analyze.NewAnalyzer()
	if cents, err := cfg.DailyAlertCents(); err == nil {
		analyzer.DailyLimit = core.Money{Cents: cents}
	}
	if cents, err := cfg.CategoryAlertCents(); err == nil {
		analyzer.CategoryLimit = core.Money{Cents: cents}
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		Service:   service,
		Engine:    engine,
		Manager:   manager,
		Analyzer:  analyzer,
		Formatter: export.NewFormatter(cfg.CurrencySymbol),
		Receipts:  store,
		Clock:     core.SystemClock{},
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // the SSE stream writes indefinitely
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting outlay server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
