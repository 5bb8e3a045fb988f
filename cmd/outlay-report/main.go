// outlay-report renders an expense report from the ledger into one or more
// files, and optionally pushes it to a Google Sheets spreadsheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"outlay/internal/config"
	"outlay/internal/core"
	"outlay/internal/export"
	applog "outlay/internal/log"
	"outlay/internal/report"
	"outlay/internal/share"
	"outlay/internal/storage"
)

func main() {
	_ = godotenv.Load()
	logger := applog.Setup()

	var (
		startFlag   = flag.String("start", "", "range start (YYYY-MM-DD)")
		endFlag     = flag.String("end", "", "range end (YYYY-MM-DD)")
		days        = flag.Int("days", 7, "report over the last N days (ignored when -start/-end are set)")
		formats     = flag.String("formats", "text", "comma-separated output formats: text, csv, html, xlsx")
		outDir      = flag.String("out", ".", "output directory")
		pushToSheet = flag.Bool("sheets", false, "also push the report to Google Sheets")
	)
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	clock := core.SystemClock{}
	query, err := buildQuery(clock, *startFlag, *endFlag, *days)
	if err != nil {
		logger.Error("Invalid report range", "error", err)
		os.Exit(1)
	}

	ledger, err := storage.NewSQLiteLedger(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite ledger", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer ledger.Close()

	ctx := context.Background()
	snap, err := report.NewEngine(ledger).Snapshot(ctx, query)
	if err != nil {
		logger.Error("Failed to compute report", "error", err)
		os.Exit(1)
	}

	state := export.ReportState{
		Query:       query,
		Snapshot:    snap,
		GeneratedAt: core.DateOf(clock.Now()),
	}
	formatter := export.NewFormatter(cfg.CurrencySymbol)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("Failed to create output directory", "error", err, "dir", *outDir)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range strings.Split(*formats, ",") {
		format := strings.TrimSpace(format)
		if format == "" {
			continue
		}
		g.Go(func() error {
			return writeFormat(formatter, state, format, *outDir)
		})
	}
	if *pushToSheet {
		g.Go(func() error {
			sink, err := share.NewFromEnv(gctx)
			if err != nil {
				return fmt.Errorf("sheets sink: %w", err)
			}
			if err := sink.Push(gctx, state); err != nil {
				return err
			}
			logger.Info("Report pushed to Google Sheets")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Report generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Report generated",
		"start", query.Start.String(),
		"end", query.End.String(),
		"total", snap.TotalCount,
		"out", *outDir)
}

func buildQuery(clock core.Clock, start, end string, days int) (core.ReportQuery, error) {
	if start != "" || end != "" {
		s, err := core.ParseDate(start)
		if err != nil {
			return core.ReportQuery{}, fmt.Errorf("parse start: %w", err)
		}
		e, err := core.ParseDate(end)
		if err != nil {
			return core.ReportQuery{}, fmt.Errorf("parse end: %w", err)
		}
		q := core.ReportQuery{Start: s, End: e}
		return q, q.Validate()
	}
	if days < 1 {
		return core.ReportQuery{}, core.ErrInvalidRange
	}
	return core.LastDays(clock, days), nil
}

func writeFormat(f *export.Formatter, state export.ReportState, format, dir string) error {
	var (
		body []byte
		err  error
		ext  string
	)
	switch format {
	case "text":
		body, ext = f.PlainText(state), "txt"
	case "csv":
		body, ext = f.CSV(state), "csv"
	case "html":
		body, err = f.HTML(state)
		ext = "html"
	case "xlsx":
		body, err = f.XLSX(state)
		ext = "xlsx"
	default:
		return fmt.Errorf("unknown format %q: want text, csv, html, or xlsx", format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	name := fmt.Sprintf("expense-report-%s-%s.%s", state.Query.Start, state.Query.End, ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
