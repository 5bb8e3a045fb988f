package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"outlay/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// createdAtLayout pads fractional seconds to a fixed width. RFC3339Nano
// trims trailing zeros, which breaks lexical ORDER BY within the same
// second ('Z' sorts after '.'); a constant-width string keeps the column's
// lexical order chronological. Timestamps are normalized to UTC before
// formatting so the zone suffix is always "Z".
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteLedger stores expenses in a local SQLite database. Writes are
// serialized by SQLite itself; the expense_date column carries the calendar
// day so range scans compare dates, not string prefixes.
type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// migrateSchema applies the embedded migrations over a dedicated connection
// so the migration lock never interferes with the ledger's own pool.
func migrateSchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("wrap migration connection: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

func (l *SQLiteLedger) Insert(ctx context.Context, e core.Expense) (int64, error) {
	created := e.CreatedAt.UTC()
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO expenses (title, amount_cents, category, notes, receipt_path, created_at, expense_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Amount.Cents, string(e.Category), e.Notes, e.ReceiptPath,
		created.Format(createdAtLayout), core.DateOf(created).String())
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", errors.Join(core.ErrStorage, err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert expense id: %w", errors.Join(core.ErrStorage, err))
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"title", e.Title,
		"amount_cents", e.Amount.Cents,
		"category", string(e.Category),
		"date", core.DateOf(created).String())

	return id, nil
}

func (l *SQLiteLedger) Get(ctx context.Context, id int64) (core.Expense, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, title, amount_cents, category, notes, receipt_path, created_at
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, errors.Join(core.ErrStorage, err))
	}
	return e, nil
}

// Update replaces the mutable fields only. created_at and expense_date stay
// untouched so the record never moves between report days.
func (l *SQLiteLedger) Update(ctx context.Context, e core.Expense) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE expenses SET title = ?, amount_cents = ?, category = ?, notes = ?, receipt_path = ?
		WHERE id = ?`,
		e.Title, e.Amount.Cents, string(e.Category), e.Notes, e.ReceiptPath, e.ID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, errors.Join(core.ErrStorage, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, errors.Join(core.ErrStorage, err))
	}
	if n == 0 {
		return fmt.Errorf("update expense %d: %w", e.ID, core.ErrNotFound)
	}
	return nil
}

// Delete is idempotent: removing an unknown id succeeds.
func (l *SQLiteLedger) Delete(ctx context.Context, id int64) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, errors.Join(core.ErrStorage, err))
	}
	return nil
}

func (l *SQLiteLedger) QueryByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, category, notes, receipt_path, created_at
		FROM expenses
		WHERE expense_date >= ? AND expense_date <= ?
		ORDER BY created_at DESC, id DESC`,
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("query expenses %s..%s: %w", start, end, errors.Join(core.ErrStorage, err))
	}
	return collectExpenses(rows)
}

func (l *SQLiteLedger) QueryByDate(ctx context.Context, date core.Date) ([]core.Expense, error) {
	return l.QueryByDateRange(ctx, date, date)
}

func (l *SQLiteLedger) QueryByCategory(ctx context.Context, category core.Category) ([]core.Expense, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, category, notes, receipt_path, created_at
		FROM expenses
		WHERE category = ?
		ORDER BY created_at DESC, id DESC`,
		string(category))
	if err != nil {
		return nil, fmt.Errorf("query expenses by category %s: %w", category, errors.Join(core.ErrStorage, err))
	}
	return collectExpenses(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		category  string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Amount.Cents, &category, &e.Notes, &e.ReceiptPath, &createdAt); err != nil {
		return core.Expense{}, err
	}
	e.Category = core.Category(category)
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	e.CreatedAt = ts
	return e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", errors.Join(core.ErrStorage, err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", errors.Join(core.ErrStorage, err))
	}
	return out, nil
}
