package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// SQLite keeps the history log in a SQLite database.
type SQLite struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewSQLite opens (creating if needed) the database at dbPath. Call Migrate
// before use.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't benefit from multiple connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLite{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SchemaVersion is the schema version Migrate brings the database to.
const SchemaVersion = 2

type migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Bill history log",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS bill_history (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT UNIQUE NOT NULL,
				period TEXT NOT NULL,
				year INTEGER NOT NULL,
				month INTEGER NOT NULL,
				actual_kwh REAL NOT NULL,
				actual_cost REAL,
				predicted_kwh REAL NOT NULL,
				predicted_cost REAL NOT NULL,
				gap_kwh REAL NOT NULL,
				gap_percent REAL,
				gap_cost REAL,
				recorded_at TEXT NOT NULL,
				written_at TEXT NOT NULL
			)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "Index history by period",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_bill_history_period ON bill_history(period, seq)`)
			return err
		},
	},
}

// Migrate applies pending migrations, each in its own transaction.
func (s *SQLite) Migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration",
			"version", m.Version,
			"description", m.Description)
	}

	var final int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if final != SchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", SchemaVersion, final)
	}
	return nil
}

const entryColumns = `id, period, year, month, actual_kwh, actual_cost, predicted_kwh,
	predicted_cost, gap_kwh, gap_percent, gap_cost, recorded_at, written_at`

// RecordMonth appends rec to the log; it becomes the period's active record.
func (s *SQLite) RecordMonth(ctx context.Context, year int, month time.Month, rec model.BillRecord) error {
	rec.Year, rec.Month = year, month
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_history (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		rec.Key(),
		rec.Year,
		int(rec.Month),
		rec.ActualKWh,
		nullFloat(rec.ActualCost),
		rec.PredictedKWh,
		rec.PredictedCost,
		rec.GapKWh,
		nullFloat(rec.GapPercent),
		nullFloat(rec.GapCost),
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill record: %w", err)
	}
	return nil
}

// LoadHistory returns the newest record of every period, oldest period first.
func (s *SQLite) LoadHistory(ctx context.Context) ([]model.BillRecord, error) {
	entries, err := s.query(ctx, `SELECT `+entryColumns+` FROM bill_history h
		WHERE seq = (SELECT MAX(seq) FROM bill_history WHERE period = h.period)
		ORDER BY period`)
	if err != nil {
		return nil, err
	}
	out := make([]model.BillRecord, len(entries))
	for i, e := range entries {
		out[i] = e.Record
	}
	return out, nil
}

// Find returns the newest record for a period.
func (s *SQLite) Find(ctx context.Context, year int, month time.Month) (model.BillRecord, bool, error) {
	entries, err := s.query(ctx, `SELECT `+entryColumns+` FROM bill_history
		WHERE period = ? ORDER BY seq DESC LIMIT 1`, model.PeriodKey(year, month))
	if err != nil {
		return model.BillRecord{}, false, err
	}
	if len(entries) == 0 {
		return model.BillRecord{}, false, nil
	}
	return entries[0].Record, true, nil
}

// Entries returns the whole log in write order.
func (s *SQLite) Entries(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, `SELECT `+entryColumns+` FROM bill_history ORDER BY seq`)
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", "error", err)
		}
	}()

	var entries []Entry
	for rows.Next() {
		var (
			e                           Entry
			month                       int
			actualCost, gapPct, gapCost sql.NullFloat64
			recordedAt, writtenAt       string
		)
		r := &e.Record
		if err := rows.Scan(&e.ID, &e.Period, &r.Year, &month, &r.ActualKWh, &actualCost,
			&r.PredictedKWh, &r.PredictedCost, &r.GapKWh, &gapPct, &gapCost,
			&recordedAt, &writtenAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill record: %w", err)
		}
		r.Month = time.Month(month)
		r.ActualCost = floatPtr(actualCost)
		r.GapPercent = floatPtr(gapPct)
		r.GapCost = floatPtr(gapCost)
		if r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("bad recorded_at %q: %w", recordedAt, err)
		}
		if e.WrittenAt, err = time.Parse(time.RFC3339Nano, writtenAt); err != nil {
			return nil, fmt.Errorf("bad written_at %q: %w", writtenAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill history: %w", err)
	}
	return entries, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
