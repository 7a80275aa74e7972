package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/prabhat-krai/ema-tracker/internal/rules"
)

// Store persists scan runs and their per-symbol signals to SQLite. The action
// generator diffs the two most recent runs for a market out of this store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// RunRecord describes one recorded scan run.
type RunRecord struct {
	ID      string
	Market  string
	Created time.Time
}

// SignalRow is one persisted per-symbol result.
type SignalRow struct {
	Symbol string
	Signal rules.Signal
	Price  float64
	Reason string
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id      TEXT PRIMARY KEY,
			market  TEXT NOT NULL,
			created INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_market_created ON runs(market, created)`,

		`CREATE TABLE IF NOT EXISTS signals (
			run_id TEXT NOT NULL REFERENCES runs(id),
			symbol TEXT NOT NULL,
			signal TEXT NOT NULL,
			price  REAL NOT NULL,
			reason TEXT,
			PRIMARY KEY (run_id, symbol)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// RecordRun stores a completed scan run and returns its id.
func (s *Store) RecordRun(market string, at time.Time, results []rules.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs (id, market, created) VALUES (?, ?, ?)`,
		runID, market, at.Unix()); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	insert, err := tx.Prepare(`INSERT INTO signals (run_id, symbol, signal, price, reason) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for _, r := range results {
		if _, err := insert.Exec(runID, r.Symbol, string(r.Signal), r.CurrentPrice, r.Reason); err != nil {
			return "", fmt.Errorf("insert signal %s: %w", r.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// LatestRuns returns up to n most recent runs for a market, newest first.
func (s *Store) LatestRuns(market string, n int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, market, created FROM runs WHERE market = ? ORDER BY created DESC LIMIT ?`,
		market, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.Market, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Created = time.Unix(created, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RunSignals returns the symbol → signal mapping recorded for a run.
func (s *Store) RunSignals(runID string) (map[string]SignalRow, error) {
	rows, err := s.db.Query(
		`SELECT symbol, signal, price, reason FROM signals WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]SignalRow)
	for rows.Next() {
		var row SignalRow
		var sig string
		var reason sql.NullString
		if err := rows.Scan(&row.Symbol, &sig, &row.Price, &reason); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		row.Signal = rules.Signal(sig)
		row.Reason = reason.String
		out[row.Symbol] = row
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
