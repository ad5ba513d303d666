package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists cycle history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			gated       INTEGER NOT NULL DEFAULT 0,
			symbols     INTEGER,
			orders      INTEGER,
			errors      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at)`,

		`CREATE TABLE IF NOT EXISTS cycle_results (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id   INTEGER NOT NULL REFERENCES cycles(id),
			symbol     TEXT NOT NULL,
			action     TEXT,
			signal     TEXT,
			rsi        REAL,
			last_close REAL,
			qty        REAL,
			order_id   TEXT,
			error_kind TEXT,
			error_msg  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_cycle ON cycle_results(cycle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_symbol ON cycle_results(symbol)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id        INTEGER NOT NULL REFERENCES cycles(id),
			submitted_at    INTEGER,
			symbol          TEXT NOT NULL,
			side            TEXT,
			status          TEXT,
			order_id        TEXT,
			client_order_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCycle writes the cycle summary, one row per symbol, and one row
// per accepted order.
func (r *SQLiteRecorder) RecordCycle(cycle *model.CycleResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	gated := 0
	if cycle.Skipped {
		gated = 1
	}
	res, err := tx.Exec(
		`INSERT INTO cycles (started_at, finished_at, gated, symbols, orders, errors) VALUES (?, ?, ?, ?, ?, ?)`,
		cycle.StartedAt.Unix(), cycle.FinishedAt.Unix(), gated,
		len(cycle.Results), cycle.Orders(), cycle.Errors(),
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	cycleID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("cycle id: %w", err)
	}

	for _, sr := range cycle.Results {
		orderID, errKind, errMsg := "", "", ""
		if sr.Receipt != nil {
			orderID = sr.Receipt.OrderID
		}
		if sr.Err != nil {
			errKind = boterr.Kind(sr.Err)
			errMsg = sr.Err.Error()
		}
		if _, err := tx.Exec(
			`INSERT INTO cycle_results (cycle_id, symbol, action, signal, rsi, last_close, qty, order_id, error_kind, error_msg)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cycleID, sr.Symbol, string(sr.Action), string(sr.Signal),
			sr.RSI, sr.LastClose, sr.Qty, orderID, errKind, errMsg,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", sr.Symbol, err)
		}

		if sr.Receipt != nil {
			if _, err := tx.Exec(
				`INSERT INTO orders (cycle_id, submitted_at, symbol, side, status, order_id, client_order_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				cycleID, sr.Receipt.SubmittedAt.Unix(), sr.Receipt.Symbol,
				string(sr.Receipt.Side), sr.Receipt.Status,
				sr.Receipt.OrderID, sr.Receipt.ClientOrderID,
			); err != nil {
				return fmt.Errorf("insert order %s: %w", sr.Symbol, err)
			}
		}
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
