// Package reporting provides append-only, external status/event
// reporters: emit.Observer implementations that persist every Event a
// Model's replications emit to a SQL database, for after-the-fact
// querying. They are reporters, not stores — there is no load path, no
// resume-from-checkpoint, and no notion of a "latest" row to overwrite;
// that functionality is an explicit Non-goal of the kernel (spec.md
// "Non-goals: checkpoint/restart").
//
// Grounded on the teacher's graph/store SQLiteStore/MySQLStore
// (connection setup, WAL mode, schema migration on first use), with the
// checkpoint/step/idempotency schema replaced by a single append-only
// events table and every load/resume method removed.
package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/desgo/kernel/des/emit"
	_ "modernc.org/sqlite"
)

// SQLiteReporter appends every observed Event to a single-file SQLite
// database. Designed for local experiments and development where a
// full time-series backend would be overkill.
type SQLiteReporter struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
	path   string
}

// NewSQLiteReporter opens (creating if necessary) a SQLite database at
// path and ensures its schema exists. path may be ":memory:" for an
// ephemeral, process-local reporter.
func NewSQLiteReporter(path string) (*SQLiteReporter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	r := &SQLiteReporter{db: db, path: path}
	if err := r.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteReporter) createSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS des_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model_name TEXT NOT NULL,
			replication INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			element_name TEXT NOT NULL,
			event_id INTEGER NOT NULL,
			msg TEXT NOT NULL,
			meta TEXT NOT NULL,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create des_events table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_des_events_model ON des_events(model_name, replication)"); err != nil {
		return fmt.Errorf("create des_events index: %w", err)
	}
	return nil
}

// Emit appends a single event. Write errors are discarded without being
// recorded — an observer backend must never propagate a write
// failure back into event dispatch (spec.md §6's "must not be allowed to
// corrupt kernel state").
func (r *SQLiteReporter) Emit(event emit.Event) {
	_ = r.insert(context.Background(), event)
}

// EmitBatch appends every event in a single transaction.
func (r *SQLiteReporter) EmitBatch(ctx context.Context, events []emit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("reporter is closed")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, e := range events {
		if err := insertTx(ctx, tx, e); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteReporter) insert(ctx context.Context, event emit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("reporter is closed")
	}
	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO des_events (model_name, replication, sim_time, element_name, event_id, msg, meta)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ModelName, event.Replication, event.Time, event.ElementName, event.EventID, event.Msg, string(metaJSON))
	return err
}

func insertTx(ctx context.Context, tx *sql.Tx, event emit.Event) error {
	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO des_events (model_name, replication, sim_time, element_name, event_id, msg, meta)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ModelName, event.Replication, event.Time, event.ElementName, event.EventID, event.Msg, string(metaJSON))
	return err
}

// Flush is a no-op: every Emit/EmitBatch call already commits.
func (r *SQLiteReporter) Flush(context.Context) error { return nil }

// Count returns the number of events recorded for modelName, for tests
// and health checks.
func (r *SQLiteReporter) Count(ctx context.Context, modelName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM des_events WHERE model_name = ?", modelName).Scan(&n)
	return n, err
}

// Close closes the underlying database connection. Safe to call more
// than once.
func (r *SQLiteReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}

// Path returns the database file path the reporter was opened with.
func (r *SQLiteReporter) Path() string { return r.path }
