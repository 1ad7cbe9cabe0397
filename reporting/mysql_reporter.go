package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/desgo/kernel/des/emit"
)

// MySQLReporter appends every observed Event to a shared MySQL database,
// for experiments run across multiple processes or machines that need a
// single external event log (spec.md §6 "External collaborators").
type MySQLReporter struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
	dsn    string
}

// NewMySQLReporter opens a connection pool against dsn and ensures the
// reporting schema exists.
func NewMySQLReporter(dsn string) (*MySQLReporter, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	r := &MySQLReporter{db: db, dsn: dsn}
	if err := r.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *MySQLReporter) createSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS des_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			model_name VARCHAR(255) NOT NULL,
			replication INT NOT NULL,
			sim_time DOUBLE NOT NULL,
			element_name VARCHAR(255) NOT NULL,
			event_id BIGINT NOT NULL,
			msg VARCHAR(255) NOT NULL,
			meta JSON NOT NULL,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_des_events_model (model_name, replication)
		) ENGINE=InnoDB
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create des_events table: %w", err)
	}
	return nil
}

// Emit appends a single event, swallowing write failures so a reporting
// backend outage can never propagate into event dispatch.
func (r *MySQLReporter) Emit(event emit.Event) {
	_ = r.insert(context.Background(), event)
}

// EmitBatch appends every event in a single transaction.
func (r *MySQLReporter) EmitBatch(ctx context.Context, events []emit.Event) error {
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
		metaJSON, err := json.Marshal(e.Meta)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal meta: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO des_events (model_name, replication, sim_time, element_name, event_id, msg, meta)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ModelName, e.Replication, e.Time, e.ElementName, e.EventID, e.Msg, string(metaJSON)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

func (r *MySQLReporter) insert(ctx context.Context, event emit.Event) error {
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

// Flush is a no-op: every Emit/EmitBatch call already commits.
func (r *MySQLReporter) Flush(context.Context) error { return nil }

// Count returns the number of events recorded for modelName.
func (r *MySQLReporter) Count(ctx context.Context, modelName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM des_events WHERE model_name = ?", modelName).Scan(&n)
	return n, err
}

// Close closes the underlying connection pool. Safe to call more than
// once.
func (r *MySQLReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}
