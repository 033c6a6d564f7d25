package migration

import (
	"context"

	"chainbench/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner creates the result store schema. Statements stick to SQL
// that both sqlite3 and postgres accept.
type MigrationRunner struct{}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bench_runs table")
	}

	if err := r.createResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bench_results table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bench_runs (
			run_id VARCHAR(36) PRIMARY KEY,
			source TEXT NOT NULL,
			key_limit INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			created_at_ms BIGINT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bench_results (
			run_id VARCHAR(36) NOT NULL REFERENCES bench_runs(run_id) ON DELETE CASCADE,
			order_label VARCHAR(16) NOT NULL,
			key_count INTEGER NOT NULL,
			insert_seconds DOUBLE PRECISION NOT NULL,
			search_seconds DOUBLE PRECISION NOT NULL,
			delete_seconds DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, order_label)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_bench_runs_created_at ON bench_runs(created_at_ms)
	`)
	return err
}
