package db

import (
	"context"
	"strings"

	"chainbench/domain/core"
	"chainbench/domain/run"
	"chainbench/internal/errors"
	"chainbench/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists benchmark runs in a relational database.
type Store struct {
	db     *sqlx.DB
	driver string
}

// StoredRecord is one ordering's measurements joined with its run.
type StoredRecord struct {
	run.Record
	RunID       core.RunID `db:"run_id"`
	Source      string     `db:"source"`
	CreatedAtMs int64      `db:"created_at_ms"`
}

// DriverFor picks the sql driver for dsn: postgres URLs go to lib/pq,
// anything else is treated as a sqlite3 database file.
func DriverFor(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// Open connects to dsn and brings the schema up to date.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver := DriverFor(dsn)
	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to result store", err)
	}
	if driver == "sqlite3" {
		// PRAGMAs are per connection.
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, errors.DatabaseError("failed to enable foreign keys", err)
		}
	}

	if err := migration.NewRunner().Run(ctx, conn); err != nil {
		conn.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "result store migration failed"))
	}
	return &Store{db: conn, driver: driver}, nil
}

// Driver returns the sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores the manifest and one row per ordering in a single transaction.
func (s *Store) SaveRun(ctx context.Context, m *run.Manifest, result *run.Result) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO bench_runs (run_id, source, key_limit, seed, created_at_ms)
		VALUES (?, ?, ?, ?, ?)`),
		m.RunID.String(), m.Source, m.Limit, m.Seed, m.CreatedAt.UnixMilli())
	if err != nil {
		return errors.DatabaseError("failed to insert run", err)
	}

	insert := tx.Rebind(`
		INSERT INTO bench_results (run_id, order_label, key_count, insert_seconds, search_seconds, delete_seconds)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for _, rec := range result.Records(m.CreatedAt) {
		if _, err := tx.ExecContext(ctx, insert,
			m.RunID.String(), string(rec.Order), rec.Count,
			rec.InsertSeconds, rec.SearchSeconds, rec.DeleteSeconds); err != nil {
			return errors.DatabaseError("failed to insert "+string(rec.Order)+" result", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit run", err)
	}
	return nil
}

// ListRuns returns the records of the newest limit runs, newest run first and
// orderings in their timed sequence within a run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]StoredRecord, error) {
	var rows []StoredRecord
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT r.run_id, r.source, r.created_at_ms,
		       res.order_label, res.key_count, res.insert_seconds, res.search_seconds, res.delete_seconds
		FROM (
			SELECT run_id, source, created_at_ms FROM bench_runs
			ORDER BY created_at_ms DESC, run_id DESC
			LIMIT ?
		) r
		JOIN bench_results res ON res.run_id = r.run_id
		ORDER BY r.created_at_ms DESC, r.run_id DESC,
			CASE res.order_label WHEN 'sorted' THEN 0 WHEN 'shuffled' THEN 1 ELSE 2 END`), limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	for i := range rows {
		rows[i].Timestamp = core.FromUnixMilli(rows[i].CreatedAtMs)
	}
	return rows, nil
}
