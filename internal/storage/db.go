package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the table store in process memory, so nothing survives a restart.
const MemoryDSN = ":memory:"

type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(ctx context.Context, dsn string, logger *slog.Logger) (*Repository, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection is required for :memory: databases, where every
	// connection would otherwise see its own empty schema.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	repo := &Repository{db: db, logger: logger}
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS view_tables (
			name TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS view_rows (
			table_name TEXT NOT NULL,
			position INTEGER NOT NULL,
			cells_json TEXT NOT NULL,
			placeholder INTEGER NOT NULL,
			colspan INTEGER NOT NULL,
			PRIMARY KEY (table_name, position)
		);`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return r.clearStale(ctx)
}

// clearStale drops rows left by a previous process when the store is a file.
// The dashboard only ever shows what the current feed session delivered.
func (r *Repository) clearStale(ctx context.Context) error {
	for _, table := range []string{"view_rows", "view_tables"} {
		res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+";")
		if err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 && r.logger != nil {
			r.logger.Info("cleared rows from previous run", "table", table, "rows", rows)
		}
	}
	return nil
}
