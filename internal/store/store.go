// Package store persists project and dataset metadata in PostgreSQL.
//
// Every query that touches a project or dataset is scoped by the owning
// user ID, so ownership checks live here rather than in handlers.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a project or dataset does not exist, or is
// not owned by the requesting user. The two cases are deliberately not
// distinguished.
var ErrNotFound = errors.New("not found")

// DBTX is the subset of pgx operations the store needs.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store provides access to projects and datasets.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the schema if it does not exist.
// Run once at startup before serving requests.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id)`,
		`CREATE TABLE IF NOT EXISTS datasets (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			file_name TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			delimiter TEXT NOT NULL,
			columns TEXT[] NOT NULL,
			row_count INTEGER NOT NULL,
			unterminated_quote BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_project ON datasets(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_owner ON datasets(owner_id)`,
		`CREATE TABLE IF NOT EXISTS dataset_rows (
			dataset_id UUID NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			row_index INTEGER NOT NULL,
			fields JSONB NOT NULL,
			PRIMARY KEY (dataset_id, row_index)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
