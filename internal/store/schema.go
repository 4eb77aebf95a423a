package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS relief`,
	`CREATE TABLE IF NOT EXISTS relief.reference_candidates (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL,
		category    TEXT NOT NULL,
		quantity    INTEGER NOT NULL DEFAULT 0,
		urgency     TEXT NOT NULL DEFAULT 'medium',
		address     TEXT NOT NULL DEFAULT '',
		lat         DOUBLE PRECISION NOT NULL,
		lng         DOUBLE PRECISION NOT NULL,
		is_open     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS reference_candidates_open_idx ON relief.reference_candidates (is_open, kind)`,
	`CREATE TABLE IF NOT EXISTS relief.volunteers (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		vehicle_type  TEXT NOT NULL,
		lat           DOUBLE PRECISION NOT NULL,
		lng           DOUBLE PRECISION NOT NULL,
		is_available  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the reference tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
