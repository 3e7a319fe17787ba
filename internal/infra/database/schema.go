package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS faqs (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	category TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_faqs_created_at ON faqs (created_at DESC);

CREATE TABLE IF NOT EXISTS queries (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	mode TEXT NOT NULL,
	matched_faq_ids TEXT[] NOT NULL DEFAULT '{}',
	response_time_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries (created_at);

CREATE TABLE IF NOT EXISTS feedback (
	id BIGSERIAL PRIMARY KEY,
	query_id TEXT NOT NULL,
	rating INT NOT NULL,
	helpful BOOLEAN NOT NULL,
	comment TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// MigratePostgres creates the record store and analytics tables.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate postgres schema: %w", err)
	}
	return nil
}

// MigratePGVector enables the vector extension and creates the embeddings table.
// A non-positive dims leaves the column unconstrained.
func MigratePGVector(ctx context.Context, pool *pgxpool.Pool, dims int) error {
	column := "vector"
	if dims > 0 {
		column = fmt.Sprintf("vector(%d)", dims)
	}
	stmt := `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS faq_embeddings (
	id TEXT PRIMARY KEY,
	embedding ` + column + ` NOT NULL,
	question TEXT NOT NULL,
	category TEXT NOT NULL
);
`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("migrate pgvector schema: %w", err)
	}
	return nil
}
