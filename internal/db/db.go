// Package db provides PostgreSQL persistence for mission history.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS missions (
		mission_id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'running',
		style TEXT NOT NULL,
		mode TEXT NOT NULL,
		error_message TEXT,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS mission_results (
		mission_id TEXT PRIMARY KEY REFERENCES missions(mission_id) ON DELETE CASCADE,
		content JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS mission_logs (
		id BIGSERIAL PRIMARY KEY,
		mission_id TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		event_type TEXT NOT NULL,
		message TEXT NOT NULL,
		data JSONB,
		level TEXT NOT NULL DEFAULT 'INFO'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mission_logs_mission_id ON mission_logs(mission_id)`,
	`CREATE INDEX IF NOT EXISTS idx_mission_logs_timestamp ON mission_logs(timestamp)`,
}

// EnsureSchema creates the mission tables and indexes if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// nullIfEmpty returns nil if the string is empty, otherwise a pointer to the string
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
