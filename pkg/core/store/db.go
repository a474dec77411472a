// Package store caches fetched company financials so repeated valuations
// don't hammer the data provider. Postgres is the primary backend with a
// file-based fallback for local runs without a database.
package store

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema for the Postgres backend:
//
//	CREATE TABLE IF NOT EXISTS company_financials (
//	    id          TEXT PRIMARY KEY,
//	    ticker      TEXT NOT NULL UNIQUE,
//	    fetched_at  TIMESTAMPTZ NOT NULL,
//	    data        JSONB NOT NULL
//	);

// Connect opens a pgx pool from the DATABASE_URL environment variable.
// Returns (nil, nil) when the variable is unset, which callers treat as
// "file cache only".
func Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, nil
	}

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}
