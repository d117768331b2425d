package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/config"
)

// Schema is the ledger DDL. Constraint names must match the ones classified in
// the store package.
//
//go:embed schema.sql
var Schema string

// Open initializes the connection pool and verifies connectivity.
func Open(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if cfg.ApplySchema {
		if err := ApplySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("ledger schema applied")
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("database connection established")
	return db, nil
}

// ApplySchema runs the idempotent DDL in one statement batch.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}
