package services

import (
	"context"
	"database/sql"
)

var readOnlyTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// runInTx commits when fn succeeds and rolls back on every other path, so a
// failed operation leaves the store as it found it.
func runInTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, op string, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return storageError(op+": begin", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError(op+": commit", err)
	}
	return nil
}
