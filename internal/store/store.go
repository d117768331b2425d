// Package store holds the SQL contracts for accounts, transactions and users.
// Every method takes a DBTX so the same code runs inside or outside a
// database transaction.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// ErrStaleVersion is returned when a version-checked update touched no row.
var ErrStaleVersion = errors.New("store: stale version")

// Constraint names from the schema.
const (
	BalanceCheckConstraint        = "ck_accounts_balance_nonnegative"
	AccountNumberUniqueConstraint = "uq_accounts_account_number"
	AccountOwnerForeignKey        = "accounts_owner_id_fkey"
)

const (
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeCheckViolation      pq.ErrorCode = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation on
// the named constraint. An empty name matches any unique constraint.
func IsUniqueViolation(err error, constraint string) bool {
	return isPQError(err, codeUniqueViolation, constraint)
}

// IsCheckViolation reports whether err is a CHECK constraint violation on the
// named constraint. An empty name matches any check constraint.
func IsCheckViolation(err error, constraint string) bool {
	return isPQError(err, codeCheckViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key violation on the
// named constraint. An empty name matches any foreign key.
func IsForeignKeyViolation(err error, constraint string) bool {
	return isPQError(err, codeForeignKeyViolation, constraint)
}

func isPQError(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
