package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/ledger/internal/models"
)

const accountColumns = `id, owner_id, account_number, balance, currency, version, created_at, updated_at`

// AccountStore reads and writes the accounts table.
type AccountStore struct{}

func NewAccountStore() *AccountStore {
	return &AccountStore{}
}

// Insert persists a new account. Unique violations on the account number are
// returned unwrapped so callers can classify them.
func (s *AccountStore) Insert(ctx context.Context, q DBTX, a *models.Account) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_id, account_number, balance, currency, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.OwnerID, a.AccountNumber, a.Balance, a.Currency, a.Version, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *AccountStore) Get(ctx context.Context, q DBTX, id uuid.UUID) (*models.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetForUpdate loads the account and holds a row lock until the surrounding
// transaction ends.
func (s *AccountStore) GetForUpdate(ctx context.Context, tx DBTX, id uuid.UUID) (*models.Account, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

func (s *AccountStore) ListByOwner(ctx context.Context, q DBTX, ownerID uuid.UUID) ([]models.Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY account_number ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// UpdateBalance writes the new balance if the row is still at version.
func (s *AccountStore) UpdateBalance(ctx context.Context, tx DBTX, id uuid.UUID, newBalance int64, version int, now time.Time) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, now, id, version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: account %s", ErrStaleVersion, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.AccountNumber, &a.Balance, &a.Currency, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
