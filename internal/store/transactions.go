package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/ruralpay/ledger/internal/models"
)

// TransactionStore appends to and reads the transactions table. Rows are
// never updated or deleted.
type TransactionStore struct{}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

func (s *TransactionStore) Insert(ctx context.Context, q DBTX, t *models.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, amount, type, related_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.AccountID, t.Amount, string(t.Type), t.RelatedAccountID, t.Timestamp)
	return err
}

// ListByAccount returns every row for the account, newest first.
func (s *TransactionStore) ListByAccount(ctx context.Context, q DBTX, accountID uuid.UUID) ([]models.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, account_id, amount, type, related_account_id, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var txType string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &txType, &t.RelatedAccountID, &t.Timestamp); err != nil {
			return nil, err
		}
		t.Type = models.TransactionType(txType)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// SumByAccount returns the sum of all amounts recorded for the account.
func (s *TransactionStore) SumByAccount(ctx context.Context, q DBTX, accountID uuid.UUID) (int64, error) {
	var sum int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE account_id = $1`, accountID).Scan(&sum)
	return sum, err
}
