package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/store"
)

// StatementService serves read-only views of an account's history.
type StatementService struct {
	db           *sql.DB
	accounts     *store.AccountStore
	transactions *store.TransactionStore
	log          zerolog.Logger
}

func NewStatementService(db *sql.DB, log zerolog.Logger) *StatementService {
	return &StatementService{
		db:           db,
		accounts:     store.NewAccountStore(),
		transactions: store.NewTransactionStore(),
		log:          log,
	}
}

// GetStatement loads the account and its full history from one snapshot and
// builds the statement from them.
func (s *StatementService) GetStatement(ctx context.Context, accountID uuid.UUID) (*models.Statement, error) {
	var statement *models.Statement
	err := runInTx(ctx, s.db, readOnlyTx, "statement", func(tx *sql.Tx) error {
		account, txs, err := s.loadHistory(ctx, tx, accountID)
		if err != nil {
			return err
		}
		statement = BuildStatement(account, txs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("account_id", accountID.String()).
		Int("transactions", statement.TransactionCount).
		Msg("statement built")
	return statement, nil
}

// ListTransactions returns the account's ledger rows, newest first.
func (s *StatementService) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := runInTx(ctx, s.db, readOnlyTx, "list transactions", func(tx *sql.Tx) error {
		var err error
		_, txs, err = s.loadHistory(ctx, tx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *StatementService) loadHistory(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (*models.Account, []models.Transaction, error) {
	account, err := s.accounts.Get(ctx, tx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, nil, storageError("load account", err)
	}

	txs, err := s.transactions.ListByAccount(ctx, tx, accountID)
	if err != nil {
		return nil, nil, storageError("load transactions", err)
	}
	return account, txs, nil
}

// BuildStatement derives the statement totals from the complete history of
// account. Credits are positive amounts and debits the magnitudes of negative
// ones; the starting balance is backed out of the current balance.
func BuildStatement(account *models.Account, txs []models.Transaction) *models.Statement {
	var credits, debits int64
	for _, t := range txs {
		if t.Amount > 0 {
			credits += t.Amount
		} else {
			debits += -t.Amount
		}
	}
	net := credits - debits
	starting := account.Balance - net

	if txs == nil {
		txs = []models.Transaction{}
	}

	return &models.Statement{
		AccountID:        account.ID,
		AccountNumber:    account.AccountNumber,
		Currency:         account.Currency,
		StartingBalance:  starting,
		EndingBalance:    account.Balance,
		TotalCredits:     credits,
		TotalDebits:      debits,
		NetChange:        net,
		TransactionCount: len(txs),
		Transactions:     txs,
		Display: models.StatementDisplay{
			StartingBalance: models.FormatMinor(starting, account.Currency),
			EndingBalance:   models.FormatMinor(account.Balance, account.Currency),
			TotalCredits:    models.FormatMinor(credits, account.Currency),
			TotalDebits:     models.FormatMinor(debits, account.Currency),
			NetChange:       models.FormatMinor(net, account.Currency),
		},
	}
}
