package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/store"
)

// LedgerService owns every balance mutation. Each operation is one database
// transaction: the balance update and its ledger rows commit together or not
// at all. Rows are locked with SELECT ... FOR UPDATE and written with a
// version check; the balance CHECK constraint backs both up.
type LedgerService struct {
	db           *sql.DB
	accounts     *store.AccountStore
	transactions *store.TransactionStore
	audit        *AuditLogger
	log          zerolog.Logger
	now          func() time.Time
}

func NewLedgerService(db *sql.DB, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		db:           db,
		accounts:     store.NewAccountStore(),
		transactions: store.NewTransactionStore(),
		audit:        NewAuditLogger(log),
		log:          log,
		now:          time.Now,
	}
}

// Deposit credits amount to the account and returns the new ledger row and
// balance.
func (s *LedgerService) Deposit(ctx context.Context, accountID uuid.UUID, amount int64) (*models.Transaction, int64, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}

	var entry *models.Transaction
	var balance int64
	err := runInTx(ctx, s.db, nil, "deposit", func(tx *sql.Tx) error {
		account, err := s.lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account.Balance > math.MaxInt64-amount {
			return ErrInvalidAmount
		}

		now := s.now().UTC()
		balance = account.Balance + amount
		if err := s.updateBalance(ctx, tx, account, balance, now); err != nil {
			return err
		}

		entry = newEntry(account.ID, amount, models.TransactionTypeDeposit, uuid.NullUUID{}, now)
		return s.insertEntry(ctx, tx, entry)
	})
	if err != nil {
		s.audit.LogError("deposit", accountID, amount, err)
		return nil, 0, err
	}

	s.audit.LogDeposit(entry.ID, accountID, amount, balance)
	return entry, balance, nil
}

// Withdraw debits amount from the account. It fails with
// ErrInsufficientFunds rather than let the balance go negative.
func (s *LedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, amount int64) (*models.Transaction, int64, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}

	var entry *models.Transaction
	var balance int64
	err := runInTx(ctx, s.db, nil, "withdraw", func(tx *sql.Tx) error {
		account, err := s.lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account.Balance < amount {
			return ErrInsufficientFunds
		}

		now := s.now().UTC()
		balance = account.Balance - amount
		if err := s.updateBalance(ctx, tx, account, balance, now); err != nil {
			return err
		}

		entry = newEntry(account.ID, -amount, models.TransactionTypeWithdrawal, uuid.NullUUID{}, now)
		return s.insertEntry(ctx, tx, entry)
	})
	if err != nil {
		s.audit.LogError("withdraw", accountID, amount, err)
		return nil, 0, err
	}

	s.audit.LogWithdrawal(entry.ID, accountID, amount, balance)
	return entry, balance, nil
}

// Transfer moves amount between two accounts of the same currency, writing a
// transfer_out row on the sender and a transfer_in row on the receiver.
func (s *LedgerService) Transfer(ctx context.Context, fromAccountID, toAccountID uuid.UUID, amount int64) (*models.Transfer, error) {
	if fromAccountID == toAccountID {
		return nil, ErrSameAccount
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var transfer *models.Transfer
	err := runInTx(ctx, s.db, nil, "transfer", func(tx *sql.Tx) error {
		// Lock accounts in consistent order to prevent deadlocks
		firstLock, secondLock := fromAccountID, toAccountID
		if fromAccountID.String() > toAccountID.String() {
			firstLock, secondLock = toAccountID, fromAccountID
		}

		first, err := s.lockAccount(ctx, tx, firstLock)
		if err != nil {
			return err
		}
		second, err := s.lockAccount(ctx, tx, secondLock)
		if err != nil {
			return err
		}

		from, to := first, second
		if firstLock != fromAccountID {
			from, to = second, first
		}

		if from.Currency != to.Currency {
			return ErrCurrencyMismatch
		}
		if from.Balance < amount {
			return ErrInsufficientFunds
		}
		if to.Balance > math.MaxInt64-amount {
			return ErrInvalidAmount
		}

		now := s.now().UTC()
		if err := s.updateBalance(ctx, tx, from, from.Balance-amount, now); err != nil {
			return err
		}
		if err := s.updateBalance(ctx, tx, to, to.Balance+amount, now); err != nil {
			return err
		}

		debit := newEntry(from.ID, -amount, models.TransactionTypeTransferOut, uuid.NullUUID{UUID: to.ID, Valid: true}, now)
		credit := newEntry(to.ID, amount, models.TransactionTypeTransferIn, uuid.NullUUID{UUID: from.ID, Valid: true}, now)
		if err := s.insertEntry(ctx, tx, debit); err != nil {
			return err
		}
		if err := s.insertEntry(ctx, tx, credit); err != nil {
			return err
		}

		transfer = &models.Transfer{Debit: debit, Credit: credit}
		return nil
	})
	if err != nil {
		s.audit.LogError("transfer", fromAccountID, amount, err)
		return nil, err
	}

	s.audit.LogTransfer(transfer.Debit.ID, fromAccountID, toAccountID, amount)
	return transfer, nil
}

// Reconcile checks the stored balance against the sum of the account's
// ledger rows inside one consistent snapshot.
func (s *LedgerService) Reconcile(ctx context.Context, accountID uuid.UUID) (*models.Reconciliation, error) {
	var rec *models.Reconciliation
	err := runInTx(ctx, s.db, readOnlyTx, "reconcile", func(tx *sql.Tx) error {
		account, err := s.accounts.Get(ctx, tx, accountID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return storageError("reconcile: load account", err)
		}

		sum, err := s.transactions.SumByAccount(ctx, tx, accountID)
		if err != nil {
			return storageError("reconcile: sum transactions", err)
		}

		rec = &models.Reconciliation{
			AccountID: accountID,
			Balance:   account.Balance,
			LedgerSum: sum,
			Balanced:  account.Balance == sum,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !rec.Balanced {
		s.log.Error().
			Str("account_id", accountID.String()).
			Int64("balance", rec.Balance).
			Int64("ledger_sum", rec.LedgerSum).
			Msg("ledger out of balance")
	}
	return rec, nil
}

func (s *LedgerService) lockAccount(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, storageError("lock account", err)
	}
	return account, nil
}

func (s *LedgerService) updateBalance(ctx context.Context, tx *sql.Tx, account *models.Account, newBalance int64, now time.Time) error {
	err := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance, account.Version, now)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrStaleVersion):
		return wrap(ErrConcurrentUpdate, err)
	case store.IsCheckViolation(err, store.BalanceCheckConstraint):
		return wrap(ErrInsufficientFunds, err)
	default:
		return storageError("update balance", err)
	}
}

func (s *LedgerService) insertEntry(ctx context.Context, tx *sql.Tx, entry *models.Transaction) error {
	if err := s.transactions.Insert(ctx, tx, entry); err != nil {
		return storageError("insert transaction", err)
	}
	return nil
}

func newEntry(accountID uuid.UUID, amount int64, txType models.TransactionType, related uuid.NullUUID, now time.Time) *models.Transaction {
	return &models.Transaction{
		ID:               uuid.New(),
		AccountID:        accountID,
		Amount:           amount,
		Type:             txType,
		RelatedAccountID: related,
		Timestamp:        now,
	}
}
