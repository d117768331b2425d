package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransferOut, TransactionTypeTransferIn:
		return true
	}
	return false
}

// Transaction is an immutable ledger row. Amount is signed: positive credits
// the account, negative debits it.
type Transaction struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	AccountID        uuid.UUID       `json:"account_id" db:"account_id"`
	Amount           int64           `json:"amount" db:"amount"`
	Type             TransactionType `json:"type" db:"type"`
	RelatedAccountID uuid.NullUUID   `json:"related_account_id" db:"related_account_id"`
	Timestamp        time.Time       `json:"timestamp" db:"created_at"`
}

// Transfer is the pair of rows written by one transfer.
type Transfer struct {
	Debit  *Transaction `json:"debit"`
	Credit *Transaction `json:"credit"`
}
