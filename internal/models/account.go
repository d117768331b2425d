package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a single-currency balance owned by one principal. Balance is in
// minor units and never negative.
type Account struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	Balance       int64     `json:"balance" db:"balance"` // in cents
	Currency      string    `json:"currency" db:"currency"`
	Version       int       `json:"-" db:"version"` // for optimistic locking
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Reconciliation compares an account balance with the sum of its ledger rows.
type Reconciliation struct {
	AccountID uuid.UUID `json:"account_id"`
	Balance   int64     `json:"balance"`
	LedgerSum int64     `json:"ledger_sum"`
	Balanced  bool      `json:"balanced"`
}
