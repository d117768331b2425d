package models

import "github.com/google/uuid"

// User is the owning principal of accounts. The ledger only reads it.
type User struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Email    string    `json:"email" db:"email"`
	IsActive bool      `json:"is_active" db:"is_active"`
}
