package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ruralpay/ledger/internal/models"
)

// UserStore is a read-only view of principals; user lifecycle belongs to the
// auth service.
type UserStore struct{}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) FindByEmail(ctx context.Context, q DBTX, email string) (*models.User, error) {
	var u models.User
	err := q.QueryRowContext(ctx,
		`SELECT id, email, is_active FROM users WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Email, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
