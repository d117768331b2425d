package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewUserStore()
	query := regexp.QuoteMeta("SELECT id, email, is_active FROM users WHERE lower(email) = $1")

	t.Run("normalises the lookup key", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(query).
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "is_active"}).AddRow(id.String(), "Jane@Example.com", true))

		u, err := s.FindByEmail(context.Background(), db, "  Jane@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.True(t, u.IsActive)
	})

	t.Run("unknown email", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := s.FindByEmail(context.Background(), db, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
