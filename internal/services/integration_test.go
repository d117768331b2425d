//go:build integration

package services

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/ruralpay/ledger/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLedgerDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.ApplySchema(context.Background(), db))
	return db
}

func seedOwner(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO users (id, email) VALUES ($1, $2)`, id, id.String()+"@example.com")
	require.NoError(t, err)
	return id
}

func newIntegrationServices(t *testing.T, db *sql.DB) (*AccountService, *LedgerService) {
	t.Helper()
	numbers, err := NewRandomAccountNumberGenerator(testLedgerConfig())
	require.NoError(t, err)
	return NewAccountService(db, testLedgerConfig(), numbers, quietLogger()),
		NewLedgerService(db, quietLogger())
}

func assertReconciled(t *testing.T, ledger *LedgerService, accountID uuid.UUID, want int64) {
	t.Helper()
	rec, err := ledger.Reconcile(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, rec.Balanced, "balance %d, ledger sum %d", rec.Balance, rec.LedgerSum)
	assert.Equal(t, want, rec.Balance)
	assert.Equal(t, want, rec.LedgerSum)
}

func TestLedgerReconciles_Integration(t *testing.T) {
	ctx := context.Background()
	db := openLedgerDB(t)
	accounts, ledger := newIntegrationServices(t, db)

	alice, err := accounts.CreateAccount(ctx, seedOwner(t, db), "USD")
	require.NoError(t, err)
	bob, err := accounts.CreateAccount(ctx, seedOwner(t, db), "USD")
	require.NoError(t, err)

	_, balance, err := ledger.Deposit(ctx, alice.ID, 10_000)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), balance)

	_, balance, err = ledger.Withdraw(ctx, alice.ID, 2_500)
	require.NoError(t, err)
	assert.Equal(t, int64(7_500), balance)

	transfer, err := ledger.Transfer(ctx, alice.ID, bob.ID, 3_000)
	require.NoError(t, err)
	assert.Equal(t, int64(-3_000), transfer.Debit.Amount)
	assert.Equal(t, int64(3_000), transfer.Credit.Amount)

	_, _, err = ledger.Withdraw(ctx, bob.ID, 3_001)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assertReconciled(t, ledger, alice.ID, 4_500)
	assertReconciled(t, ledger, bob.ID, 3_000)
}

func TestConcurrentTransfers_Integration(t *testing.T) {
	ctx := context.Background()
	db := openLedgerDB(t)
	accounts, ledger := newIntegrationServices(t, db)

	a, err := accounts.CreateAccount(ctx, seedOwner(t, db), "USD")
	require.NoError(t, err)
	b, err := accounts.CreateAccount(ctx, seedOwner(t, db), "USD")
	require.NoError(t, err)

	_, _, err = ledger.Deposit(ctx, a.ID, 1_000)
	require.NoError(t, err)
	_, _, err = ledger.Deposit(ctx, b.ID, 1_000)
	require.NoError(t, err)

	// Opposite directions exercise the lock ordering.
	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		from, to := a.ID, b.ID
		if i%2 == 1 {
			from, to = b.ID, a.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Transfer(ctx, from, to, 10); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("transfer failed: %v", err)
	}

	assertReconciled(t, ledger, a.ID, 1_000)
	assertReconciled(t, ledger, b.ID, 1_000)
}
