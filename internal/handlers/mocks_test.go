package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, ownerID uuid.UUID, currency string) (*models.Account, error) {
	args := m.Called(ctx, ownerID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountService) ResolveDestination(ctx context.Context, identifier string) (uuid.UUID, error) {
	args := m.Called(ctx, identifier)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Deposit(ctx context.Context, accountID uuid.UUID, amount int64) (*models.Transaction, int64, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, amount int64) (*models.Transaction, int64, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) Transfer(ctx context.Context, fromAccountID, toAccountID uuid.UUID, amount int64) (*models.Transfer, error) {
	args := m.Called(ctx, fromAccountID, toAccountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockLedgerService) Reconcile(ctx context.Context, accountID uuid.UUID) (*models.Reconciliation, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reconciliation), args.Error(1)
}

type MockStatementService struct {
	mock.Mock
}

func (m *MockStatementService) GetStatement(ctx context.Context, accountID uuid.UUID) (*models.Statement, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Statement), args.Error(1)
}

func (m *MockStatementService) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}
