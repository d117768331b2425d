package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/config"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/store"
)

// AccountService opens accounts and resolves transfer destinations.
type AccountService struct {
	db       *sql.DB
	accounts *store.AccountStore
	users    *store.UserStore
	numbers  AccountNumberGenerator
	validate *ValidationHelper
	audit    *AuditLogger
	log      zerolog.Logger
	cfg      config.LedgerConfig
	now      func() time.Time
}

func NewAccountService(db *sql.DB, cfg config.LedgerConfig, numbers AccountNumberGenerator, log zerolog.Logger) *AccountService {
	return &AccountService{
		db:       db,
		accounts: store.NewAccountStore(),
		users:    store.NewUserStore(),
		numbers:  numbers,
		validate: NewValidationHelper(),
		audit:    NewAuditLogger(log),
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CreateAccount opens a zero-balance account for ownerID. An empty currency
// falls back to the configured default.
func (s *AccountService) CreateAccount(ctx context.Context, ownerID uuid.UUID, currency string) (*models.Account, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if err := s.validate.ValidateVar(currency, "iso4217"); err != nil {
		return nil, ErrInvalidCurrency
	}

	attempts := 0
	account, err := RetryOnConflict(s.cfg.MaxCreateAttempts,
		s.numbers.Generate,
		func(number string) (*models.Account, error) {
			attempts++
			now := s.now().UTC()
			a := &models.Account{
				ID:            uuid.New(),
				OwnerID:       ownerID,
				AccountNumber: number,
				Balance:       0,
				Currency:      currency,
				Version:       1,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.accounts.Insert(ctx, s.db, a); err != nil {
				return nil, err
			}
			return a, nil
		},
		func(err error) bool {
			if store.IsUniqueViolation(err, store.AccountNumberUniqueConstraint) {
				s.log.Warn().Int("attempt", attempts).Msg("account number collision, retrying")
				return true
			}
			return false
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountNumberExhausted):
			s.log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("account number generation exhausted")
		case store.IsForeignKeyViolation(err, store.AccountOwnerForeignKey):
			err = wrap(ErrOwnerNotFound, err)
		default:
			err = storageError("create account", err)
		}
		s.audit.LogError("create_account", ownerID, 0, err)
		return nil, err
	}

	s.audit.LogAccountOpened(account.ID, account.AccountNumber, account.Currency, attempts)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.Get(ctx, s.db, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, storageError("get account", err)
	}
	return account, nil
}

// ListAccounts returns the owner's accounts ordered by account number.
func (s *AccountService) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error) {
	accounts, err := s.accounts.ListByOwner(ctx, s.db, ownerID)
	if err != nil {
		return nil, storageError("list accounts", err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// ResolveDestination turns a transfer destination into an account id. An
// identifier that parses as a UUID is used as-is; anything else is treated
// as an account holder's email and resolved to that holder's primary account.
func (s *AccountService) ResolveDestination(ctx context.Context, identifier string) (uuid.UUID, error) {
	identifier = strings.TrimSpace(identifier)
	if id, err := uuid.Parse(identifier); err == nil {
		return id, nil
	}

	user, err := s.users.FindByEmail(ctx, s.db, identifier)
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, ErrOwnerNotFound
	}
	if err != nil {
		return uuid.Nil, storageError("resolve destination", err)
	}

	accounts, err := s.ListAccounts(ctx, user.ID)
	if err != nil {
		return uuid.Nil, err
	}
	primary := PrimaryAccount(accounts, s.cfg.PrimaryAccountPrefix)
	if primary == nil {
		return uuid.Nil, ErrAccountNotFound
	}
	return primary.ID, nil
}

// PrimaryAccount picks the first account whose number carries prefix, or the
// first account overall. accounts must be in a stable order.
func PrimaryAccount(accounts []models.Account, prefix string) *models.Account {
	if len(accounts) == 0 {
		return nil
	}
	if prefix != "" {
		for i := range accounts {
			if strings.HasPrefix(accounts[i].AccountNumber, prefix) {
				return &accounts[i]
			}
		}
	}
	return &accounts[0]
}
