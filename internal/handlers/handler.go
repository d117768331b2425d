package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	mw "github.com/ruralpay/ledger/internal/middleware"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/services"
)

const maxBodyBytes = 1_048_576

// AccountService is the slice of services.AccountService the handlers use.
type AccountService interface {
	CreateAccount(ctx context.Context, ownerID uuid.UUID, currency string) (*models.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error)
	ResolveDestination(ctx context.Context, identifier string) (uuid.UUID, error)
}

type LedgerService interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amount int64) (*models.Transaction, int64, error)
	Withdraw(ctx context.Context, accountID uuid.UUID, amount int64) (*models.Transaction, int64, error)
	Transfer(ctx context.Context, fromAccountID, toAccountID uuid.UUID, amount int64) (*models.Transfer, error)
	Reconcile(ctx context.Context, accountID uuid.UUID) (*models.Reconciliation, error)
}

type StatementService interface {
	GetStatement(ctx context.Context, accountID uuid.UUID) (*models.Statement, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindBusinessRule:
		return http.StatusConflict
	case services.KindConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError hides storage details from clients; they only reach the log.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	kind := services.KindOf(err)
	status := StatusFor(kind)

	message := err.Error()
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("kind", kind.String()).Msg("request failed")
		if kind == services.KindStorage {
			message = "internal error"
		}
	}
	if kind == services.KindConflict {
		w.Header().Set("Retry-After", "1")
	}

	services.SendErrorResponse(w, message, services.CodeOf(err), status, nil)
}

// decodeJSON reads exactly one JSON object from the body and validates it.
// It writes the 400 itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *services.ValidationHelper, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", "invalid_request", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", "invalid_request", http.StatusBadRequest, nil)
		return false
	}
	if err := v.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", "invalid_request", http.StatusBadRequest, err)
		return false
	}
	return true
}

func requireOwner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := mw.OwnerIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", "unauthorized", http.StatusUnauthorized, nil)
		return uuid.Nil, false
	}
	return ownerID, true
}

// ownedAccount loads the {accountID} in the route and checks it belongs to
// the caller. Accounts of other principals are reported as forbidden.
func ownedAccount(w http.ResponseWriter, r *http.Request, accounts AccountService, log zerolog.Logger) (*models.Account, bool) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return nil, false
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid account id", "invalid_request", http.StatusBadRequest, nil)
		return nil, false
	}

	account, err := accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, log, err)
		return nil, false
	}
	if account.OwnerID != ownerID {
		services.SendErrorResponse(w, "Account does not belong to caller", "forbidden", http.StatusForbidden, nil)
		return nil, false
	}
	return account, true
}
