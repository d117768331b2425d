package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/services"
)

type AccountHandler struct {
	accounts   AccountService
	ledger     LedgerService
	statements StatementService
	validator  *services.ValidationHelper
	log        zerolog.Logger
}

func NewAccountHandler(accounts AccountService, ledger LedgerService, statements StatementService, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:   accounts,
		ledger:     ledger,
		statements: statements,
		validator:  services.NewValidationHelper(),
		log:        log,
	}
}

type createAccountRequest struct {
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

// CreateAccount opens an account for the caller
// @Summary Open account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createAccountRequest false "Account currency"
// @Success 201 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req createAccountRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), ownerID, req.Currency)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// ListMyAccounts lists the caller's accounts
// @Summary List own accounts
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Account
// @Router /accounts/me [get]
func (h *AccountHandler) ListMyAccounts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// @Router /accounts/{accountID} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := ownedAccount(w, r, h.accounts, h.log)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// ListTransactions returns the account history, newest first
// @Router /accounts/{accountID}/transactions [get]
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	account, ok := ownedAccount(w, r, h.accounts, h.log)
	if !ok {
		return
	}

	txs, err := h.statements.ListTransactions(r.Context(), account.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// @Router /accounts/{accountID}/statement [get]
func (h *AccountHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	account, ok := ownedAccount(w, r, h.accounts, h.log)
	if !ok {
		return
	}

	statement, err := h.statements.GetStatement(r.Context(), account.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, statement)
}

// @Router /accounts/{accountID}/reconciliation [get]
func (h *AccountHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	account, ok := ownedAccount(w, r, h.accounts, h.log)
	if !ok {
		return
	}

	rec, err := h.ledger.Reconcile(r.Context(), account.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
