package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/services"
)

type LedgerHandler struct {
	accounts  AccountService
	ledger    LedgerService
	validator *services.ValidationHelper
	log       zerolog.Logger
}

func NewLedgerHandler(accounts AccountService, ledger LedgerService, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		accounts:  accounts,
		ledger:    ledger,
		validator: services.NewValidationHelper(),
		log:       log,
	}
}

type amountRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type balanceResponse struct {
	Balance     int64               `json:"balance"`
	Transaction *models.Transaction `json:"transaction"`
}

type transferRequest struct {
	FromAccountID uuid.UUID `json:"from_account_id" validate:"required"`
	ToAccount     string    `json:"to_account" validate:"required,max=320"`
	Amount        int64     `json:"amount" validate:"required,gt=0"`
}

// Deposit credits the account
// @Summary Deposit
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountID path string true "Account id"
// @Param request body amountRequest true "Amount in minor units"
// @Success 201 {object} balanceResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountID}/transactions/deposit [post]
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.postEntry(w, r, h.ledger.Deposit)
}

// Withdraw debits the account
// @Summary Withdraw
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountID path string true "Account id"
// @Param request body amountRequest true "Amount in minor units"
// @Success 201 {object} balanceResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /accounts/{accountID}/transactions/withdraw [post]
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.postEntry(w, r, h.ledger.Withdraw)
}

func (h *LedgerHandler) postEntry(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, accountID uuid.UUID, amount int64) (*models.Transaction, int64, error)) {
	account, ok := ownedAccount(w, r, h.accounts, h.log)
	if !ok {
		return
	}

	var req amountRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	entry, balance, err := op(r.Context(), account.ID, req.Amount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, balanceResponse{Balance: balance, Transaction: entry})
}

// Transfer moves funds from one of the caller's accounts. The destination is
// an account id or the email of the receiving account holder.
// @Summary Transfer
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body transferRequest true "Transfer"
// @Success 201 {object} models.Transfer
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /transfers [post]
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	from, err := h.accounts.GetAccount(r.Context(), req.FromAccountID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if from.OwnerID != ownerID {
		services.SendErrorResponse(w, "Account does not belong to caller", "forbidden", http.StatusForbidden, nil)
		return
	}

	toID, err := h.accounts.ResolveDestination(r.Context(), req.ToAccount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	transfer, err := h.ledger.Transfer(r.Context(), from.ID, toID, req.Amount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, transfer)
}
