package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	AuditEventAccountOpened = "ACCOUNT_OPENED"
	AuditEventDeposit       = "DEPOSIT"
	AuditEventWithdrawal    = "WITHDRAWAL"
	AuditEventTransfer      = "TRANSFER"
	AuditEventError         = "ERROR"
)

// AuditLogger writes one structured event per committed ledger mutation and
// per failed attempt.
type AuditLogger struct {
	log zerolog.Logger
}

func NewAuditLogger(log zerolog.Logger) *AuditLogger {
	return &AuditLogger{log: log.With().Str("stream", "audit").Logger()}
}

func (a *AuditLogger) LogAccountOpened(accountID uuid.UUID, accountNumber, currency string, attempts int) {
	a.event(AuditEventAccountOpened, "SUCCESS").
		Str("account_id", accountID.String()).
		Str("account_number", accountNumber).
		Str("currency", currency).
		Int("attempts", attempts).
		Send()
}

func (a *AuditLogger) LogDeposit(transactionID, accountID uuid.UUID, amount, balance int64) {
	a.event(AuditEventDeposit, "SUCCESS").
		Str("transaction_id", transactionID.String()).
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Int64("balance", balance).
		Send()
}

func (a *AuditLogger) LogWithdrawal(transactionID, accountID uuid.UUID, amount, balance int64) {
	a.event(AuditEventWithdrawal, "SUCCESS").
		Str("transaction_id", transactionID.String()).
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Int64("balance", balance).
		Send()
}

func (a *AuditLogger) LogTransfer(debitID, fromAccount, toAccount uuid.UUID, amount int64) {
	a.event(AuditEventTransfer, "SUCCESS").
		Str("transaction_id", debitID.String()).
		Str("from_account", fromAccount.String()).
		Str("to_account", toAccount.String()).
		Int64("amount", amount).
		Send()
}

func (a *AuditLogger) LogError(operation string, accountID uuid.UUID, amount int64, err error) {
	a.event(AuditEventError, "FAILED").
		Str("operation", operation).
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Str("kind", KindOf(err).String()).
		Err(err).
		Send()
}

func (a *AuditLogger) event(eventType, status string) *zerolog.Event {
	level := zerolog.InfoLevel
	if status != "SUCCESS" {
		level = zerolog.WarnLevel
	}
	return a.log.WithLevel(level).
		Time("timestamp", time.Now().UTC()).
		Str("event_type", eventType).
		Str("status", status)
}
