package models

import "github.com/google/uuid"

// Statement summarises an account's full history. StartingBalance is derived
// as EndingBalance - (TotalCredits - TotalDebits).
type Statement struct {
	AccountID        uuid.UUID        `json:"account_id"`
	AccountNumber    string           `json:"account_number"`
	Currency         string           `json:"currency"`
	StartingBalance  int64            `json:"starting_balance"`
	EndingBalance    int64            `json:"ending_balance"`
	TotalCredits     int64            `json:"total_credits"`
	TotalDebits      int64            `json:"total_debits"`
	NetChange        int64            `json:"net_change"`
	TransactionCount int              `json:"transaction_count"`
	Transactions     []Transaction    `json:"transactions"`
	Display          StatementDisplay `json:"display"`
}

// StatementDisplay holds the money figures in major units, e.g. "12.50".
type StatementDisplay struct {
	StartingBalance string `json:"starting_balance"`
	EndingBalance   string `json:"ending_balance"`
	TotalCredits    string `json:"total_credits"`
	TotalDebits     string `json:"total_debits"`
	NetChange       string `json:"net_change"`
}
