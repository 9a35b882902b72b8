package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// PostTransactionRequest defines the payload for appending a ledger entry.
type PostTransactionRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Kind        string          `json:"kind" binding:"required,oneof=income expense deposit teacher_payout teacher_salary"`
	Description string          `json:"description" binding:"required"`
	LessonID    *string         `json:"lessonID,omitempty"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Description   string          `json:"description"`
	LessonID      *string         `json:"lessonID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListTransactionsParams defines pagination parameters for transaction history.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is one page of an account's transaction history.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ReconcileResult reports the outcome of reconciling one account.
type ReconcileResult struct {
	AccountID    string          `json:"accountID"`
	OldBalance   decimal.Decimal `json:"oldBalance"`
	NewBalance   decimal.Decimal `json:"newBalance"`
	OldWallet    decimal.Decimal `json:"oldWallet"`
	NewWallet    decimal.Decimal `json:"newWallet"`
	Corrected    bool            `json:"corrected"`
	BalanceDrift decimal.Decimal `json:"balanceDrift"`
}

// ReconcileSummary reports the outcome of a full reconciliation run.
type ReconcileSummary struct {
	AccountsChecked     int `json:"accountsChecked"`
	MismatchesFound     int `json:"mismatchesFound"`
	MismatchesCorrected int `json:"mismatchesCorrected"`
	ExpensesBackfilled  int `json:"expensesBackfilled"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		Amount:        txn.Amount,
		Kind:          string(txn.Kind),
		Description:   txn.Description,
		LessonID:      txn.LessonID,
		CreatedAt:     txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
