package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	"github.com/plusprogress/schoolcore/internal/dto"
)

// LedgerPosterSvc defines the append side of the ledger
type LedgerPosterSvc interface {
	// Post appends a transaction and updates the cached balance projection.
	// A duplicate lesson expense is a no-op returning the existing posting.
	Post(ctx context.Context, req dto.PostTransactionRequest, actorID string) (*domain.Transaction, error)
}

// LedgerReaderSvc defines the derived-balance side of the ledger
type LedgerReaderSvc interface {
	// HasExpenseFor reports whether the account was already billed for the lesson.
	HasExpenseFor(ctx context.Context, accountID, lessonID string) (bool, error)

	// Recompute derives (balance, walletBalance) from the transaction log
	// without mutating anything.
	Recompute(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error)

	// ListTransactions retrieves a page of an account's transaction history.
	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerReconcilerSvc defines the self-healing repair path
type LedgerReconcilerSvc interface {
	// ReconcileOne compares cached and recomputed balances and overwrites the
	// cached projection when they drift. Transactions are never touched.
	ReconcileOne(ctx context.Context, accountID string, actorID string) (*dto.ReconcileResult, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerPosterSvc
	LedgerReaderSvc
	LedgerReconcilerSvc
}
