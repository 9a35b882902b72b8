package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// LedgerReader defines read operations over the transaction log
type LedgerReader interface {
	// HasExpenseForLesson reports whether an expense transaction already
	// exists for the (account, lesson) pair.
	HasExpenseForLesson(ctx context.Context, accountID, lessonID string) (bool, error)

	// FindExpenseForLesson retrieves the expense transaction for the
	// (account, lesson) pair, or ErrNotFound.
	FindExpenseForLesson(ctx context.Context, accountID, lessonID string) (*domain.Transaction, error)

	// RecomputeBalances sums all transactions for the account and returns the
	// derived (balance, walletBalance) pair. Pure read, mutates nothing.
	RecomputeBalances(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error)

	// ListTransactionsByAccountID retrieves a page of transactions for an
	// account using token-based pagination, newest first.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindUnbilledAttendances finds attended enrollments that have no matching
	// expense transaction. Used by reconciliation to detect drift caused by
	// writes that bypassed the billing workflow.
	FindUnbilledAttendances(ctx context.Context) ([]domain.Enrollment, error)
}

// LedgerWriter defines write operations over the transaction log
type LedgerWriter interface {
	// SaveTransaction appends a transaction and updates the cached balance
	// projection atomically under a row lock on the account. The partial
	// unique index on (account_id, lesson_id) for expenses surfaces duplicate
	// billing attempts as apperrors.ErrDuplicate.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
