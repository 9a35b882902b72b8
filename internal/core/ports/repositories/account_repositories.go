package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts, optionally filtered by role.
	ListAccounts(ctx context.Context, role *domain.AccountRole) ([]domain.Account, error)

	// FindAccountByIDForUpdate selects an account and locks the row within a transaction.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateCachedBalance overwrites the cached balance projection. Used only
	// by reconciliation; normal balance movement happens inside the ledger
	// repository's posting transaction.
	UpdateCachedBalance(ctx context.Context, accountID string, balance decimal.Decimal, wallet bool, updatedBy string, updatedAt time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
