package services

import (
	"context"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	"github.com/plusprogress/schoolcore/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves accounts, optionally filtered by role.
	ListAccounts(ctx context.Context, role *domain.AccountRole) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount registers a new account with zero balances.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error)

	// Deposit posts a deposit transaction crediting the account balance.
	Deposit(ctx context.Context, accountID string, req dto.DepositRequest, actorID string) (*domain.Transaction, error)
}

// AccountSvcFacade combines all account service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
