package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/dto"
	"github.com/plusprogress/schoolcore/internal/middleware"
)

// accountService provides account registration and balance top-ups.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerSvc   portssvc.LedgerSvcFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		ledgerSvc:   ledgerSvc,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account with zero balances.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	account := domain.Account{
		AccountID:     uuid.NewString(),
		Name:          req.Name,
		Role:          domain.AccountRole(req.Role),
		Balance:       decimal.Zero,
		WalletBalance: decimal.Zero,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("account created",
		slog.String("accountID", account.AccountID),
		slog.String("role", string(account.Role)))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its ID.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// ListAccounts retrieves accounts, optionally filtered by role.
func (s *accountService) ListAccounts(ctx context.Context, role *domain.AccountRole) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, role)
}

// Deposit posts a deposit transaction crediting the account balance. The
// ledger entry is the record; the cached balance moves with it atomically.
func (s *accountService) Deposit(ctx context.Context, accountID string, req dto.DepositRequest, actorID string) (*domain.Transaction, error) {
	description := req.Description
	if description == "" {
		description = "balance top-up"
	}
	return s.ledgerSvc.Post(ctx, dto.PostTransactionRequest{
		AccountID:   accountID,
		Amount:      req.Amount,
		Kind:        string(domain.KindDeposit),
		Description: description,
	}, actorID)
}
