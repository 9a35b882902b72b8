package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/apperrors"
	"github.com/plusprogress/schoolcore/internal/core/domain"
	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/dto"
	"github.com/plusprogress/schoolcore/internal/middleware"
)

const defaultTransactionPageSize = 50

// driftEpsilon is the tolerance below which cached and recomputed balances
// are considered equal. Decimal arithmetic is exact, so any drift at all is
// a bug symptom, but comparisons stay tolerant of historic rounding rows.
var driftEpsilon = decimal.NewFromFloat(0.01)

// ledgerService provides the append-only transaction log and the derived
// balance projections over it.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Post appends a transaction. Amounts are strictly positive; direction is
// carried by the kind. A duplicate expense for the same (account, lesson)
// pair is absorbed: the existing posting is returned and nothing changes.
func (s *ledgerService) Post(ctx context.Context, req dto.PostTransactionRequest, actorID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, req.Amount)
	}
	kind := domain.TransactionKind(req.Kind)
	if kind == domain.KindExpense && req.LessonID == nil {
		return nil, fmt.Errorf("%w: expense requires a lesson reference", apperrors.ErrValidation)
	}

	if _, err := s.accountRepo.FindAccountByID(ctx, req.AccountID); err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", req.AccountID, err)
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     req.AccountID,
		Amount:        req.Amount,
		Kind:          kind,
		Description:   req.Description,
		LessonID:      req.LessonID,
		CreatedAt:     now,
		CreatedBy:     actorID,
	}

	err := s.ledgerRepo.SaveTransaction(ctx, txn)
	if errors.Is(err, apperrors.ErrDuplicate) && kind == domain.KindExpense {
		logger.Debug("expense already posted, returning existing transaction",
			slog.String("accountID", req.AccountID), slog.String("lessonID", *req.LessonID))
		return s.ledgerRepo.FindExpenseForLesson(ctx, req.AccountID, *req.LessonID)
	}
	if err != nil {
		logger.Error("failed to save transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	logger.Info("transaction posted",
		slog.String("transactionID", txn.TransactionID),
		slog.String("accountID", txn.AccountID),
		slog.String("kind", string(txn.Kind)),
		slog.String("amount", txn.Amount.String()))
	return &txn, nil
}

// HasExpenseFor reports whether the account was already billed for the lesson.
func (s *ledgerService) HasExpenseFor(ctx context.Context, accountID, lessonID string) (bool, error) {
	return s.ledgerRepo.HasExpenseForLesson(ctx, accountID, lessonID)
}

// Recompute derives (balance, walletBalance) from the full transaction log.
func (s *ledgerService) Recompute(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	return s.ledgerRepo.RecomputeBalances(ctx, accountID)
}

// ListTransactions retrieves a page of the account's history, newest first.
func (s *ledgerService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > defaultTransactionPageSize {
		limit = defaultTransactionPageSize
	}

	txns, nextToken, err := s.ledgerRepo.ListTransactionsByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// ReconcileOne recomputes the account's balances from the log and overwrites
// the cached projection when it has drifted. The transaction log itself is
// never modified here.
func (s *ledgerService) ReconcileOne(ctx context.Context, accountID string, actorID string) (*dto.ReconcileResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	balance, wallet, err := s.ledgerRepo.RecomputeBalances(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute balances for account %s: %w", accountID, err)
	}

	result := &dto.ReconcileResult{
		AccountID:    accountID,
		OldBalance:   account.Balance,
		NewBalance:   balance,
		OldWallet:    account.WalletBalance,
		NewWallet:    wallet,
		BalanceDrift: balance.Sub(account.Balance),
	}

	balanceDrifted := account.Balance.Sub(balance).Abs().GreaterThan(driftEpsilon)
	walletDrifted := account.WalletBalance.Sub(wallet).Abs().GreaterThan(driftEpsilon)
	if !balanceDrifted && !walletDrifted {
		return result, nil
	}

	now := time.Now()
	if balanceDrifted {
		if err := s.accountRepo.UpdateCachedBalance(ctx, accountID, balance, false, actorID, now); err != nil {
			return nil, fmt.Errorf("failed to correct balance for account %s: %w", accountID, err)
		}
	}
	if walletDrifted {
		if err := s.accountRepo.UpdateCachedBalance(ctx, accountID, wallet, true, actorID, now); err != nil {
			return nil, fmt.Errorf("failed to correct wallet balance for account %s: %w", accountID, err)
		}
	}
	result.Corrected = true

	logger.Warn("corrected drifted balance projection",
		slog.String("accountID", accountID),
		slog.String("oldBalance", account.Balance.String()),
		slog.String("newBalance", balance.String()),
		slog.String("oldWallet", account.WalletBalance.String()),
		slog.String("newWallet", wallet.String()))
	return result, nil
}
