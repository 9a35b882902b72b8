package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/dto"
	"github.com/plusprogress/schoolcore/internal/middleware"
)

// reconcileService repairs drift between the transaction log and the cached
// balance projections, and backfills expenses missing for attended
// enrollments. It never mutates the transaction log beyond appending.
type reconcileService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	lessonRepo  portsrepo.LessonRepositoryFacade
	ledgerSvc   portssvc.LedgerSvcFacade
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, lessonRepo portsrepo.LessonRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.ReconcilerSvc {
	return &reconcileService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		lessonRepo:  lessonRepo,
		ledgerSvc:   ledgerSvc,
	}
}

// Ensure reconcileService implements the portssvc.ReconcilerSvc interface
var _ portssvc.ReconcilerSvc = (*reconcileService)(nil)

// ReconcileAccount reconciles one account's cached balances.
func (s *reconcileService) ReconcileAccount(ctx context.Context, accountID string, actorID string) (*dto.ReconcileResult, error) {
	return s.ledgerSvc.ReconcileOne(ctx, accountID, actorID)
}

// ReconcileAll runs every account through reconciliation and then backfills
// expense transactions for attended enrollments that were never billed.
// Backfill happens first so the subsequent balance pass sees the repaired log.
func (s *reconcileService) ReconcileAll(ctx context.Context, actorID string) (*dto.ReconcileSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	summary := &dto.ReconcileSummary{}

	unbilled, err := s.ledgerRepo.FindUnbilledAttendances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find unbilled attendances: %w", err)
	}
	for _, e := range unbilled {
		lessonID := e.LessonID
		lesson, err := s.lessonRepo.FindLessonByID(ctx, lessonID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lesson %s for backfill: %w", lessonID, err)
		}
		// Only completed lessons are billable; attendance marked early or on
		// a lesson that was later cancelled is not drift.
		if lesson.Status != domain.LessonCompleted {
			logger.Warn("skipping backfill for non-completed lesson",
				slog.String("lessonID", lessonID),
				slog.String("status", string(lesson.Status)))
			continue
		}
		if _, err := s.ledgerSvc.Post(ctx, dto.PostTransactionRequest{
			AccountID:   e.StudentID,
			Amount:      e.Cost,
			Kind:        string(domain.KindExpense),
			Description: fmt.Sprintf("reconciliation backfill for lesson %s", lessonID),
			LessonID:    &lessonID,
		}, actorID); err != nil {
			return nil, fmt.Errorf("failed to backfill expense for enrollment %s: %w", e.EnrollmentID, err)
		}
		summary.ExpensesBackfilled++
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, account := range accounts {
		result, err := s.ledgerSvc.ReconcileOne(ctx, account.AccountID, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.AccountID, err)
		}
		summary.AccountsChecked++
		if !result.BalanceDrift.IsZero() || !result.NewWallet.Equal(result.OldWallet) {
			summary.MismatchesFound++
		}
		if result.Corrected {
			summary.MismatchesCorrected++
		}
	}

	logger.Info("reconciliation run finished",
		slog.Int("accountsChecked", summary.AccountsChecked),
		slog.Int("mismatchesFound", summary.MismatchesFound),
		slog.Int("mismatchesCorrected", summary.MismatchesCorrected),
		slog.Int("expensesBackfilled", summary.ExpensesBackfilled))
	return summary, nil
}
