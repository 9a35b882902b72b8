package services

import (
	"context"

	"github.com/plusprogress/schoolcore/internal/dto"
)

// ReconcilerSvc recomputes balance projections and repairs drift.
type ReconcilerSvc interface {
	// ReconcileAccount reconciles one account's cached balances.
	ReconcileAccount(ctx context.Context, accountID string, actorID string) (*dto.ReconcileResult, error)

	// ReconcileAll reconciles every account and backfills expense
	// transactions missing for attended enrollments.
	ReconcileAll(ctx context.Context, actorID string) (*dto.ReconcileSummary, error)
}
