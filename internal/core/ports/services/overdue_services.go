package services

import (
	"context"
	"time"
)

// OverdueSweeperSvc transitions stale scheduled lessons to overdue.
type OverdueSweeperSvc interface {
	// Sweep moves every scheduled lesson starting before now to overdue and
	// returns the number transitioned. Idempotent; calls inside the sweeper's
	// single-flight window are no-ops returning 0.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
