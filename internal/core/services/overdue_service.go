package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/middleware"
)

// sweeperActor is the audit identity stamped on sweeper transitions.
const sweeperActor = "system:overdue-sweeper"

// overdueService transitions stale scheduled lessons to overdue.
type overdueService struct {
	lessonRepo  portsrepo.LessonRepositoryFacade
	minInterval time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

// NewOverdueService creates a new OverdueService. minInterval is the
// single-flight window: sweeps requested inside it are no-ops.
func NewOverdueService(lessonRepo portsrepo.LessonRepositoryFacade, minInterval time.Duration) portssvc.OverdueSweeperSvc {
	return &overdueService{
		lessonRepo:  lessonRepo,
		minInterval: minInterval,
	}
}

// Ensure overdueService implements the portssvc.OverdueSweeperSvc interface
var _ portssvc.OverdueSweeperSvc = (*overdueService)(nil)

// Sweep moves every scheduled lesson starting strictly before now to overdue
// and returns the number transitioned. The transition itself is idempotent in
// storage; the last-run guard only keeps hot-path callers from hammering the
// table between ticks.
func (s *overdueService) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	if s.minInterval > 0 && now.Sub(s.lastRun) < s.minInterval {
		s.mu.Unlock()
		return 0, nil
	}
	s.lastRun = now
	s.mu.Unlock()

	count, err := s.lessonRepo.MarkOverdueBefore(ctx, now, sweeperActor)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue lessons: %w", err)
	}
	if count > 0 {
		middleware.GetLoggerFromCtx(ctx).Info("marked lessons overdue",
			slog.Int("count", count),
			slog.Time("cutoff", now))
	}
	return count, nil
}

// RunSweeper drives the sweeper on a fixed interval until the context is
// cancelled. Intended as a background goroutine started from main. A
// non-positive interval disables the loop instead of panicking the ticker.
func RunSweeper(ctx context.Context, sweeper portssvc.OverdueSweeperSvc, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		logger.Warn("overdue sweeper disabled", slog.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("overdue sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("overdue sweeper stopped")
			return
		case now := <-ticker.C:
			if _, err := sweeper.Sweep(ctx, now.UTC()); err != nil {
				logger.Error("overdue sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
