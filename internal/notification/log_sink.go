package notification

import (
	"context"
	"log/slog"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
)

// LogSink writes notification facts to the structured log. Used when no
// broker is configured (local development, operational commands).
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log-backed notification sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Ensure LogSink implements the portssvc.Notifier interface
var _ portssvc.Notifier = (*LogSink)(nil)

func (s *LogSink) Notify(_ context.Context, n domain.Notification) {
	s.logger.Info("notification",
		slog.String("kind", string(n.Kind)),
		slog.String("accountID", n.AccountID),
		slog.Any("payload", n.Payload))
}
