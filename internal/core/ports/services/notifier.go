package services

import (
	"context"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// Notifier is the outbound notification sink. Implementations deliver
// fire-and-forget: they log and swallow failures, never propagate them, and
// must not block the caller beyond a local publish.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
