package services

import (
	"context"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	"github.com/plusprogress/schoolcore/internal/dto"
)

// TemplateSvc defines CRUD-lite operations on schedule templates
type TemplateSvc interface {
	// CreateTemplate registers a recurrence template.
	CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest, creatorID string) (*domain.ScheduleTemplate, error)

	// GetTemplate retrieves a template by ID.
	GetTemplate(ctx context.Context, templateID string) (*domain.ScheduleTemplate, error)

	// DeactivateTemplate stops future expansions of a template.
	DeactivateTemplate(ctx context.Context, templateID string, actorID string) error
}

// RecurrenceExpanderSvc expands templates into concrete lessons
type RecurrenceExpanderSvc interface {
	// Expand generates the lessons a template prescribes. Safe to re-run:
	// existing slots are skipped, the iteration is hard-capped, and a partial
	// result with LimitExceeded set is a warning, not a failure.
	Expand(ctx context.Context, templateID string, actorID string) (*dto.ExpandResult, error)

	// ExpandAll expands every active template and sums the results.
	ExpandAll(ctx context.Context, actorID string) ([]dto.ExpandResult, error)
}

// RecurrenceSvcFacade combines all recurrence service interfaces
type RecurrenceSvcFacade interface {
	TemplateSvc
	RecurrenceExpanderSvc
}
