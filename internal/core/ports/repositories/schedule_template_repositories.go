package repositories

import (
	"context"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// ScheduleTemplateReader defines read operations for schedule templates
type ScheduleTemplateReader interface {
	// FindTemplateByID retrieves a template with its enrolled student IDs.
	FindTemplateByID(ctx context.Context, templateID string) (*domain.ScheduleTemplate, error)

	// ListActiveTemplates retrieves all active templates.
	ListActiveTemplates(ctx context.Context) ([]domain.ScheduleTemplate, error)
}

// ScheduleTemplateWriter defines write operations for schedule templates
type ScheduleTemplateWriter interface {
	// SaveTemplate inserts a template and its student list in one database
	// transaction.
	SaveTemplate(ctx context.Context, template domain.ScheduleTemplate) error

	// DeactivateTemplate marks a template inactive; it is never deleted.
	DeactivateTemplate(ctx context.Context, templateID string, updatedBy string) error
}

// ScheduleTemplateRepositoryFacade combines template repository interfaces
type ScheduleTemplateRepositoryFacade interface {
	ScheduleTemplateReader
	ScheduleTemplateWriter
}
