package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/plusprogress/schoolcore/internal/apperrors"
	"github.com/plusprogress/schoolcore/internal/core/domain"
	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/dto"
	"github.com/plusprogress/schoolcore/internal/middleware"
	"github.com/plusprogress/schoolcore/internal/utils/pricing"
)

const (
	// defaultExpansionHorizonDays bounds how far past the start date an
	// open-ended template is expanded.
	defaultExpansionHorizonDays = 90
	// defaultMaxOccurrences applies when the template sets no explicit cap.
	defaultMaxOccurrences = 20
	// maxExpansionIterations is the hard cap on candidate dates examined in
	// one run. Hitting it yields a partial result, never an error.
	maxExpansionIterations = 500
)

// recurrenceService expands schedule templates into concrete lessons.
type recurrenceService struct {
	templateRepo portsrepo.ScheduleTemplateRepositoryFacade
	lessonRepo   portsrepo.LessonRepositoryFacade
}

// NewRecurrenceService creates a new RecurrenceService.
func NewRecurrenceService(templateRepo portsrepo.ScheduleTemplateRepositoryFacade, lessonRepo portsrepo.LessonRepositoryFacade) portssvc.RecurrenceSvcFacade {
	return &recurrenceService{
		templateRepo: templateRepo,
		lessonRepo:   lessonRepo,
	}
}

// Ensure recurrenceService implements the portssvc.RecurrenceSvcFacade interface
var _ portssvc.RecurrenceSvcFacade = (*recurrenceService)(nil)

// CreateTemplate registers a recurrence template.
func (s *recurrenceService) CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest, creatorID string) (*domain.ScheduleTemplate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	repeat := domain.RepeatKind(req.Repeat)
	weekdays := req.WeekdayMask()
	if (repeat == domain.RepeatWeekly || repeat == domain.RepeatBiweekly) && weekdays.IsZero() {
		return nil, fmt.Errorf("%w: %s templates require at least one weekday", apperrors.ErrValidation, repeat)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}
	if req.StartTime >= req.EndTime {
		return nil, fmt.Errorf("%w: start time must precede end time", apperrors.ErrValidation)
	}
	if domain.PriceType(req.PriceType) == domain.PriceIndividual {
		return nil, fmt.Errorf("%w: individual pricing needs per-student costs, book those lessons directly", apperrors.ErrValidation)
	}

	now := time.Now()
	template := domain.ScheduleTemplate{
		TemplateID:         uuid.NewString(),
		TeacherID:          req.TeacherID,
		SubjectID:          req.SubjectID,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Repeat:             repeat,
		Weekdays:           weekdays,
		StartDate:          midnightUTC(req.StartDate),
		MaxOccurrences:     req.MaxOccurrences,
		StudentIDs:         req.StudentIDs,
		PriceType:          domain.PriceType(req.PriceType),
		BaseCost:           req.BaseCost,
		BaseTeacherPayment: req.BaseTeacherPayment,
		IsActive:           true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}
	if req.EndDate != nil {
		end := midnightUTC(*req.EndDate)
		template.EndDate = &end
	}

	if err := s.templateRepo.SaveTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	logger.Info("schedule template created",
		slog.String("templateID", template.TemplateID),
		slog.String("repeat", string(template.Repeat)),
		slog.Int("students", len(template.StudentIDs)))
	return &template, nil
}

// GetTemplate retrieves a template by ID.
func (s *recurrenceService) GetTemplate(ctx context.Context, templateID string) (*domain.ScheduleTemplate, error) {
	return s.templateRepo.FindTemplateByID(ctx, templateID)
}

// DeactivateTemplate stops future expansions of a template.
func (s *recurrenceService) DeactivateTemplate(ctx context.Context, templateID string, actorID string) error {
	return s.templateRepo.DeactivateTemplate(ctx, templateID, actorID)
}

// Expand walks candidate dates from the template start and books a lesson
// with registered enrollments on each matching date. Safe to re-run: slots
// already taken are counted as skipped, not errors, and the walk stops at the
// occurrence cap, the horizon, or the hard iteration cap, whichever first.
func (s *recurrenceService) Expand(ctx context.Context, templateID string, actorID string) (*dto.ExpandResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	template, err := s.templateRepo.FindTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsActive {
		return nil, fmt.Errorf("%w: template %s is inactive", apperrors.ErrValidation, templateID)
	}

	maxOccurrences := defaultMaxOccurrences
	if template.MaxOccurrences != nil {
		maxOccurrences = *template.MaxOccurrences
	}
	// An explicit end date bounds the walk on its own; the default horizon
	// only keeps open-ended templates finite.
	horizon := template.StartDate.AddDate(0, 0, defaultExpansionHorizonDays)
	if template.EndDate != nil {
		horizon = *template.EndDate
	}

	result := &dto.ExpandResult{TemplateID: templateID}
	occurrences := 0
	now := time.Now()

	date := template.StartDate
	for i := 0; ; i++ {
		if i >= maxExpansionIterations {
			result.LimitExceeded = true
			logger.Warn("expansion hit iteration cap",
				slog.String("templateID", templateID),
				slog.Int("created", len(result.Created)))
			break
		}
		if date.After(horizon) || occurrences >= maxOccurrences {
			break
		}
		if !template.Matches(date) {
			date = date.AddDate(0, 0, 1)
			continue
		}
		occurrences++

		lesson, enrollments, err := s.materializeLesson(*template, date, actorID, now)
		if err != nil {
			return nil, err
		}
		err = s.lessonRepo.CreateLessonWithEnrollments(ctx, lesson, enrollments)
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			result.Skipped++
		case err != nil:
			return nil, fmt.Errorf("failed to create lesson for %s: %w", date.Format("2006-01-02"), err)
		default:
			result.Created = append(result.Created, dto.ToLessonResponse(&lesson, enrollments))
		}

		if template.Repeat == domain.RepeatSingle {
			break
		}
		date = date.AddDate(0, 0, 1)
	}

	logger.Info("template expanded",
		slog.String("templateID", templateID),
		slog.Int("created", len(result.Created)),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// materializeLesson builds one lesson instance plus its priced enrollments
// from the template for the given date.
func (s *recurrenceService) materializeLesson(template domain.ScheduleTemplate, date time.Time, actorID string, now time.Time) (domain.Lesson, []domain.Enrollment, error) {
	lesson := domain.Lesson{
		LessonID:           uuid.NewString(),
		TeacherID:          template.TeacherID,
		SubjectID:          template.SubjectID,
		Date:               date,
		StartTime:          template.StartTime,
		EndTime:            template.EndTime,
		PriceType:          template.PriceType,
		BaseCost:           template.BaseCost,
		BaseTeacherPayment: template.BaseTeacherPayment,
		Status:             domain.LessonScheduled,
		TemplateID:         &template.TemplateID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	enrollments := make([]domain.Enrollment, 0, len(template.StudentIDs))
	for _, studentID := range template.StudentIDs {
		e := domain.Enrollment{
			EnrollmentID: uuid.NewString(),
			LessonID:     lesson.LessonID,
			StudentID:    studentID,
			Status:       domain.EnrollmentRegistered,
			AuditFields:  lesson.AuditFields,
		}
		cost, share, err := pricing.PriceEnrollment(lesson, e, len(template.StudentIDs))
		if err != nil {
			return domain.Lesson{}, nil, fmt.Errorf("%w: template %s: %s", apperrors.ErrValidation, template.TemplateID, err.Error())
		}
		e.Cost = cost
		e.TeacherShare = share
		enrollments = append(enrollments, e)
	}
	return lesson, enrollments, nil
}

// ExpandAll expands every active template; one failing template aborts the run.
func (s *recurrenceService) ExpandAll(ctx context.Context, actorID string) ([]dto.ExpandResult, error) {
	templates, err := s.templateRepo.ListActiveTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active templates: %w", err)
	}
	results := make([]dto.ExpandResult, 0, len(templates))
	for _, t := range templates {
		result, err := s.Expand(ctx, t.TemplateID, actorID)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}
