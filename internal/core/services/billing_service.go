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
	"github.com/plusprogress/schoolcore/internal/utils/pricing"
)

// billingService owns the lesson lifecycle and the money movement tied to
// attendance. Completion is the only place expenses and payouts are created.
type billingService struct {
	lessonRepo  portsrepo.LessonRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerSvc   portssvc.LedgerSvcFacade
	notifier    portssvc.Notifier
}

// NewBillingService creates a new BillingService.
func NewBillingService(lessonRepo portsrepo.LessonRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade, notifier portssvc.Notifier) portssvc.BillingSvcFacade {
	return &billingService{
		lessonRepo:  lessonRepo,
		accountRepo: accountRepo,
		ledgerSvc:   ledgerSvc,
		notifier:    notifier,
	}
}

// Ensure billingService implements the portssvc.BillingSvcFacade interface
var _ portssvc.BillingSvcFacade = (*billingService)(nil)

// BookLesson creates a lesson with priced enrollments outside the recurrence
// engine. The slot uniqueness constraint surfaces a taken (teacher, date,
// startTime) slot as apperrors.ErrDuplicate.
func (s *billingService) BookLesson(ctx context.Context, req dto.BookLessonRequest, actorID string) (*domain.Lesson, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	lesson := domain.Lesson{
		LessonID:           uuid.NewString(),
		TeacherID:          req.TeacherID,
		SubjectID:          req.SubjectID,
		Date:               midnightUTC(req.Date),
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		PriceType:          domain.PriceType(req.PriceType),
		BaseCost:           req.BaseCost,
		BaseTeacherPayment: req.BaseTeacherPayment,
		Status:             domain.LessonScheduled,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	enrollments, err := buildEnrollments(lesson, req.Enrollments, actorID, now)
	if err != nil {
		return nil, err
	}

	if err := s.lessonRepo.CreateLessonWithEnrollments(ctx, lesson, enrollments); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	for _, e := range enrollments {
		s.notifier.Notify(ctx, domain.Notification{
			AccountID: e.StudentID,
			Kind:      domain.NotifyEnrollmentCreated,
			Payload: map[string]string{
				"lessonID":  lesson.LessonID,
				"date":      lesson.Date.Format("2006-01-02"),
				"startTime": lesson.StartTime,
			},
			CreatedAt: now,
		})
	}

	logger.Info("lesson booked",
		slog.String("lessonID", lesson.LessonID),
		slog.String("teacherID", lesson.TeacherID),
		slog.Int("enrollments", len(enrollments)))
	return &lesson, nil
}

// buildEnrollments prices and materializes the enrollment rows for a new lesson.
func buildEnrollments(lesson domain.Lesson, reqs []dto.BookEnrollmentRequest, actorID string, now time.Time) ([]domain.Enrollment, error) {
	enrollments := make([]domain.Enrollment, 0, len(reqs))
	for _, er := range reqs {
		e := domain.Enrollment{
			EnrollmentID: uuid.NewString(),
			LessonID:     lesson.LessonID,
			StudentID:    er.StudentID,
			DiscountPct:  er.DiscountPct,
			Status:       domain.EnrollmentRegistered,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if er.Cost != nil {
			e.Cost = *er.Cost
		}
		if er.TeacherShare != nil {
			e.TeacherShare = *er.TeacherShare
		}

		cost, share, err := pricing.PriceEnrollment(lesson, e, len(reqs))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		e.Cost = cost
		e.TeacherShare = share
		enrollments = append(enrollments, e)
	}
	return enrollments, nil
}

// GetLesson retrieves a lesson with its enrollments.
func (s *billingService) GetLesson(ctx context.Context, lessonID string) (*domain.Lesson, []domain.Enrollment, error) {
	lesson, err := s.lessonRepo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, nil, err
	}
	enrollments, err := s.lessonRepo.FindEnrollmentsByLessonID(ctx, lessonID)
	if err != nil {
		return nil, nil, err
	}
	return lesson, enrollments, nil
}

// CancelLesson moves a scheduled or overdue lesson to cancelled. Cancelled
// lessons are never billed.
func (s *billingService) CancelLesson(ctx context.Context, lessonID string, actorID string) error {
	lesson, err := s.lessonRepo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if !lesson.Status.CanTransitionTo(domain.LessonCancelled) {
		return fmt.Errorf("%w: cannot cancel lesson in status %s", apperrors.ErrValidation, lesson.Status)
	}
	return s.lessonRepo.UpdateLessonStatus(ctx, lessonID, lesson.Status, domain.LessonCancelled, actorID, time.Now())
}

// RescheduleLesson books a fresh lesson at the new slot carrying the same
// pricing and re-registered enrollments, then marks the old one rescheduled.
// The old lesson stays in history; nothing is mutated in place.
func (s *billingService) RescheduleLesson(ctx context.Context, lessonID string, req dto.RescheduleLessonRequest, actorID string) (*domain.Lesson, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	lesson, err := s.lessonRepo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !lesson.Status.CanTransitionTo(domain.LessonRescheduled) {
		return nil, fmt.Errorf("%w: cannot reschedule lesson in status %s", apperrors.ErrValidation, lesson.Status)
	}
	enrollments, err := s.lessonRepo.FindEnrollmentsByLessonID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	replacement := *lesson
	replacement.LessonID = uuid.NewString()
	replacement.Date = midnightUTC(req.Date)
	replacement.StartTime = req.StartTime
	replacement.EndTime = req.EndTime
	replacement.Status = domain.LessonScheduled
	replacement.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	moved := make([]domain.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		e.EnrollmentID = uuid.NewString()
		e.LessonID = replacement.LessonID
		e.Status = domain.EnrollmentRegistered
		e.AuditFields = replacement.AuditFields
		moved = append(moved, e)
	}

	if err := s.lessonRepo.CreateLessonWithEnrollments(ctx, replacement, moved); err != nil {
		return nil, fmt.Errorf("failed to create replacement lesson: %w", err)
	}
	if err := s.lessonRepo.UpdateLessonStatus(ctx, lessonID, lesson.Status, domain.LessonRescheduled, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to mark lesson rescheduled: %w", err)
	}

	logger.Info("lesson rescheduled",
		slog.String("oldLessonID", lessonID),
		slog.String("newLessonID", replacement.LessonID))
	return &replacement, nil
}

// MarkAttendance sets one enrollment's status ahead of completion.
func (s *billingService) MarkAttendance(ctx context.Context, lessonID, studentID string, status domain.EnrollmentStatus, actorID string) error {
	lesson, err := s.lessonRepo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson.Status != domain.LessonScheduled && lesson.Status != domain.LessonOverdue {
		return fmt.Errorf("%w: attendance is frozen once lesson is %s", apperrors.ErrValidation, lesson.Status)
	}
	enrollment, err := s.lessonRepo.FindEnrollment(ctx, lessonID, studentID)
	if err != nil {
		return err
	}
	return s.lessonRepo.UpdateEnrollmentStatus(ctx, enrollment.EnrollmentID, status, actorID, time.Now())
}

// CompleteLesson transitions the lesson to completed and settles the money.
// The status transition guard is the idempotency gate: a lesson that is
// already completed returns its existing outcome and posts nothing, and the
// expense uniqueness constraint backstops any partial re-run.
//
// Students whose balance covers their cost are debited. The rest stay marked
// attended with no expense posted and an insufficient-funds notification goes
// out: attendance is recorded as owed, not blocked. The teacher payout is
// posted for every attended enrollment either way.
func (s *billingService) CompleteLesson(ctx context.Context, lessonID string, req dto.CompleteLessonRequest, actorID string) (*dto.CompleteLessonResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	lesson, err := s.lessonRepo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Status == domain.LessonCompleted {
		return s.completedOutcome(ctx, lesson)
	}
	if !lesson.Status.CanTransitionTo(domain.LessonCompleted) {
		return nil, fmt.Errorf("%w: cannot complete lesson in status %s", apperrors.ErrValidation, lesson.Status)
	}

	enrollments, err := s.lessonRepo.FindEnrollmentsByLessonID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	confirmed := make(map[string]bool, len(req.AttendedStudentIDs))
	for _, id := range req.AttendedStudentIDs {
		confirmed[id] = true
	}
	for i, e := range enrollments {
		if e.Status != domain.EnrollmentRegistered {
			continue
		}
		target := domain.EnrollmentAbsent
		if confirmed[e.StudentID] {
			target = domain.EnrollmentAttended
		}
		if err := s.lessonRepo.UpdateEnrollmentStatus(ctx, e.EnrollmentID, target, actorID, now); err != nil {
			return nil, fmt.Errorf("failed to update enrollment %s: %w", e.EnrollmentID, err)
		}
		enrollments[i].Status = target
	}

	// Transition first so a concurrent or repeated call cannot double-post.
	if err := s.lessonRepo.UpdateLessonStatus(ctx, lessonID, lesson.Status, domain.LessonCompleted, actorID, now); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race: another caller moved the lesson. If it completed,
			// hand back its outcome; anything else is a rejected transition.
			current, findErr := s.lessonRepo.FindLessonByID(ctx, lessonID)
			if findErr != nil {
				return nil, findErr
			}
			if current.Status == domain.LessonCompleted {
				return s.completedOutcome(ctx, current)
			}
			return nil, fmt.Errorf("%w: cannot complete lesson in status %s", apperrors.ErrValidation, current.Status)
		}
		return nil, fmt.Errorf("failed to complete lesson %s: %w", lessonID, err)
	}

	attended := make([]domain.Enrollment, 0, len(enrollments))
	studentIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status == domain.EnrollmentAttended {
			attended = append(attended, e)
			studentIDs = append(studentIDs, e.StudentID)
		}
	}

	result := &dto.CompleteLessonResult{LessonID: lessonID, TeacherPayout: decimal.Zero}
	if len(attended) == 0 {
		return result, nil
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load student accounts: %w", err)
	}

	payout := decimal.Zero
	for _, e := range attended {
		payout = payout.Add(e.TeacherShare)

		account, ok := accounts[e.StudentID]
		if !ok {
			return nil, fmt.Errorf("%w: student account %s", apperrors.ErrNotFound, e.StudentID)
		}
		if account.Balance.LessThan(e.Cost) {
			result.SoftDebtStudents = append(result.SoftDebtStudents, e.StudentID)
			s.notifier.Notify(ctx, domain.Notification{
				AccountID: e.StudentID,
				Kind:      domain.NotifyInsufficientFunds,
				Payload: map[string]string{
					"lessonID": lessonID,
					"cost":     e.Cost.String(),
					"balance":  account.Balance.String(),
				},
				CreatedAt: now,
			})
			continue
		}

		if _, err := s.ledgerSvc.Post(ctx, dto.PostTransactionRequest{
			AccountID:   e.StudentID,
			Amount:      e.Cost,
			Kind:        string(domain.KindExpense),
			Description: fmt.Sprintf("lesson %s on %s", lessonID, lesson.Date.Format("2006-01-02")),
			LessonID:    &lessonID,
		}, actorID); err != nil {
			return nil, fmt.Errorf("failed to bill student %s: %w", e.StudentID, err)
		}
		result.BilledStudents = append(result.BilledStudents, e.StudentID)
	}

	if payout.IsPositive() {
		if _, err := s.ledgerSvc.Post(ctx, dto.PostTransactionRequest{
			AccountID:   lesson.TeacherID,
			Amount:      payout,
			Kind:        string(domain.KindTeacherPayout),
			Description: fmt.Sprintf("payout for lesson %s", lessonID),
			LessonID:    &lessonID,
		}, actorID); err != nil {
			return nil, fmt.Errorf("failed to post teacher payout: %w", err)
		}
	}
	result.TeacherPayout = payout

	s.notifier.Notify(ctx, domain.Notification{
		AccountID: lesson.TeacherID,
		Kind:      domain.NotifyLessonCompleted,
		Payload: map[string]string{
			"lessonID": lessonID,
			"payout":   payout.String(),
			"attended": fmt.Sprintf("%d", len(attended)),
		},
		CreatedAt: now,
	})

	logger.Info("lesson completed",
		slog.String("lessonID", lessonID),
		slog.Int("billed", len(result.BilledStudents)),
		slog.Int("softDebts", len(result.SoftDebtStudents)),
		slog.String("teacherPayout", payout.String()))
	return result, nil
}

// completedOutcome rebuilds the completion result for an already-completed
// lesson from stored state, so repeated calls are pure reads.
func (s *billingService) completedOutcome(ctx context.Context, lesson *domain.Lesson) (*dto.CompleteLessonResult, error) {
	enrollments, err := s.lessonRepo.FindEnrollmentsByLessonID(ctx, lesson.LessonID)
	if err != nil {
		return nil, err
	}
	result := &dto.CompleteLessonResult{
		LessonID:         lesson.LessonID,
		AlreadyCompleted: true,
		TeacherPayout:    decimal.Zero,
	}
	for _, e := range enrollments {
		if e.Status != domain.EnrollmentAttended {
			continue
		}
		result.TeacherPayout = result.TeacherPayout.Add(e.TeacherShare)
		billed, err := s.ledgerSvc.HasExpenseFor(ctx, e.StudentID, lesson.LessonID)
		if err != nil {
			return nil, err
		}
		if billed {
			result.BilledStudents = append(result.BilledStudents, e.StudentID)
		} else {
			result.SoftDebtStudents = append(result.SoftDebtStudents, e.StudentID)
		}
	}
	return result, nil
}

// SendLessonReminders notifies enrolled students and teachers of lessons
// starting within [now, now+window). Returns the number of lessons covered.
func (s *billingService) SendLessonReminders(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	lessons, err := s.lessonRepo.FindLessonsStartingBetween(ctx, now, now.Add(window))
	if err != nil {
		return 0, fmt.Errorf("failed to find upcoming lessons: %w", err)
	}

	for _, lesson := range lessons {
		payload := map[string]string{
			"lessonID":  lesson.LessonID,
			"date":      lesson.Date.Format("2006-01-02"),
			"startTime": lesson.StartTime,
		}
		enrollments, err := s.lessonRepo.FindEnrollmentsByLessonID(ctx, lesson.LessonID)
		if err != nil {
			return 0, err
		}
		for _, e := range enrollments {
			if e.Status == domain.EnrollmentAbsent {
				continue
			}
			s.notifier.Notify(ctx, domain.Notification{
				AccountID: e.StudentID,
				Kind:      domain.NotifyLessonReminder,
				Payload:   payload,
				CreatedAt: now,
			})
		}
		s.notifier.Notify(ctx, domain.Notification{
			AccountID: lesson.TeacherID,
			Kind:      domain.NotifyLessonReminder,
			Payload:   payload,
			CreatedAt: now,
		})
	}
	return len(lessons), nil
}

// midnightUTC truncates an instant to its calendar day in UTC.
func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
