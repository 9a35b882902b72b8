package services

import (
	"context"
	"time"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	"github.com/plusprogress/schoolcore/internal/dto"
)

// LessonBookingSvc defines booking and lifecycle operations on lessons
type LessonBookingSvc interface {
	// BookLesson creates a lesson with priced enrollments outside the
	// recurrence engine.
	BookLesson(ctx context.Context, req dto.BookLessonRequest, actorID string) (*domain.Lesson, error)

	// GetLesson retrieves a lesson with its enrollments.
	GetLesson(ctx context.Context, lessonID string) (*domain.Lesson, []domain.Enrollment, error)

	// CancelLesson moves a scheduled or overdue lesson to cancelled.
	CancelLesson(ctx context.Context, lessonID string, actorID string) error

	// RescheduleLesson books a new lesson at the given slot with the same
	// pricing and re-registered enrollments, and marks the old one rescheduled.
	RescheduleLesson(ctx context.Context, lessonID string, req dto.RescheduleLessonRequest, actorID string) (*domain.Lesson, error)

	// MarkAttendance sets one enrollment's status ahead of completion.
	MarkAttendance(ctx context.Context, lessonID, studentID string, status domain.EnrollmentStatus, actorID string) error
}

// LessonCompletionSvc defines the billing workflow on completion
type LessonCompletionSvc interface {
	// CompleteLesson transitions the lesson to completed and bills every
	// attended enrollment: students with sufficient balance are debited,
	// the rest become soft debts, and the teacher payout is always advanced.
	// Idempotent; re-invocation never re-posts transactions.
	CompleteLesson(ctx context.Context, lessonID string, req dto.CompleteLessonRequest, actorID string) (*dto.CompleteLessonResult, error)
}

// LessonReminderSvc emits reminder notifications for upcoming lessons
type LessonReminderSvc interface {
	// SendLessonReminders notifies enrolled students and teachers of lessons
	// starting within [now, now+window). Returns the number of lessons covered.
	SendLessonReminders(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

// BillingSvcFacade combines all attendance-billing service interfaces
type BillingSvcFacade interface {
	LessonBookingSvc
	LessonCompletionSvc
	LessonReminderSvc
}
