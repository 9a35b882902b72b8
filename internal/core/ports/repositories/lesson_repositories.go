package repositories

import (
	"context"
	"time"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// LessonReader defines read operations for lesson data
type LessonReader interface {
	// FindLessonByID retrieves a lesson by its unique identifier.
	FindLessonByID(ctx context.Context, lessonID string) (*domain.Lesson, error)

	// FindLessonsByTeacherAndRange retrieves a teacher's lessons between two
	// dates inclusive, ordered by date then start time.
	FindLessonsByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]domain.Lesson, error)

	// FindLessonsStartingBetween retrieves scheduled lessons whose start falls
	// inside the half-open window [from, to). Used for reminders.
	FindLessonsStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Lesson, error)
}

// LessonWriter defines write operations for lesson data
type LessonWriter interface {
	// CreateLessonWithEnrollments inserts a lesson and its enrollments in one
	// database transaction. The unique index on (teacher_id, date, start_time)
	// surfaces slot collisions as apperrors.ErrDuplicate.
	CreateLessonWithEnrollments(ctx context.Context, lesson domain.Lesson, enrollments []domain.Enrollment) error

	// UpdateLessonStatus moves a lesson to a new status, guarded by the
	// expected current status. Returns ErrNotFound when the lesson does not
	// exist and ErrDuplicate when it exists but another caller already moved
	// it past the expected status.
	UpdateLessonStatus(ctx context.Context, lessonID string, from, to domain.LessonStatus, updatedBy string, updatedAt time.Time) error

	// MarkOverdueBefore transitions every scheduled lesson starting strictly
	// before the cutoff to overdue and returns the number of rows changed.
	MarkOverdueBefore(ctx context.Context, cutoff time.Time, updatedBy string) (int, error)
}

// EnrollmentReader defines read operations for enrollment data
type EnrollmentReader interface {
	// FindEnrollmentsByLessonID retrieves all enrollments on a lesson.
	FindEnrollmentsByLessonID(ctx context.Context, lessonID string) ([]domain.Enrollment, error)

	// FindEnrollment retrieves the enrollment for a (lesson, student) pair.
	FindEnrollment(ctx context.Context, lessonID, studentID string) (*domain.Enrollment, error)
}

// EnrollmentWriter defines write operations for enrollment data
type EnrollmentWriter interface {
	// UpdateEnrollmentStatus sets the status of one enrollment.
	UpdateEnrollmentStatus(ctx context.Context, enrollmentID string, status domain.EnrollmentStatus, updatedBy string, updatedAt time.Time) error

	// UpdateEnrollmentPricing overwrites cost and teacher share before
	// completion; repricing a billed enrollment is a caller error.
	UpdateEnrollmentPricing(ctx context.Context, enrollmentID string, enrollment domain.Enrollment) error
}

// LessonRepositoryFacade combines lesson and enrollment repository interfaces
type LessonRepositoryFacade interface {
	LessonReader
	LessonWriter
	EnrollmentReader
	EnrollmentWriter
}
