package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plusprogress/schoolcore/internal/apperrors"
	"github.com/plusprogress/schoolcore/internal/core/domain"
	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	"github.com/plusprogress/schoolcore/internal/models"
	"github.com/plusprogress/schoolcore/internal/utils/mapping"
)

type PgxLessonRepository struct {
	BaseRepository
}

// newPgxLessonRepository creates a new repository for lesson and enrollment data.
func newPgxLessonRepository(pool *pgxpool.Pool) portsrepo.LessonRepositoryFacade {
	return &PgxLessonRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LessonRepositoryFacade = (*PgxLessonRepository)(nil)

const lessonColumns = `lesson_id, teacher_id, subject_id, date, start_time, end_time, price_type, base_cost, base_teacher_payment, status, template_id, created_at, created_by, last_updated_at, last_updated_by`

const enrollmentColumns = `enrollment_id, lesson_id, student_id, cost, discount_pct, teacher_share, status, created_at, created_by, last_updated_at, last_updated_by`

func prefixedEnrollmentColumns(alias string) string {
	cols := strings.Split(enrollmentColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func scanLesson(row pgx.Row) (models.Lesson, error) {
	var m models.Lesson
	err := row.Scan(
		&m.LessonID,
		&m.TeacherID,
		&m.SubjectID,
		&m.Date,
		&m.StartTime,
		&m.EndTime,
		&m.PriceType,
		&m.BaseCost,
		&m.BaseTeacherPayment,
		&m.Status,
		&m.TemplateID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanEnrollment(row pgx.Row) (models.Enrollment, error) {
	var m models.Enrollment
	err := row.Scan(
		&m.EnrollmentID,
		&m.LessonID,
		&m.StudentID,
		&m.Cost,
		&m.DiscountPct,
		&m.TeacherShare,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateLessonWithEnrollments inserts a lesson and its enrollments in one
// database transaction. The unique index on (teacher_id, date, start_time)
// rejects slot collisions at the storage layer so concurrent expansions
// cannot race past an existence check.
func (r *PgxLessonRepository) CreateLessonWithEnrollments(ctx context.Context, lesson domain.Lesson, enrollments []domain.Enrollment) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelLesson(lesson)
	lessonQuery := `
		INSERT INTO lessons (` + lessonColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, lessonQuery,
		m.LessonID,
		m.TeacherID,
		m.SubjectID,
		m.Date,
		m.StartTime,
		m.EndTime,
		m.PriceType,
		m.BaseCost,
		m.BaseTeacherPayment,
		m.Status,
		m.TemplateID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: lesson slot (%s, %s, %s) already taken", apperrors.ErrDuplicate, m.TeacherID, m.Date.Format("2006-01-02"), m.StartTime)
		}
		return apperrors.NewAppError(500, "failed to insert lesson "+m.LessonID, err)
	}

	batch := &pgx.Batch{}
	enrollmentQuery := `
		INSERT INTO enrollments (` + enrollmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, e := range enrollments {
		me := mapping.ToModelEnrollment(e)
		batch.Queue(enrollmentQuery,
			me.EnrollmentID,
			me.LessonID,
			me.StudentID,
			me.Cost,
			me.DiscountPct,
			me.TeacherShare,
			me.Status,
			me.CreatedAt,
			me.CreatedBy,
			me.LastUpdatedAt,
			me.LastUpdatedBy,
		)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: duplicate enrollment on lesson %s", apperrors.ErrDuplicate, m.LessonID)
			}
			return apperrors.NewAppError(500, "failed to insert enrollments for lesson "+m.LessonID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindLessonByID retrieves a lesson by its ID.
func (r *PgxLessonRepository) FindLessonByID(ctx context.Context, lessonID string) (*domain.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE lesson_id = $1;`

	m, err := scanLesson(r.Pool.QueryRow(ctx, query, lessonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find lesson by ID "+lessonID, err)
	}

	lesson := mapping.ToDomainLesson(m)
	return &lesson, nil
}

// FindLessonsByTeacherAndRange retrieves a teacher's lessons between two dates inclusive.
func (r *PgxLessonRepository) FindLessonsByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]domain.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + ` FROM lessons
		WHERE teacher_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, start_time;
	`
	rows, err := r.Pool.Query(ctx, query, teacherID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lessons for teacher "+teacherID, err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

// FindLessonsStartingBetween retrieves scheduled lessons starting inside [from, to).
func (r *PgxLessonRepository) FindLessonsStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Lesson, error) {
	// start instant = date + start_time; both bounds computed the same way.
	query := `
		SELECT ` + lessonColumns + ` FROM lessons
		WHERE status = 'scheduled'
		  AND (date + start_time::time) >= $1
		  AND (date + start_time::time) < $2
		ORDER BY date, start_time;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query upcoming lessons", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

func collectLessons(rows pgx.Rows) ([]domain.Lesson, error) {
	lessons := []domain.Lesson{}
	for rows.Next() {
		m, err := scanLesson(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan lesson row", err)
		}
		lessons = append(lessons, mapping.ToDomainLesson(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating lesson rows", err)
	}
	return lessons, nil
}

// UpdateLessonStatus moves a lesson between statuses, guarded by the expected
// current status. A guard miss on an existing lesson means another caller
// already moved it, which is surfaced as ErrDuplicate so the caller can
// distinguish a lost race from a missing lesson.
func (r *PgxLessonRepository) UpdateLessonStatus(ctx context.Context, lessonID string, from, to domain.LessonStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE lessons SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE lesson_id = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, lessonID, string(from), string(to), updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of lesson "+lessonID, err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := r.Pool.QueryRow(ctx, `SELECT status FROM lessons WHERE lesson_id = $1;`, lessonID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return apperrors.NewAppError(500, "failed to read status of lesson "+lessonID, err)
		}
		return fmt.Errorf("%w: lesson %s is %s, expected %s", apperrors.ErrDuplicate, lessonID, current, from)
	}
	return nil
}

// MarkOverdueBefore transitions every scheduled lesson starting strictly
// before the cutoff to overdue. One statement, so repeated sweeps are
// naturally idempotent.
func (r *PgxLessonRepository) MarkOverdueBefore(ctx context.Context, cutoff time.Time, updatedBy string) (int, error) {
	day := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
	wallClock := cutoff.Format("15:04")

	query := `
		UPDATE lessons SET status = 'overdue', last_updated_at = $1, last_updated_by = $2
		WHERE status = 'scheduled'
		  AND (date < $3 OR (date = $3 AND start_time < $4));
	`
	tag, err := r.Pool.Exec(ctx, query, cutoff, updatedBy, day, wallClock)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to mark overdue lessons", err)
	}
	return int(tag.RowsAffected()), nil
}

// FindEnrollmentsByLessonID retrieves all enrollments on a lesson.
func (r *PgxLessonRepository) FindEnrollmentsByLessonID(ctx context.Context, lessonID string) ([]domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE lesson_id = $1 ORDER BY created_at, enrollment_id;`

	rows, err := r.Pool.Query(ctx, query, lessonID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query enrollments for lesson "+lessonID, err)
	}
	defer rows.Close()

	enrollments := []domain.Enrollment{}
	for rows.Next() {
		m, err := scanEnrollment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan enrollment row", err)
		}
		enrollments = append(enrollments, mapping.ToDomainEnrollment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating enrollment rows", err)
	}
	return enrollments, nil
}

// FindEnrollment retrieves the enrollment for a (lesson, student) pair.
func (r *PgxLessonRepository) FindEnrollment(ctx context.Context, lessonID, studentID string) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE lesson_id = $1 AND student_id = $2;`

	m, err := scanEnrollment(r.Pool.QueryRow(ctx, query, lessonID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find enrollment", err)
	}

	e := mapping.ToDomainEnrollment(m)
	return &e, nil
}

// UpdateEnrollmentStatus sets the status of one enrollment.
func (r *PgxLessonRepository) UpdateEnrollmentStatus(ctx context.Context, enrollmentID string, status domain.EnrollmentStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE enrollments SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE enrollment_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, enrollmentID, string(status), updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of enrollment "+enrollmentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateEnrollmentPricing overwrites cost and teacher share.
func (r *PgxLessonRepository) UpdateEnrollmentPricing(ctx context.Context, enrollmentID string, enrollment domain.Enrollment) error {
	query := `
		UPDATE enrollments SET cost = $2, discount_pct = $3, teacher_share = $4, last_updated_at = $5, last_updated_by = $6
		WHERE enrollment_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		enrollmentID,
		enrollment.Cost,
		enrollment.DiscountPct,
		enrollment.TeacherShare,
		enrollment.LastUpdatedAt,
		enrollment.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update pricing of enrollment "+enrollmentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
