package pgsql

import (
	"context"
	"errors"
	"fmt"
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

type PgxScheduleTemplateRepository struct {
	BaseRepository
}

// newPgxScheduleTemplateRepository creates a new repository for schedule templates.
func newPgxScheduleTemplateRepository(pool *pgxpool.Pool) portsrepo.ScheduleTemplateRepositoryFacade {
	return &PgxScheduleTemplateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ScheduleTemplateRepositoryFacade = (*PgxScheduleTemplateRepository)(nil)

const templateColumns = `template_id, teacher_id, subject_id, start_time, end_time, repeat_kind, weekday_mask, start_date, end_date, max_occurrences, price_type, base_cost, base_teacher_payment, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanTemplate(row pgx.Row) (models.ScheduleTemplate, error) {
	var m models.ScheduleTemplate
	err := row.Scan(
		&m.TemplateID,
		&m.TeacherID,
		&m.SubjectID,
		&m.StartTime,
		&m.EndTime,
		&m.Repeat,
		&m.WeekdayMask,
		&m.StartDate,
		&m.EndDate,
		&m.MaxOccurrences,
		&m.PriceType,
		&m.BaseCost,
		&m.BaseTeacherPayment,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTemplate inserts a template and its student list in one database transaction.
func (r *PgxScheduleTemplateRepository) SaveTemplate(ctx context.Context, template domain.ScheduleTemplate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelScheduleTemplate(template)
	templateQuery := `
		INSERT INTO schedule_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, templateQuery,
		m.TemplateID,
		m.TeacherID,
		m.SubjectID,
		m.StartTime,
		m.EndTime,
		m.Repeat,
		m.WeekdayMask,
		m.StartDate,
		m.EndDate,
		m.MaxOccurrences,
		m.PriceType,
		m.BaseCost,
		m.BaseTeacherPayment,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: template with ID %s already exists", apperrors.ErrDuplicate, m.TemplateID)
		}
		return apperrors.NewAppError(500, "failed to insert template "+m.TemplateID, err)
	}

	batch := &pgx.Batch{}
	studentQuery := `INSERT INTO template_students (template_id, student_id) VALUES ($1, $2);`
	for _, studentID := range template.StudentIDs {
		batch.Queue(studentQuery, m.TemplateID, studentID)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert template students for "+m.TemplateID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindTemplateByID retrieves a template with its enrolled student IDs.
func (r *PgxScheduleTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.ScheduleTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM schedule_templates WHERE template_id = $1;`

	m, err := scanTemplate(r.Pool.QueryRow(ctx, query, templateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find template by ID "+templateID, err)
	}

	studentIDs, err := r.findStudentIDs(ctx, templateID)
	if err != nil {
		return nil, err
	}

	tpl := mapping.ToDomainScheduleTemplate(m, studentIDs)
	return &tpl, nil
}

// ListActiveTemplates retrieves all active templates with their student lists.
func (r *PgxScheduleTemplateRepository) ListActiveTemplates(ctx context.Context) ([]domain.ScheduleTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM schedule_templates WHERE is_active ORDER BY created_at, template_id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list active templates", err)
	}
	defer rows.Close()

	modelRows := []models.ScheduleTemplate{}
	for rows.Next() {
		m, err := scanTemplate(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan template row", err)
		}
		modelRows = append(modelRows, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating template rows", err)
	}

	templates := make([]domain.ScheduleTemplate, 0, len(modelRows))
	for _, m := range modelRows {
		studentIDs, err := r.findStudentIDs(ctx, m.TemplateID)
		if err != nil {
			return nil, err
		}
		templates = append(templates, mapping.ToDomainScheduleTemplate(m, studentIDs))
	}
	return templates, nil
}

// DeactivateTemplate marks a template inactive.
func (r *PgxScheduleTemplateRepository) DeactivateTemplate(ctx context.Context, templateID string, updatedBy string) error {
	query := `
		UPDATE schedule_templates SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE template_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, templateID, time.Now().UTC(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate template "+templateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxScheduleTemplateRepository) findStudentIDs(ctx context.Context, templateID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT student_id FROM template_students WHERE template_id = $1 ORDER BY student_id;`, templateID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query template students for "+templateID, err)
	}
	defer rows.Close()

	studentIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan template student row", err)
		}
		studentIDs = append(studentIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating template student rows", err)
	}
	return studentIDs, nil
}
