package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepeatKind mirrors domain.RepeatKind for DB storage.
type RepeatKind string

// ScheduleTemplate is the DB row for a recurrence rule. Enrolled students are
// kept in the template_students join table.
type ScheduleTemplate struct {
	TemplateID         string          `db:"template_id"`
	TeacherID          string          `db:"teacher_id"`
	SubjectID          string          `db:"subject_id"`
	StartTime          string          `db:"start_time"`
	EndTime            string          `db:"end_time"`
	Repeat             RepeatKind      `db:"repeat_kind"`
	WeekdayMask        int16           `db:"weekday_mask"`
	StartDate          time.Time       `db:"start_date"`
	EndDate            *time.Time      `db:"end_date"`
	MaxOccurrences     *int            `db:"max_occurrences"`
	PriceType          PriceType       `db:"price_type"`
	BaseCost           decimal.Decimal `db:"base_cost"`
	BaseTeacherPayment decimal.Decimal `db:"base_teacher_payment"`
	IsActive           bool            `db:"is_active"`
	AuditFields
}
