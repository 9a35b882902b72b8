package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceType and LessonStatus mirror the domain enums for DB storage.
type (
	PriceType    string
	LessonStatus string
)

// Lesson is the DB row for a concrete lesson instance. A unique index on
// (teacher_id, date, start_time) prevents double-booking a slot.
type Lesson struct {
	LessonID           string          `db:"lesson_id"`
	TeacherID          string          `db:"teacher_id"`
	SubjectID          string          `db:"subject_id"`
	Date               time.Time       `db:"date"`
	StartTime          string          `db:"start_time"`
	EndTime            string          `db:"end_time"`
	PriceType          PriceType       `db:"price_type"`
	BaseCost           decimal.Decimal `db:"base_cost"`
	BaseTeacherPayment decimal.Decimal `db:"base_teacher_payment"`
	Status             LessonStatus    `db:"status"`
	TemplateID         *string         `db:"template_id"`
	AuditFields
}
