package models

import "github.com/shopspring/decimal"

// EnrollmentStatus mirrors domain.EnrollmentStatus for DB storage.
type EnrollmentStatus string

// Enrollment is the per-student line item on a lesson, unique per
// (lesson_id, student_id).
type Enrollment struct {
	EnrollmentID string           `db:"enrollment_id"`
	LessonID     string           `db:"lesson_id"`
	StudentID    string           `db:"student_id"`
	Cost         decimal.Decimal  `db:"cost"`
	DiscountPct  decimal.Decimal  `db:"discount_pct"`
	TeacherShare decimal.Decimal  `db:"teacher_share"`
	Status       EnrollmentStatus `db:"status"`
	AuditFields
}
