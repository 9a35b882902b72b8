package domain

import "github.com/shopspring/decimal"

// EnrollmentStatus is the per-student state on a lesson.
type EnrollmentStatus string

const (
	EnrollmentRegistered EnrollmentStatus = "registered"
	EnrollmentAttended   EnrollmentStatus = "attended"
	EnrollmentAbsent     EnrollmentStatus = "absent"
	EnrollmentDebt       EnrollmentStatus = "debt"
)

// Enrollment is a student's line item on a lesson, carrying its own price and
// teacher payout share. Unique per (lesson, student).
type Enrollment struct {
	EnrollmentID string           `json:"enrollmentID"`
	LessonID     string           `json:"lessonID"`
	StudentID    string           `json:"studentID"`
	Cost         decimal.Decimal  `json:"cost"`
	DiscountPct  decimal.Decimal  `json:"discountPct"`
	TeacherShare decimal.Decimal  `json:"teacherShare"`
	Status       EnrollmentStatus `json:"status"`
	AuditFields
}
