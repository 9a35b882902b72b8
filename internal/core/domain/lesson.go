package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceType selects how per-student cost is derived from the lesson.
type PriceType string

const (
	// PriceFixed splits BaseCost evenly between the enrolled students.
	PriceFixed PriceType = "fixed"
	// PricePerStudent charges BaseCost to every enrolled student.
	PricePerStudent PriceType = "per_student"
	// PriceIndividual requires an explicit cost per enrollment.
	PriceIndividual PriceType = "individual"
)

// LessonStatus is the lesson lifecycle state.
type LessonStatus string

const (
	LessonScheduled   LessonStatus = "scheduled"
	LessonCompleted   LessonStatus = "completed"
	LessonCancelled   LessonStatus = "cancelled"
	LessonOverdue     LessonStatus = "overdue"
	LessonRescheduled LessonStatus = "rescheduled"
)

// CanTransitionTo reports whether a lesson may move from its current status
// to the target one. Lessons only ever move forward out of scheduled (or
// overdue, which is still completable); terminal states never change.
func (s LessonStatus) CanTransitionTo(target LessonStatus) bool {
	switch s {
	case LessonScheduled:
		return target == LessonCompleted || target == LessonCancelled ||
			target == LessonOverdue || target == LessonRescheduled
	case LessonOverdue:
		return target == LessonCompleted || target == LessonCancelled
	default:
		return false
	}
}

// Lesson is a concrete bookable lesson instance. Lessons are created by the
// recurrence engine or booked directly, mutated through status transitions
// only, and never deleted so history stays auditable.
type Lesson struct {
	LessonID           string          `json:"lessonID"`
	TeacherID          string          `json:"teacherID"`
	SubjectID          string          `json:"subjectID"`
	Date               time.Time       `json:"date"` // calendar day, midnight UTC
	StartTime          string          `json:"startTime"`
	EndTime            string          `json:"endTime"`
	PriceType          PriceType       `json:"priceType"`
	BaseCost           decimal.Decimal `json:"baseCost"`
	BaseTeacherPayment decimal.Decimal `json:"baseTeacherPayment"`
	Status             LessonStatus    `json:"status"`
	TemplateID         *string         `json:"templateID,omitempty"`
	AuditFields
}

// StartsBefore reports whether the lesson's scheduled start is strictly
// earlier than the given instant. StartTime is an "HH:MM" wall-clock string;
// string comparison orders it correctly.
func (l Lesson) StartsBefore(now time.Time) bool {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	lessonDay := time.Date(l.Date.Year(), l.Date.Month(), l.Date.Day(), 0, 0, 0, 0, time.UTC)
	if lessonDay.Before(day) {
		return true
	}
	if lessonDay.After(day) {
		return false
	}
	return l.StartTime < now.Format("15:04")
}
