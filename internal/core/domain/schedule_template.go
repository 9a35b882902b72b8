package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepeatKind selects how a schedule template recurs.
type RepeatKind string

const (
	RepeatSingle   RepeatKind = "single"
	RepeatDaily    RepeatKind = "daily"
	RepeatWeekly   RepeatKind = "weekly"
	RepeatBiweekly RepeatKind = "biweekly"
	RepeatMonthly  RepeatKind = "monthly"
)

// ScheduleTemplate is a recurrence rule that, when expanded, produces a
// bounded series of concrete lessons with pending enrollments.
type ScheduleTemplate struct {
	TemplateID         string          `json:"templateID"`
	TeacherID          string          `json:"teacherID"`
	SubjectID          string          `json:"subjectID"`
	StartTime          string          `json:"startTime"`
	EndTime            string          `json:"endTime"`
	Repeat             RepeatKind      `json:"repeat"`
	Weekdays           Weekdays        `json:"weekdays"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            *time.Time      `json:"endDate,omitempty"`
	MaxOccurrences     *int            `json:"maxOccurrences,omitempty"`
	StudentIDs         []string        `json:"studentIDs"`
	PriceType          PriceType       `json:"priceType"`
	BaseCost           decimal.Decimal `json:"baseCost"`
	BaseTeacherPayment decimal.Decimal `json:"baseTeacherPayment"`
	IsActive           bool            `json:"isActive"`
	AuditFields
}

// Matches reports whether the candidate date is an occurrence of the
// template. The date and the template start date must both be midnight UTC.
func (t ScheduleTemplate) Matches(date time.Time) bool {
	switch t.Repeat {
	case RepeatSingle:
		return date.Equal(t.StartDate)
	case RepeatDaily:
		return true
	case RepeatWeekly:
		return t.Weekdays.Contains(date.Weekday())
	case RepeatBiweekly:
		if !t.Weekdays.Contains(date.Weekday()) {
			return false
		}
		weeks := int(date.Sub(t.StartDate).Hours()) / (24 * 7)
		return weeks%2 == 0
	case RepeatMonthly:
		return date.Day() == t.StartDate.Day()
	default:
		return false
	}
}
