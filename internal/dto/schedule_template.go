package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// CreateTemplateRequest defines the payload for creating a recurrence template.
// Weekdays are lowercase three-letter names (mon..sun); required for weekly and
// biweekly templates.
type CreateTemplateRequest struct {
	TeacherID          string          `json:"teacherID" binding:"required"`
	SubjectID          string          `json:"subjectID" binding:"required"`
	StartTime          string          `json:"startTime" binding:"required"`
	EndTime            string          `json:"endTime" binding:"required"`
	Repeat             string          `json:"repeat" binding:"required,repeatkind"`
	Weekdays           []string        `json:"weekdays,omitempty" binding:"omitempty,dive,oneof=mon tue wed thu fri sat sun"`
	StartDate          time.Time       `json:"startDate" binding:"required" time_format:"2006-01-02"`
	EndDate            *time.Time      `json:"endDate,omitempty" time_format:"2006-01-02"`
	MaxOccurrences     *int            `json:"maxOccurrences,omitempty" binding:"omitempty,min=1"`
	StudentIDs         []string        `json:"studentIDs" binding:"required,min=1"`
	PriceType          string          `json:"priceType" binding:"required,pricetype"`
	BaseCost           decimal.Decimal `json:"baseCost"`
	BaseTeacherPayment decimal.Decimal `json:"baseTeacherPayment"`
}

// WeekdayMask converts the request's weekday names to the domain bitmask.
func (r CreateTemplateRequest) WeekdayMask() domain.Weekdays {
	var mask domain.Weekdays
	for _, name := range r.Weekdays {
		switch name {
		case "mon":
			mask |= domain.Monday
		case "tue":
			mask |= domain.Tuesday
		case "wed":
			mask |= domain.Wednesday
		case "thu":
			mask |= domain.Thursday
		case "fri":
			mask |= domain.Friday
		case "sat":
			mask |= domain.Saturday
		case "sun":
			mask |= domain.Sunday
		}
	}
	return mask
}

// TemplateResponse defines the data returned for a schedule template.
type TemplateResponse struct {
	TemplateID         string          `json:"templateID"`
	TeacherID          string          `json:"teacherID"`
	SubjectID          string          `json:"subjectID"`
	StartTime          string          `json:"startTime"`
	EndTime            string          `json:"endTime"`
	Repeat             string          `json:"repeat"`
	Weekdays           string          `json:"weekdays"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            *time.Time      `json:"endDate,omitempty"`
	MaxOccurrences     *int            `json:"maxOccurrences,omitempty"`
	StudentIDs         []string        `json:"studentIDs"`
	PriceType          string          `json:"priceType"`
	BaseCost           decimal.Decimal `json:"baseCost"`
	BaseTeacherPayment decimal.Decimal `json:"baseTeacherPayment"`
	IsActive           bool            `json:"isActive"`
}

// ExpandResult reports one expansion run over a template.
type ExpandResult struct {
	TemplateID    string           `json:"templateID"`
	Created       []LessonResponse `json:"created"`
	Skipped       int              `json:"skipped"`
	LimitExceeded bool             `json:"limitExceeded"`
}

// ToTemplateResponse converts a domain.ScheduleTemplate to TemplateResponse DTO.
func ToTemplateResponse(t *domain.ScheduleTemplate) TemplateResponse {
	return TemplateResponse{
		TemplateID:         t.TemplateID,
		TeacherID:          t.TeacherID,
		SubjectID:          t.SubjectID,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		Repeat:             string(t.Repeat),
		Weekdays:           t.Weekdays.String(),
		StartDate:          t.StartDate,
		EndDate:            t.EndDate,
		MaxOccurrences:     t.MaxOccurrences,
		StudentIDs:         t.StudentIDs,
		PriceType:          string(t.PriceType),
		BaseCost:           t.BaseCost,
		BaseTeacherPayment: t.BaseTeacherPayment,
		IsActive:           t.IsActive,
	}
}
