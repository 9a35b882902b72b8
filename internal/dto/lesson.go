package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

// BookEnrollmentRequest is one student line on a booked lesson. Cost and
// TeacherShare are optional overrides; individual pricing requires Cost.
type BookEnrollmentRequest struct {
	StudentID    string           `json:"studentID" binding:"required"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	DiscountPct  decimal.Decimal  `json:"discountPct"`
	TeacherShare *decimal.Decimal `json:"teacherShare,omitempty"`
}

// BookLessonRequest defines the payload for booking a lesson directly,
// outside the recurrence engine.
type BookLessonRequest struct {
	TeacherID          string                  `json:"teacherID" binding:"required"`
	SubjectID          string                  `json:"subjectID" binding:"required"`
	Date               time.Time               `json:"date" binding:"required" time_format:"2006-01-02"`
	StartTime          string                  `json:"startTime" binding:"required"`
	EndTime            string                  `json:"endTime" binding:"required"`
	PriceType          string                  `json:"priceType" binding:"required,pricetype"`
	BaseCost           decimal.Decimal         `json:"baseCost"`
	BaseTeacherPayment decimal.Decimal         `json:"baseTeacherPayment"`
	Enrollments        []BookEnrollmentRequest `json:"enrollments" binding:"required,min=1,dive"`
}

// RescheduleLessonRequest moves a lesson to a new slot.
type RescheduleLessonRequest struct {
	Date      time.Time `json:"date" binding:"required" time_format:"2006-01-02"`
	StartTime string    `json:"startTime" binding:"required"`
	EndTime   string    `json:"endTime" binding:"required"`
}

// MarkAttendanceRequest sets one enrollment's status ahead of completion.
type MarkAttendanceRequest struct {
	Status string `json:"status" binding:"required,oneof=registered attended absent"`
}

// CompleteLessonRequest names the enrollments the caller confirms attended.
// Enrollments already marked attended are billed regardless.
type CompleteLessonRequest struct {
	AttendedStudentIDs []string `json:"attendedStudentIDs"`
}

// CompleteLessonResult reports what completion actually did.
type CompleteLessonResult struct {
	LessonID         string          `json:"lessonID"`
	AlreadyCompleted bool            `json:"alreadyCompleted"`
	BilledStudents   []string        `json:"billedStudents"`
	SoftDebtStudents []string        `json:"softDebtStudents"`
	TeacherPayout    decimal.Decimal `json:"teacherPayout"`
}

// EnrollmentResponse defines the data returned for an enrollment.
type EnrollmentResponse struct {
	EnrollmentID string          `json:"enrollmentID"`
	StudentID    string          `json:"studentID"`
	Cost         decimal.Decimal `json:"cost"`
	DiscountPct  decimal.Decimal `json:"discountPct"`
	TeacherShare decimal.Decimal `json:"teacherShare"`
	Status       string          `json:"status"`
}

// LessonResponse defines the data returned for a lesson.
type LessonResponse struct {
	LessonID           string               `json:"lessonID"`
	TeacherID          string               `json:"teacherID"`
	SubjectID          string               `json:"subjectID"`
	Date               time.Time            `json:"date"`
	StartTime          string               `json:"startTime"`
	EndTime            string               `json:"endTime"`
	PriceType          string               `json:"priceType"`
	BaseCost           decimal.Decimal      `json:"baseCost"`
	BaseTeacherPayment decimal.Decimal      `json:"baseTeacherPayment"`
	Status             string               `json:"status"`
	TemplateID         *string              `json:"templateID,omitempty"`
	Enrollments        []EnrollmentResponse `json:"enrollments,omitempty"`
}

// ToEnrollmentResponse converts a domain.Enrollment to EnrollmentResponse DTO.
func ToEnrollmentResponse(e *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID: e.EnrollmentID,
		StudentID:    e.StudentID,
		Cost:         e.Cost,
		DiscountPct:  e.DiscountPct,
		TeacherShare: e.TeacherShare,
		Status:       string(e.Status),
	}
}

// ToLessonResponse converts a domain.Lesson plus enrollments to a LessonResponse DTO.
func ToLessonResponse(l *domain.Lesson, enrollments []domain.Enrollment) LessonResponse {
	resp := LessonResponse{
		LessonID:           l.LessonID,
		TeacherID:          l.TeacherID,
		SubjectID:          l.SubjectID,
		Date:               l.Date,
		StartTime:          l.StartTime,
		EndTime:            l.EndTime,
		PriceType:          string(l.PriceType),
		BaseCost:           l.BaseCost,
		BaseTeacherPayment: l.BaseTeacherPayment,
		Status:             string(l.Status),
		TemplateID:         l.TemplateID,
	}
	for i := range enrollments {
		resp.Enrollments = append(resp.Enrollments, ToEnrollmentResponse(&enrollments[i]))
	}
	return resp
}
