package mapping

import (
	"github.com/plusprogress/schoolcore/internal/core/domain"
	"github.com/plusprogress/schoolcore/internal/models"
)

// ToModelLesson converts a domain Lesson to a model Lesson
func ToModelLesson(d domain.Lesson) models.Lesson {
	return models.Lesson{
		LessonID:           d.LessonID,
		TeacherID:          d.TeacherID,
		SubjectID:          d.SubjectID,
		Date:               d.Date,
		StartTime:          d.StartTime,
		EndTime:            d.EndTime,
		PriceType:          models.PriceType(d.PriceType),
		BaseCost:           d.BaseCost,
		BaseTeacherPayment: d.BaseTeacherPayment,
		Status:             models.LessonStatus(d.Status),
		TemplateID:         d.TemplateID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLesson converts a model Lesson to a domain Lesson
func ToDomainLesson(m models.Lesson) domain.Lesson {
	return domain.Lesson{
		LessonID:           m.LessonID,
		TeacherID:          m.TeacherID,
		SubjectID:          m.SubjectID,
		Date:               m.Date,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		PriceType:          domain.PriceType(m.PriceType),
		BaseCost:           m.BaseCost,
		BaseTeacherPayment: m.BaseTeacherPayment,
		Status:             domain.LessonStatus(m.Status),
		TemplateID:         m.TemplateID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEnrollment converts a domain Enrollment to a model Enrollment
func ToModelEnrollment(d domain.Enrollment) models.Enrollment {
	return models.Enrollment{
		EnrollmentID: d.EnrollmentID,
		LessonID:     d.LessonID,
		StudentID:    d.StudentID,
		Cost:         d.Cost,
		DiscountPct:  d.DiscountPct,
		TeacherShare: d.TeacherShare,
		Status:       models.EnrollmentStatus(d.Status),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEnrollment converts a model Enrollment to a domain Enrollment
func ToDomainEnrollment(m models.Enrollment) domain.Enrollment {
	return domain.Enrollment{
		EnrollmentID: m.EnrollmentID,
		LessonID:     m.LessonID,
		StudentID:    m.StudentID,
		Cost:         m.Cost,
		DiscountPct:  m.DiscountPct,
		TeacherShare: m.TeacherShare,
		Status:       domain.EnrollmentStatus(m.Status),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
