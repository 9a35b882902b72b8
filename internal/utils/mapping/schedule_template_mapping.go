package mapping

import (
	"github.com/plusprogress/schoolcore/internal/core/domain"
	"github.com/plusprogress/schoolcore/internal/models"
)

// ToModelScheduleTemplate converts a domain ScheduleTemplate to a model row.
// Enrolled students live in the template_students join table and are handled
// by the repository.
func ToModelScheduleTemplate(d domain.ScheduleTemplate) models.ScheduleTemplate {
	return models.ScheduleTemplate{
		TemplateID:         d.TemplateID,
		TeacherID:          d.TeacherID,
		SubjectID:          d.SubjectID,
		StartTime:          d.StartTime,
		EndTime:            d.EndTime,
		Repeat:             models.RepeatKind(d.Repeat),
		WeekdayMask:        int16(d.Weekdays),
		StartDate:          d.StartDate,
		EndDate:            d.EndDate,
		MaxOccurrences:     d.MaxOccurrences,
		PriceType:          models.PriceType(d.PriceType),
		BaseCost:           d.BaseCost,
		BaseTeacherPayment: d.BaseTeacherPayment,
		IsActive:           d.IsActive,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainScheduleTemplate converts a model row to a domain ScheduleTemplate.
func ToDomainScheduleTemplate(m models.ScheduleTemplate, studentIDs []string) domain.ScheduleTemplate {
	return domain.ScheduleTemplate{
		TemplateID:         m.TemplateID,
		TeacherID:          m.TeacherID,
		SubjectID:          m.SubjectID,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		Repeat:             domain.RepeatKind(m.Repeat),
		Weekdays:           domain.Weekdays(m.WeekdayMask),
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
		MaxOccurrences:     m.MaxOccurrences,
		StudentIDs:         studentIDs,
		PriceType:          domain.PriceType(m.PriceType),
		BaseCost:           m.BaseCost,
		BaseTeacherPayment: m.BaseTeacherPayment,
		IsActive:           m.IsActive,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}
