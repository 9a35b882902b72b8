package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

func TestLessonStatusCanTransitionTo(t *testing.T) {
	testCases := []struct {
		name    string
		from    domain.LessonStatus
		to      domain.LessonStatus
		allowed bool
	}{
		{"scheduled to completed", domain.LessonScheduled, domain.LessonCompleted, true},
		{"scheduled to cancelled", domain.LessonScheduled, domain.LessonCancelled, true},
		{"scheduled to overdue", domain.LessonScheduled, domain.LessonOverdue, true},
		{"scheduled to rescheduled", domain.LessonScheduled, domain.LessonRescheduled, true},
		{"overdue to completed", domain.LessonOverdue, domain.LessonCompleted, true},
		{"overdue to cancelled", domain.LessonOverdue, domain.LessonCancelled, true},
		{"overdue to rescheduled", domain.LessonOverdue, domain.LessonRescheduled, false},
		{"completed is terminal", domain.LessonCompleted, domain.LessonCancelled, false},
		{"cancelled is terminal", domain.LessonCancelled, domain.LessonCompleted, false},
		{"rescheduled is terminal", domain.LessonRescheduled, domain.LessonScheduled, false},
		{"no self transition", domain.LessonScheduled, domain.LessonScheduled, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestLessonStartsBefore(t *testing.T) {
	lesson := domain.Lesson{
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
	}

	testCases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"previous day", time.Date(2026, 2, 9, 23, 59, 0, 0, time.UTC), false},
		{"same day before start", time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC), false},
		{"exactly at start", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), false},
		{"same day after start", time.Date(2026, 2, 10, 9, 5, 0, 0, time.UTC), true},
		{"next day", time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, lesson.StartsBefore(tc.now))
		})
	}
}
