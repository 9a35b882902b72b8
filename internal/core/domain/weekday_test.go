package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

func TestWeekdayBit(t *testing.T) {
	testCases := []struct {
		day  time.Weekday
		want domain.Weekdays
	}{
		{time.Monday, domain.Monday},
		{time.Tuesday, domain.Tuesday},
		{time.Wednesday, domain.Wednesday},
		{time.Thursday, domain.Thursday},
		{time.Friday, domain.Friday},
		{time.Saturday, domain.Saturday},
		{time.Sunday, domain.Sunday},
	}

	for _, tc := range testCases {
		t.Run(tc.day.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, domain.WeekdayBit(tc.day))
		})
	}
}

func TestWeekdaysContains(t *testing.T) {
	mask := domain.Monday | domain.Wednesday | domain.Sunday

	assert.True(t, mask.Contains(time.Monday))
	assert.True(t, mask.Contains(time.Wednesday))
	assert.True(t, mask.Contains(time.Sunday))
	assert.False(t, mask.Contains(time.Tuesday))
	assert.False(t, mask.Contains(time.Saturday))
}

func TestWeekdaysIsZero(t *testing.T) {
	assert.True(t, domain.Weekdays(0).IsZero())
	assert.False(t, domain.Friday.IsZero())
}

func TestWeekdaysString(t *testing.T) {
	testCases := []struct {
		name string
		mask domain.Weekdays
		want string
	}{
		{"empty", domain.Weekdays(0), ""},
		{"single day", domain.Thursday, "thu"},
		{"ordered by calendar", domain.Sunday | domain.Monday | domain.Friday, "mon,fri,sun"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.mask.String())
		})
	}
}
