package domain

import (
	"strings"
	"time"
)

// Weekdays is a bitmask over the days of the week, bit 0 = Monday through
// bit 6 = Sunday.
type Weekdays uint8

const (
	Monday Weekdays = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayBit maps a time.Weekday to its mask bit.
func WeekdayBit(d time.Weekday) Weekdays {
	// time.Weekday counts Sunday as 0; the mask counts Monday as bit 0.
	if d == time.Sunday {
		return Sunday
	}
	return 1 << (uint(d) - 1)
}

// Contains reports whether the mask includes the given calendar day.
func (w Weekdays) Contains(d time.Weekday) bool {
	return w&WeekdayBit(d) != 0
}

// IsZero reports whether no day is set.
func (w Weekdays) IsZero() bool {
	return w == 0
}

var weekdayNames = []struct {
	bit  Weekdays
	name string
}{
	{Monday, "mon"},
	{Tuesday, "tue"},
	{Wednesday, "wed"},
	{Thursday, "thu"},
	{Friday, "fri"},
	{Saturday, "sat"},
	{Sunday, "sun"},
}

func (w Weekdays) String() string {
	parts := make([]string, 0, 7)
	for _, d := range weekdayNames {
		if w&d.bit != 0 {
			parts = append(parts, d.name)
		}
	}
	return strings.Join(parts, ",")
}
