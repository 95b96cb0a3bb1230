// Package digest holds the typed payloads, prompts and renderers of the daily
// digest jobs: local events, VR games, the TV guide and the shift SMS.
package digest

import (
	"fmt"
	"time"
)

// Dates formats one instant in the ways prompts and subjects need.
type Dates struct {
	now time.Time
}

// NewDates pins now to loc. A nil loc keeps now's own location.
func NewDates(now time.Time, loc *time.Location) Dates {
	if loc != nil {
		now = now.In(loc)
	}
	return Dates{now: now}
}

func (d Dates) Time() time.Time { return d.now }

// DayName is the weekday, e.g. "Friday".
func (d Dates) DayName() string { return d.now.Weekday().String() }

// Formatted is the British short date, e.g. "16/10/2026".
func (d Dates) Formatted() string { return d.now.Format("02/01/2006") }

// FullDate is e.g. "Friday, 16/10/2026".
func (d Dates) FullDate() string {
	return fmt.Sprintf("%s, %d/%d/%d", d.DayName(), d.now.Day(), int(d.now.Month()), d.now.Year())
}

// ISO is e.g. "2026-10-16".
func (d Dates) ISO() string { return d.now.Format("2006-01-02") }

// Human is e.g. "Friday 16 Oct".
func (d Dates) Human() string { return d.now.Format("Monday 2 Jan") }

func (d Dates) MonthName() string { return d.now.Month().String() }

func (d Dates) Year() int { return d.now.Year() }

func (d Dates) IsWeekend() bool {
	wd := d.now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Dates) AddDays(n int) Dates {
	return Dates{now: d.now.AddDate(0, 0, n)}
}
