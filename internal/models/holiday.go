package models

import (
	"sort"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used across the API.
const DateLayout = "2006-01-02"

// HolidayCalendar is an immutable set of non-working dates plus the weekend rule.
// A zero FromYear/ToYear means the table places no bound on supported years.
type HolidayCalendar struct {
	version  string
	fromYear int
	toYear   int
	holidays map[string]string
	degraded bool
}

// NewHolidayCalendar copies the provided dates (ISO date -> label) into a calendar.
// When fromYear/toYear are zero the covered range is derived from the dates.
func NewHolidayCalendar(version string, fromYear, toYear int, dates map[string]string) *HolidayCalendar {
	holidays := make(map[string]string, len(dates))
	for day, label := range dates {
		holidays[day] = label
	}
	if fromYear == 0 && toYear == 0 && len(holidays) > 0 {
		for day := range holidays {
			parsed, err := time.Parse(DateLayout, day)
			if err != nil {
				continue
			}
			if fromYear == 0 || parsed.Year() < fromYear {
				fromYear = parsed.Year()
			}
			if parsed.Year() > toYear {
				toYear = parsed.Year()
			}
		}
	}
	return &HolidayCalendar{version: version, fromYear: fromYear, toYear: toYear, holidays: holidays}
}

// WeekendsOnlyCalendar is the explicit degraded table: no holidays, every year supported.
func WeekendsOnlyCalendar() *HolidayCalendar {
	return &HolidayCalendar{version: "weekends-only", holidays: map[string]string{}, degraded: true}
}

// Version labels the holiday table revision.
func (c *HolidayCalendar) Version() string { return c.version }

// Degraded reports whether the calendar is the weekends-only fallback.
func (c *HolidayCalendar) Degraded() bool { return c.degraded }

// YearRange returns the covered years; zeros mean unbounded.
func (c *HolidayCalendar) YearRange() (int, int) { return c.fromYear, c.toYear }

// Covers reports whether the table is authoritative for the date's year.
func (c *HolidayCalendar) Covers(date time.Time) bool {
	if c.fromYear == 0 && c.toYear == 0 {
		return true
	}
	year := date.Year()
	return year >= c.fromYear && year <= c.toYear
}

// IsHoliday reports whether the date is a configured holiday.
func (c *HolidayCalendar) IsHoliday(date time.Time) bool {
	_, ok := c.holidays[date.Format(DateLayout)]
	return ok
}

// HolidayName returns the label configured for the date, if any.
func (c *HolidayCalendar) HolidayName(date time.Time) (string, bool) {
	name, ok := c.holidays[date.Format(DateLayout)]
	return name, ok
}

// IsWeekend applies the Saturday/Sunday rule.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Dates lists the configured holidays in ascending order.
func (c *HolidayCalendar) Dates() []string {
	out := make([]string, 0, len(c.holidays))
	for day := range c.holidays {
		out = append(out, day)
	}
	sort.Strings(out)
	return out
}
