package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

// maxWorkingDaySearch bounds the scan for the next working day.
const maxWorkingDaySearch = 3660

// CalendarService performs working-day arithmetic over an injected holiday table.
// It is immutable and safe for concurrent use.
type CalendarService struct {
	calendar *models.HolidayCalendar
}

// NewCalendarService wraps the holiday table. A nil table yields the weekends-only fallback.
func NewCalendarService(calendar *models.HolidayCalendar) *CalendarService {
	if calendar == nil {
		calendar = models.WeekendsOnlyCalendar()
	}
	return &CalendarService{calendar: calendar}
}

// WeekendsOnly returns the degraded service used when the holiday table does not cover a date.
func (s *CalendarService) WeekendsOnly() *CalendarService {
	return &CalendarService{calendar: models.WeekendsOnlyCalendar()}
}

// Degraded reports whether holidays are being ignored.
func (s *CalendarService) Degraded() bool {
	return s.calendar.Degraded()
}

// Version exposes the holiday table revision in use.
func (s *CalendarService) Version() string {
	return s.calendar.Version()
}

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrInvalidDate.Code, appErrors.ErrInvalidDate.Status, fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", raw))
	}
	return parsed, nil
}

// NormalizeDate strips the clock component, keeping the calendar date in UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWorkingDay is false for weekends and configured holidays.
func (s *CalendarService) IsWorkingDay(date time.Time) (bool, error) {
	date = NormalizeDate(date)
	if err := s.ensureCovered(date); err != nil {
		return false, err
	}
	return !models.IsWeekend(date) && !s.calendar.IsHoliday(date), nil
}

// NextWorkingDay returns the first working day strictly after date.
func (s *CalendarService) NextWorkingDay(date time.Time) (time.Time, error) {
	current := NormalizeDate(date)
	for i := 0; i < maxWorkingDaySearch; i++ {
		current = current.AddDate(0, 0, 1)
		ok, err := s.IsWorkingDay(current)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return current, nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrInvalidDate, fmt.Sprintf("no working day within %d days after %s", maxWorkingDaySearch, date.Format(models.DateLayout)))
}

// AddWorkingDays applies NextWorkingDay n times; n == 0 returns start unchanged.
func (s *CalendarService) AddWorkingDays(start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "working day count must not be negative")
	}
	current := NormalizeDate(start)
	if n == 0 {
		if err := s.ensureCovered(current); err != nil {
			return time.Time{}, err
		}
		return current, nil
	}
	for i := 0; i < n; i++ {
		next, err := s.NextWorkingDay(current)
		if err != nil {
			return time.Time{}, err
		}
		current = next
	}
	return current, nil
}

// HolidayName returns the configured holiday label for the date.
func (s *CalendarService) HolidayName(date time.Time) (string, bool) {
	return s.calendar.HolidayName(NormalizeDate(date))
}

func (s *CalendarService) ensureCovered(date time.Time) error {
	if s.calendar.Covers(date) {
		return nil
	}
	from, to := s.calendar.YearRange()
	return appErrors.Clone(appErrors.ErrInvalidDate, fmt.Sprintf("date %s outside holiday calendar %s (%d-%d)", date.Format(models.DateLayout), s.calendar.Version(), from, to))
}
