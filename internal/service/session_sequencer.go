package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

// SessionSequencer reorders a round's sessions and cascades their dates.
// Inputs are never mutated; every call returns a fresh slice.
type SessionSequencer struct {
	calendar *CalendarService
}

// NewSessionSequencer binds the sequencer to a calendar.
func NewSessionSequencer(calendar *CalendarService) *SessionSequencer {
	if calendar == nil {
		calendar = NewCalendarService(nil)
	}
	return &SessionSequencer{calendar: calendar}
}

// WithCalendar returns a sequencer using a different calendar, e.g. the degraded fallback.
func (s *SessionSequencer) WithCalendar(calendar *CalendarService) *SessionSequencer {
	return NewSessionSequencer(calendar)
}

// Calendar exposes the calendar backing date recalculation.
func (s *SessionSequencer) Calendar() *CalendarService {
	return s.calendar
}

// Ordered returns a copy sorted by day number, ties broken by id.
func Ordered(sessions []models.Session) []models.Session {
	out := make([]models.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Renumber assigns dense 1-based day numbers following the slice order.
func Renumber(sessions []models.Session) []models.Session {
	out := make([]models.Session, len(sessions))
	copy(out, sessions)
	for i := range out {
		out[i].DayNumber = i + 1
	}
	return out
}

// Reorder moves the session with movedID to toIndex (0-based) and renumbers the sequence.
func (s *SessionSequencer) Reorder(sessions []models.Session, movedID string, toIndex int) ([]models.Session, error) {
	ordered := Ordered(sessions)
	from := -1
	for i, session := range ordered {
		if session.ID == movedID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session %s is not part of the sequence", movedID))
	}
	if toIndex < 0 || toIndex >= len(ordered) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("target index %d out of range [0,%d)", toIndex, len(ordered)))
	}

	moved := ordered[from]
	rest := append(ordered[:from:from], ordered[from+1:]...)
	result := make([]models.Session, 0, len(ordered))
	result = append(result, rest[:toIndex]...)
	result = append(result, moved)
	result = append(result, rest[toIndex:]...)
	return Renumber(result), nil
}

// RecalculateDates keeps the anchor for the first session and moves every
// following session to the next working day after its predecessor.
// The anchor itself must fall inside the holiday table.
func (s *SessionSequencer) RecalculateDates(sessions []models.Session, anchor time.Time) ([]models.Session, error) {
	ordered := Ordered(sessions)
	if len(ordered) == 0 {
		return ordered, nil
	}
	current := NormalizeDate(anchor)
	if _, err := s.calendar.IsWorkingDay(current); err != nil {
		return nil, err
	}
	for i := range ordered {
		if i > 0 {
			next, err := s.calendar.NextWorkingDay(current)
			if err != nil {
				return nil, err
			}
			current = next
		}
		ordered[i].Date = current
	}
	return ordered, nil
}

// Diff lists sessions from after whose date or day number differ from before.
// Sessions unknown to before are always included.
func Diff(before, after []models.Session) []models.Session {
	index := make(map[string]models.Session, len(before))
	for _, s := range before {
		index[s.ID] = s
	}
	changed := make([]models.Session, 0)
	for _, s := range after {
		prev, ok := index[s.ID]
		if !ok || prev.DayNumber != s.DayNumber || !prev.SameDate(s) {
			changed = append(changed, s)
		}
	}
	return changed
}
