package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler/internal/models"
)

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := ParseDate(raw)
	require.NoError(t, err)
	return parsed
}

func clock(t *testing.T, raw string) models.TimeOfDay {
	t.Helper()
	parsed, err := models.ParseTimeOfDay(raw)
	require.NoError(t, err)
	return parsed
}

type sessionOpt func(*models.Session)

func withInstructor(id string) sessionOpt {
	return func(s *models.Session) { s.InstructorID = id }
}

func withClassroom(id string) sessionOpt {
	return func(s *models.Session) { s.ClassroomID = id }
}

func withStatus(status models.SessionStatus) sessionOpt {
	return func(s *models.Session) { s.Status = status }
}

func withRound(id string) sessionOpt {
	return func(s *models.Session) { s.RoundID = id }
}

func withSubject(id string) sessionOpt {
	return func(s *models.Session) { s.SubjectID = id }
}

func withDayNumber(n int) sessionOpt {
	return func(s *models.Session) { s.DayNumber = n }
}

func newSession(t *testing.T, id, date, start, end string, opts ...sessionOpt) models.Session {
	t.Helper()
	s := models.Session{
		ID:        id,
		RoundID:   "round-1",
		Date:      day(t, date),
		StartTime: clock(t, start),
		EndTime:   clock(t, end),
		SubjectID: "subject-1",
		Status:    models.SessionStatusScheduled,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// septemberHolidays marks the 2025-09-06..08 weekend-plus-holiday run.
func septemberHolidays() *models.HolidayCalendar {
	return models.NewHolidayCalendar("test-2025", 2025, 2025, map[string]string{
		"2025-09-06": "Holiday",
		"2025-09-07": "Holiday",
		"2025-09-08": "Holiday",
	})
}

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int) *int { return &v }
