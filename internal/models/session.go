package models

import "time"

// SessionStatus tracks the delivery state of a session.
type SessionStatus string

const (
	SessionStatusScheduled   SessionStatus = "scheduled"
	SessionStatusInProgress  SessionStatus = "in_progress"
	SessionStatusCompleted   SessionStatus = "completed"
	SessionStatusCancelled   SessionStatus = "cancelled"
	SessionStatusRescheduled SessionStatus = "rescheduled"
)

// Valid reports whether the status is one of the known values.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusInProgress, SessionStatusCompleted, SessionStatusCancelled, SessionStatusRescheduled:
		return true
	default:
		return false
	}
}

// Session is one meeting of a round occupying [StartTime, EndTime) on Date.
type Session struct {
	ID           string        `db:"id" json:"id"`
	RoundID      string        `db:"round_id" json:"round_id"`
	DayNumber    int           `db:"day_number" json:"day_number"`
	Date         time.Time     `db:"session_date" json:"date"`
	StartTime    TimeOfDay     `db:"start_time" json:"start_time"`
	EndTime      TimeOfDay     `db:"end_time" json:"end_time"`
	ClassroomID  string        `db:"classroom_id" json:"classroom_id,omitempty"`
	InstructorID string        `db:"instructor_id" json:"instructor_id,omitempty"`
	SubjectID    string        `db:"subject_id" json:"subject_id"`
	Status       SessionStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// Cancelled reports whether the session is excluded from resource checks.
func (s Session) Cancelled() bool {
	return s.Status == SessionStatusCancelled
}

// Start returns the absolute start instant of the session.
func (s Session) Start() time.Time {
	return s.StartTime.On(s.Date)
}

// End returns the absolute (exclusive) end instant of the session.
func (s Session) End() time.Time {
	return s.EndTime.On(s.Date)
}

// SameDate reports whether both sessions fall on the same calendar day.
func (s Session) SameDate(other Session) bool {
	y1, m1, d1 := s.Date.Date()
	y2, m2, d2 := other.Date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
