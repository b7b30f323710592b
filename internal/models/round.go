package models

import "time"

// RoundState is the lifecycle phase of a round derived from its lock history.
type RoundState string

const (
	RoundStatePlanning RoundState = "planning"
	RoundStateLocked   RoundState = "locked"
	RoundStateUnlocked RoundState = "unlocked"
)

// Round is a single offering of a course holding an ordered set of sessions.
type Round struct {
	ID         string     `db:"id" json:"id"`
	CourseID   string     `db:"course_id" json:"course_id"`
	Name       string     `db:"name" json:"name"`
	StartDate  time.Time  `db:"start_date" json:"start_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsLocked   bool       `db:"is_locked" json:"is_locked"`
	LockedAt   *time.Time `db:"locked_at" json:"locked_at,omitempty"`
	UnlockedAt *time.Time `db:"unlocked_at" json:"unlocked_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	Sessions   []Session  `db:"-" json:"sessions,omitempty"`
}

// RoundView decorates a round with its derived lifecycle state.
type RoundView struct {
	Round
	State RoundState `json:"state"`
}
