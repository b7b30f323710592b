package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

// RoundLifecycle is the lock toggle gating session mutations.
// Lock and Unlock are unconditional: empty rounds may be locked and
// finished rounds may be unlocked; business policy beyond that is the caller's.
type RoundLifecycle struct {
	now func() time.Time
}

// NewRoundLifecycle uses the wall clock for transition timestamps.
func NewRoundLifecycle() *RoundLifecycle {
	return &RoundLifecycle{now: func() time.Time { return time.Now().UTC() }}
}

// NewRoundLifecycleWithClock lets tests pin transition timestamps.
func NewRoundLifecycleWithClock(now func() time.Time) *RoundLifecycle {
	return &RoundLifecycle{now: now}
}

// State derives planning/locked/unlocked from the lock flags.
func (l *RoundLifecycle) State(round models.Round) models.RoundState {
	switch {
	case round.IsLocked:
		return models.RoundStateLocked
	case round.LockedAt != nil:
		return models.RoundStateUnlocked
	default:
		return models.RoundStatePlanning
	}
}

// CanMutate reports whether session edits are allowed.
func (l *RoundLifecycle) CanMutate(round models.Round) bool {
	return !round.IsLocked
}

// Guard returns ErrRoundLocked for locked rounds.
func (l *RoundLifecycle) Guard(round models.Round) error {
	if l.CanMutate(round) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrRoundLocked, fmt.Sprintf("round %s is locked; unlock it before changing sessions", round.ID))
}

// Lock returns a locked copy of the round.
func (l *RoundLifecycle) Lock(round models.Round) models.Round {
	now := l.now()
	round.IsLocked = true
	round.LockedAt = &now
	round.UpdatedAt = now
	return round
}

// Unlock returns an unlocked copy of the round, keeping its lock history.
// Unlocking a round that was never locked leaves it in planning.
func (l *RoundLifecycle) Unlock(round models.Round) models.Round {
	now := l.now()
	round.IsLocked = false
	round.UnlockedAt = &now
	round.UpdatedAt = now
	return round
}

// View attaches the derived state.
func (l *RoundLifecycle) View(round models.Round) models.RoundView {
	return models.RoundView{Round: round, State: l.State(round)}
}
