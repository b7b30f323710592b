package service

import (
	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

// ResourceSelector names the resource dimensions to check; empty ids are skipped.
type ResourceSelector struct {
	InstructorID string
	ClassroomID  string
	CohortID     string
}

// SelectorFor checks the instructor and classroom a session is already bound to.
func SelectorFor(session models.Session) ResourceSelector {
	return ResourceSelector{InstructorID: session.InstructorID, ClassroomID: session.ClassroomID}
}

// WithCohort additionally checks trainee double-booking within the candidate's round.
func (r ResourceSelector) WithCohort(roundID string) ResourceSelector {
	r.CohortID = roundID
	return r
}

// ConflictDetector finds half-open interval overlaps on shared resources.
// It holds no state; results depend only on the arguments.
type ConflictDetector struct{}

// NewConflictDetector constructs the detector.
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// Detect returns every conflict between candidate and existing on the selected resources.
// Only a malformed candidate is an error; an empty result is a valid outcome.
func (d *ConflictDetector) Detect(candidate models.Session, existing []models.Session, resources ResourceSelector) ([]models.Conflict, error) {
	if err := ValidateInterval(candidate); err != nil {
		return nil, err
	}
	conflicts := make([]models.Conflict, 0)
	if candidate.Cancelled() {
		return conflicts, nil
	}

	for _, other := range d.sameDay(candidate, existing) {
		if resources.InstructorID != "" && other.InstructorID == resources.InstructorID {
			if c, ok := overlap(models.ResourceInstructor, resources.InstructorID, candidate, other); ok {
				conflicts = append(conflicts, c)
			}
		}
		if resources.ClassroomID != "" && other.ClassroomID == resources.ClassroomID {
			if c, ok := overlap(models.ResourceClassroom, resources.ClassroomID, candidate, other); ok {
				conflicts = append(conflicts, c)
			}
		}
		if resources.CohortID != "" && other.RoundID == resources.CohortID {
			if c, ok := overlap(models.ResourceCohort, resources.CohortID, candidate, other); ok {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts, nil
}

// Overlaps reports whether two sessions share any instant of [start, end).
func Overlaps(a, b models.Session) bool {
	return a.SameDate(b) && a.StartTime < b.EndTime && b.StartTime < a.EndTime
}

// ValidateInterval rejects sessions without a date or with start >= end.
func ValidateInterval(s models.Session) error {
	if s.Date.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "session date is required")
	}
	if !s.StartTime.Valid() || !s.EndTime.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "session time must be within a single day")
	}
	if s.StartTime >= s.EndTime {
		return appErrors.Clone(appErrors.ErrValidation, "session start time must be before end time")
	}
	return nil
}

// sameDay is the candidate index: a linear scan today, replaceable by a
// date-keyed interval index without touching Detect's signature.
func (d *ConflictDetector) sameDay(candidate models.Session, existing []models.Session) []models.Session {
	out := make([]models.Session, 0, len(existing))
	for _, other := range existing {
		if other.Cancelled() {
			continue
		}
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if !candidate.SameDate(other) {
			continue
		}
		if other.StartTime >= other.EndTime {
			continue
		}
		out = append(out, other)
	}
	return out
}

func overlap(kind models.ResourceType, resourceID string, a, b models.Session) (models.Conflict, bool) {
	if !Overlaps(a, b) {
		return models.Conflict{}, false
	}
	start := a.StartTime
	if b.StartTime > start {
		start = b.StartTime
	}
	end := a.EndTime
	if b.EndTime < end {
		end = b.EndTime
	}
	return models.Conflict{
		ResourceType: kind,
		ResourceID:   resourceID,
		SessionA:     a,
		SessionB:     b,
		OverlapStart: start,
		OverlapEnd:   end,
	}, true
}
