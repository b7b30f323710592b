package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

func TestConflictDetectorInstructorOverlap(t *testing.T) {
	detector := NewConflictDetector()
	existing := []models.Session{newSession(t, "s-1", "2025-09-03", "09:00", "12:00", withInstructor("I1"))}
	candidate := newSession(t, "", "2025-09-03", "10:00", "11:00", withInstructor("I1"))

	conflicts, err := detector.Detect(candidate, existing, SelectorFor(candidate))
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, models.ResourceInstructor, c.ResourceType)
	assert.Equal(t, "I1", c.ResourceID)
	assert.Equal(t, "s-1", c.SessionB.ID)
	assert.Equal(t, "10:00", c.OverlapStart.String())
	assert.Equal(t, "11:00", c.OverlapEnd.String())
}

func TestConflictDetectorBackToBackIsNotAConflict(t *testing.T) {
	detector := NewConflictDetector()
	existing := []models.Session{newSession(t, "s-1", "2025-09-03", "09:00", "10:00", withInstructor("I1"), withClassroom("R1"))}
	candidate := newSession(t, "", "2025-09-03", "10:00", "11:00", withInstructor("I1"), withClassroom("R1"))

	conflicts, err := detector.Detect(candidate, existing, SelectorFor(candidate))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestConflictDetectorIgnoresCancelledAndOtherDates(t *testing.T) {
	detector := NewConflictDetector()
	existing := []models.Session{
		newSession(t, "s-1", "2025-09-03", "09:00", "12:00", withInstructor("I1"), withStatus(models.SessionStatusCancelled)),
		newSession(t, "s-2", "2025-09-04", "09:00", "12:00", withInstructor("I1")),
		newSession(t, "s-3", "2025-09-03", "09:00", "12:00", withInstructor("I2")),
	}
	candidate := newSession(t, "", "2025-09-03", "10:00", "11:00", withInstructor("I1"))

	conflicts, err := detector.Detect(candidate, existing, SelectorFor(candidate))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestConflictDetectorCancelledCandidateNeverConflicts(t *testing.T) {
	detector := NewConflictDetector()
	existing := []models.Session{newSession(t, "s-1", "2025-09-03", "09:00", "12:00", withInstructor("I1"))}
	candidate := newSession(t, "s-2", "2025-09-03", "10:00", "11:00", withInstructor("I1"), withStatus(models.SessionStatusCancelled))

	conflicts, err := detector.Detect(candidate, existing, SelectorFor(candidate))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestConflictDetectorExcludesSessionBeingEdited(t *testing.T) {
	detector := NewConflictDetector()
	stored := newSession(t, "s-1", "2025-09-03", "09:00", "12:00", withInstructor("I1"))
	edited := stored
	edited.StartTime = clock(t, "10:00")

	conflicts, err := detector.Detect(edited, []models.Session{stored}, SelectorFor(edited))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestConflictDetectorReportsEachDimension(t *testing.T) {
	detector := NewConflictDetector()
	existing := []models.Session{newSession(t, "s-1", "2025-09-03", "09:00", "12:00", withInstructor("I1"), withClassroom("R1"))}
	candidate := newSession(t, "", "2025-09-03", "11:00", "13:00", withInstructor("I1"), withClassroom("R1"))

	conflicts, err := detector.Detect(candidate, existing, SelectorFor(candidate))
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, models.ResourceInstructor, conflicts[0].ResourceType)
	assert.Equal(t, models.ResourceClassroom, conflicts[1].ResourceType)
	for _, c := range conflicts {
		assert.Equal(t, "11:00", c.OverlapStart.String())
		assert.Equal(t, "12:00", c.OverlapEnd.String())
	}
}

func TestConflictDetectorCohortIsOptIn(t *testing.T) {
	detector := NewConflictDetector()
	existing := []models.Session{newSession(t, "s-1", "2025-09-03", "09:00", "12:00", withRound("round-1"), withInstructor("I1"))}
	candidate := newSession(t, "", "2025-09-03", "10:00", "11:00", withRound("round-1"), withInstructor("I2"))

	conflicts, err := detector.Detect(candidate, existing, SelectorFor(candidate))
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	conflicts, err = detector.Detect(candidate, existing, SelectorFor(candidate).WithCohort(candidate.RoundID))
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ResourceCohort, conflicts[0].ResourceType)
	assert.Equal(t, "round-1", conflicts[0].ResourceID)
}

func TestConflictDetectorRejectsMalformedCandidate(t *testing.T) {
	detector := NewConflictDetector()

	cases := map[string]models.Session{
		"inverted":   newSession(t, "", "2025-09-03", "11:00", "10:00"),
		"empty":      newSession(t, "", "2025-09-03", "10:00", "10:00"),
		"no date":    {StartTime: clock(t, "09:00"), EndTime: clock(t, "10:00")},
		"past a day": {Date: day(t, "2025-09-03"), StartTime: clock(t, "23:00"), EndTime: models.TimeOfDay(models.MinutesPerDay + 30)},
	}
	for name, candidate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := detector.Detect(candidate, nil, SelectorFor(candidate))
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestConflictDetectorSkipsMalformedExisting(t *testing.T) {
	detector := NewConflictDetector()
	broken := newSession(t, "s-1", "2025-09-03", "09:00", "12:00", withInstructor("I1"))
	broken.EndTime = broken.StartTime
	candidate := newSession(t, "", "2025-09-03", "08:00", "13:00", withInstructor("I1"))

	conflicts, err := detector.Detect(candidate, []models.Session{broken}, SelectorFor(candidate))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestConflictDetectorIsSymmetric(t *testing.T) {
	faker := gofakeit.New(20250903)
	detector := NewConflictDetector()
	date := day(t, "2025-09-03")

	randomSession := func(id string) models.Session {
		start := faker.Number(6*60, 20*60)
		length := faker.Number(15, 180)
		return models.Session{
			ID:           id,
			RoundID:      "round-1",
			Date:         date,
			StartTime:    models.TimeOfDay(start),
			EndTime:      models.TimeOfDay(start + length),
			InstructorID: "I1",
			Status:       models.SessionStatusScheduled,
		}
	}

	for i := 0; i < 200; i++ {
		a := randomSession(fmt.Sprintf("a-%d", i))
		b := randomSession(fmt.Sprintf("b-%d", i))

		ab, err := detector.Detect(a, []models.Session{b}, SelectorFor(a))
		require.NoError(t, err)
		ba, err := detector.Detect(b, []models.Session{a}, SelectorFor(b))
		require.NoError(t, err)

		require.Equal(t, len(ab), len(ba), "pair %d", i)
		assert.Equal(t, Overlaps(a, b), len(ab) == 1)
		if len(ab) == 1 {
			assert.Equal(t, ab[0].OverlapStart, ba[0].OverlapStart)
			assert.Equal(t, ab[0].OverlapEnd, ba[0].OverlapEnd)
		}
	}
}

func TestOverlapsRequiresSameDate(t *testing.T) {
	a := newSession(t, "a", "2025-09-03", "09:00", "10:00")
	b := a
	b.Date = a.Date.Add(24 * time.Hour)
	assert.False(t, Overlaps(a, b))
	assert.True(t, Overlaps(a, a))
}
