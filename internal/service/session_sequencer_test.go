package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

func sequence(t *testing.T, n int) []models.Session {
	t.Helper()
	out := make([]models.Session, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, newSession(t, fmt.Sprintf("s-%02d", i+1), "2025-09-01", "09:00", "12:00", withDayNumber(i+1)))
	}
	return out
}

func sessionIDs(sessions []models.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}

func dayNumbers(sessions []models.Session) []int {
	out := make([]int, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.DayNumber)
	}
	return out
}

func dates(sessions []models.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Date.Format(models.DateLayout))
	}
	return out
}

func TestSessionSequencerReorderMovesAndRenumbers(t *testing.T) {
	seq := NewSessionSequencer(NewCalendarService(septemberHolidays()))
	input := sequence(t, 4)

	got, err := seq.Reorder(input, "s-04", 0)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"s-04", "s-01", "s-02", "s-03"}, sessionIDs(got)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, dayNumbers(got))
	assert.Equal(t, []int{1, 2, 3, 4}, dayNumbers(input), "input must not be mutated")
	assert.Equal(t, "s-01", input[0].ID)
}

func TestSessionSequencerReorderForward(t *testing.T) {
	seq := NewSessionSequencer(nil)

	got, err := seq.Reorder(sequence(t, 4), "s-01", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-02", "s-03", "s-01", "s-04"}, sessionIDs(got))
}

func TestSessionSequencerReorderRejectsBadInput(t *testing.T) {
	seq := NewSessionSequencer(nil)

	_, err := seq.Reorder(sequence(t, 3), "missing", 0)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = seq.Reorder(sequence(t, 3), "s-01", 3)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = seq.Reorder(sequence(t, 3), "s-01", -1)
	require.Error(t, err)
}

func TestSessionSequencerReorderKeepsSequenceDense(t *testing.T) {
	faker := gofakeit.New(42)
	seq := NewSessionSequencer(nil)

	for i := 0; i < 100; i++ {
		n := faker.Number(1, 12)
		sessions := sequence(t, n)
		moved := sessions[faker.Number(0, n-1)].ID
		target := faker.Number(0, n-1)

		got, err := seq.Reorder(sessions, moved, target)
		require.NoError(t, err)
		require.Len(t, got, n)

		seen := make(map[string]bool, n)
		for idx, s := range got {
			assert.Equal(t, idx+1, s.DayNumber)
			seen[s.ID] = true
		}
		assert.Len(t, seen, n)
		assert.Equal(t, moved, got[target].ID)
	}
}

func TestSessionSequencerOrderedBreaksTiesByID(t *testing.T) {
	sessions := []models.Session{
		newSession(t, "b", "2025-09-01", "09:00", "10:00", withDayNumber(1)),
		newSession(t, "c", "2025-09-01", "09:00", "10:00", withDayNumber(0)),
		newSession(t, "a", "2025-09-01", "09:00", "10:00", withDayNumber(1)),
	}
	assert.Equal(t, []string{"c", "a", "b"}, sessionIDs(Ordered(sessions)))
}

func TestSessionSequencerRecalculateSkipsHolidays(t *testing.T) {
	seq := NewSessionSequencer(NewCalendarService(septemberHolidays()))

	got, err := seq.RecalculateDates(sequence(t, 3), day(t, "2025-09-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09-05", "2025-09-09", "2025-09-10"}, dates(got))
}

func TestSessionSequencerRecalculateKeepsNonWorkingAnchor(t *testing.T) {
	seq := NewSessionSequencer(NewCalendarService(septemberHolidays()))

	got, err := seq.RecalculateDates(sequence(t, 2), day(t, "2025-09-06"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09-06", "2025-09-09"}, dates(got))
}

func TestSessionSequencerRecalculateEmpty(t *testing.T) {
	seq := NewSessionSequencer(nil)

	got, err := seq.RecalculateDates(nil, day(t, "2025-09-05"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionSequencerRecalculatePropagatesCalendarErrors(t *testing.T) {
	seq := NewSessionSequencer(NewCalendarService(septemberHolidays()))

	_, err := seq.RecalculateDates(sequence(t, 3), day(t, "2025-12-30"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidDate))
}

func TestSessionSequencerRecalculateChecksAnchorCoverage(t *testing.T) {
	seq := NewSessionSequencer(NewCalendarService(septemberHolidays()))

	_, err := seq.RecalculateDates(sequence(t, 1), day(t, "2026-01-05"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidDate))
}

func TestSessionSequencerWithCalendarUsesFallback(t *testing.T) {
	primary := NewSessionSequencer(NewCalendarService(septemberHolidays()))
	fallback := primary.WithCalendar(primary.Calendar().WeekendsOnly())

	got, err := fallback.RecalculateDates(sequence(t, 2), day(t, "2025-09-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09-05", "2025-09-08"}, dates(got))
	assert.True(t, fallback.Calendar().Degraded())
}

func TestDiffReportsOnlyChangedSessions(t *testing.T) {
	before := sequence(t, 3)
	after := make([]models.Session, len(before))
	copy(after, before)
	after[1].Date = after[1].Date.Add(24 * time.Hour)
	after[2].DayNumber = 9
	extra := newSession(t, "s-new", "2025-09-01", "09:00", "10:00")
	after = append(after, extra)

	changed := Diff(before, after)
	assert.Equal(t, []string{"s-02", "s-03", "s-new"}, sessionIDs(changed))
	assert.Empty(t, Diff(before, before))
}
