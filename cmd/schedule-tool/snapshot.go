package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/service"
)

// snapshot is an exported round: its id plus every session, in any order.
type snapshot struct {
	RoundID  string          `json:"roundId"`
	Sessions []sessionRecord `json:"sessions"`
}

// sessionRecord mirrors models.Session with a plain YYYY-MM-DD date.
type sessionRecord struct {
	ID           string           `json:"id"`
	RoundID      string           `json:"roundId,omitempty"`
	DayNumber    int              `json:"dayNumber,omitempty"`
	Date         string           `json:"date"`
	StartTime    models.TimeOfDay `json:"startTime"`
	EndTime      models.TimeOfDay `json:"endTime"`
	InstructorID string           `json:"instructorId,omitempty"`
	ClassroomID  string           `json:"classroomId,omitempty"`
	SubjectID    string           `json:"subjectId,omitempty"`
	Status       string           `json:"status,omitempty"`
}

func (r sessionRecord) toModel(defaultRound string) (models.Session, error) {
	date, err := service.ParseDate(r.Date)
	if err != nil {
		return models.Session{}, fmt.Errorf("session %q: %w", r.ID, err)
	}
	status := models.SessionStatus(strings.ToLower(r.Status))
	if status == "" {
		status = models.SessionStatusScheduled
	}
	if !status.Valid() {
		return models.Session{}, fmt.Errorf("session %q: unknown status %q", r.ID, r.Status)
	}
	roundID := r.RoundID
	if roundID == "" {
		roundID = defaultRound
	}
	return models.Session{
		ID:           r.ID,
		RoundID:      roundID,
		DayNumber:    r.DayNumber,
		Date:         date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		InstructorID: r.InstructorID,
		ClassroomID:  r.ClassroomID,
		SubjectID:    r.SubjectID,
		Status:       status,
	}, nil
}

func fromModel(s models.Session) sessionRecord {
	return sessionRecord{
		ID:           s.ID,
		RoundID:      s.RoundID,
		DayNumber:    s.DayNumber,
		Date:         s.Date.Format(models.DateLayout),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		InstructorID: s.InstructorID,
		ClassroomID:  s.ClassroomID,
		SubjectID:    s.SubjectID,
		Status:       string(s.Status),
	}
}

func readJSON(path string, dest interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func loadSnapshot(path string) (string, []models.Session, error) {
	var snap snapshot
	if err := readJSON(path, &snap); err != nil {
		return "", nil, err
	}
	sessions := make([]models.Session, 0, len(snap.Sessions))
	for _, record := range snap.Sessions {
		session, err := record.toModel(snap.RoundID)
		if err != nil {
			return "", nil, err
		}
		sessions = append(sessions, session)
	}
	return snap.RoundID, sessions, nil
}
