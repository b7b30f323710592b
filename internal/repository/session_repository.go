package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler/internal/models"
)

const sessionColumns = `id, round_id, day_number, session_date, start_time, end_time,
COALESCE(classroom_id, '') AS classroom_id, COALESCE(instructor_id, '') AS instructor_id,
subject_id, status, created_at, updated_at`

// SessionRepository persists the sessions of every round.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByRound returns a round's sessions, cancelled ones included, in sequence order.
func (r *SessionRepository) ListByRound(ctx context.Context, exec sqlx.ExtContext, roundID string) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE round_id = $1 ORDER BY day_number ASC, id ASC`
	var sessions []models.Session
	if err := sqlx.SelectContext(ctx, r.exec(exec), &sessions, query, roundID); err != nil {
		return nil, fmt.Errorf("list sessions by round: %w", err)
	}
	return sessions, nil
}

// ListByDate returns every round's sessions on the date.
func (r *SessionRepository) ListByDate(ctx context.Context, exec sqlx.ExtContext, date time.Time) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_date = $1 ORDER BY start_time ASC, id ASC`
	var sessions []models.Session
	if err := sqlx.SelectContext(ctx, r.exec(exec), &sessions, query, date); err != nil {
		return nil, fmt.Errorf("list sessions by date: %w", err)
	}
	return sessions, nil
}

// LockDate takes a transaction-scoped advisory lock on a calendar date so that
// bookings on that date serialize across rounds. exec must be a transaction.
func (r *SessionRepository) LockDate(ctx context.Context, exec sqlx.ExtContext, date time.Time) error {
	if exec == nil {
		return fmt.Errorf("lock session date: transaction required")
	}
	key := "sessions:" + date.UTC().Format(models.DateLayout)
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock session date: %w", err)
	}
	return nil
}

// ListBySubject returns past non-cancelled sessions of a subject for classroom usage history.
func (r *SessionRepository) ListBySubject(ctx context.Context, subjectID string, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE subject_id = $1 AND status <> $2 ORDER BY session_date DESC LIMIT $3`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, subjectID, models.SessionStatusCancelled, limit); err != nil {
		return nil, fmt.Errorf("list sessions by subject: %w", err)
	}
	return sessions, nil
}

// Create inserts a session; empty resource ids are stored as NULL.
func (r *SessionRepository) Create(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session payload is nil")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `
INSERT INTO sessions (id, round_id, day_number, session_date, start_time, end_time, classroom_id, instructor_id, subject_id, status, created_at, updated_at)
VALUES (:id, :round_id, :day_number, :session_date, :start_time, :end_time, NULLIF(:classroom_id, ''), NULLIF(:instructor_id, ''), :subject_id, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a session.
func (r *SessionRepository) Update(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE sessions SET session_date = :session_date, start_time = :start_time, end_time = :end_time,
    classroom_id = NULLIF(:classroom_id, ''), instructor_id = NULLIF(:instructor_id, ''),
    subject_id = :subject_id, status = :status, updated_at = :updated_at
WHERE id = :id AND round_id = :round_id`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, session)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return expectAffected(result, "session")
}

// Delete removes a session from its round.
func (r *SessionRepository) Delete(ctx context.Context, exec sqlx.ExtContext, roundID, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1 AND round_id = $2`
	result, err := r.exec(exec).ExecContext(ctx, query, id, roundID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return expectAffected(result, "session")
}

// UpdateSequence stores day numbers and dates for the given sessions.
func (r *SessionRepository) UpdateSequence(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `UPDATE sessions SET day_number = $1, session_date = $2, updated_at = $3 WHERE id = $4`
	for _, s := range sessions {
		if _, err := target.ExecContext(ctx, query, s.DayNumber, s.Date, now, s.ID); err != nil {
			return fmt.Errorf("update session sequence %s: %w", s.ID, err)
		}
	}
	return nil
}
