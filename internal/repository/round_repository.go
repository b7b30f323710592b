package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler/internal/models"
)

const roundColumns = `id, course_id, name, start_date, end_date, is_locked, locked_at, unlocked_at, created_at, updated_at`

// RoundRepository persists course rounds and their lock state.
type RoundRepository struct {
	db *sqlx.DB
}

// NewRoundRepository constructs repository.
func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a round without its sessions.
func (r *RoundRepository) FindByID(ctx context.Context, id string) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	var round models.Round
	if err := r.db.GetContext(ctx, &round, query, id); err != nil {
		return nil, err
	}
	return &round, nil
}

// FindForUpdate loads a round and row-locks it for the surrounding transaction.
func (r *RoundRepository) FindForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1 FOR UPDATE`
	var round models.Round
	if err := sqlx.GetContext(ctx, r.exec(exec), &round, query, id); err != nil {
		return nil, err
	}
	return &round, nil
}

// Create inserts a new round.
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	if round == nil {
		return fmt.Errorf("round payload is nil")
	}
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if round.CreatedAt.IsZero() {
		round.CreatedAt = now
	}
	round.UpdatedAt = now

	const query = `
INSERT INTO rounds (id, course_id, name, start_date, end_date, is_locked, locked_at, unlocked_at, created_at, updated_at)
VALUES (:id, :course_id, :name, :start_date, :end_date, :is_locked, :locked_at, :unlocked_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, round); err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// UpdateLockState stores the lock flag and transition timestamps.
func (r *RoundRepository) UpdateLockState(ctx context.Context, exec sqlx.ExtContext, round *models.Round) error {
	const query = `UPDATE rounds SET is_locked = $1, locked_at = $2, unlocked_at = $3, updated_at = $4 WHERE id = $5`
	result, err := r.exec(exec).ExecContext(ctx, query, round.IsLocked, round.LockedAt, round.UnlockedAt, round.UpdatedAt, round.ID)
	if err != nil {
		return fmt.Errorf("update round lock state: %w", err)
	}
	return expectAffected(result, "round lock state")
}

// UpdateEndDate records the date of the last session.
func (r *RoundRepository) UpdateEndDate(ctx context.Context, exec sqlx.ExtContext, id string, endDate *time.Time) error {
	const query = `UPDATE rounds SET end_date = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, endDate, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update round end date: %w", err)
	}
	return expectAffected(result, "round end date")
}

func expectAffected(result sql.Result, label string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", label, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
