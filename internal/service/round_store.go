package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

type roundStore interface {
	FindByID(ctx context.Context, id string) (*models.Round, error)
	FindForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Round, error)
	Create(ctx context.Context, round *models.Round) error
	UpdateLockState(ctx context.Context, exec sqlx.ExtContext, round *models.Round) error
	UpdateEndDate(ctx context.Context, exec sqlx.ExtContext, id string, endDate *time.Time) error
}

type sessionStore interface {
	ListByRound(ctx context.Context, exec sqlx.ExtContext, roundID string) ([]models.Session, error)
	ListByDate(ctx context.Context, exec sqlx.ExtContext, date time.Time) ([]models.Session, error)
	LockDate(ctx context.Context, exec sqlx.ExtContext, date time.Time) error
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]models.Session, error)
	Create(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error
	Update(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error
	Delete(ctx context.Context, exec sqlx.ExtContext, roundID, id string) error
	UpdateSequence(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// roundTx is the state available to a mutation running under the round row lock.
type roundTx struct {
	tx       *sqlx.Tx
	round    *models.Round
	sessions []models.Session
}

type roundTxFunc func(ctx context.Context, rt *roundTx) error

// inRoundTx locks the round row, rejects locked rounds when guard is set,
// loads the round's sessions and commits when fn succeeds.
func inRoundTx(ctx context.Context, provider txProvider, rounds roundStore, sessions sessionStore, lifecycle *RoundLifecycle, logger *zap.Logger, roundID string, guard bool, fn roundTxFunc) (err error) {
	if provider == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := provider.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Warn("rollback failed", zap.String("round_id", roundID), zap.Error(rbErr))
			}
		}
	}()

	round, err := rounds.FindForUpdate(ctx, tx, roundID)
	if err != nil {
		err = lookupError(err, "round")
		return err
	}
	if guard {
		if err = lifecycle.Guard(*round); err != nil {
			return err
		}
	}
	list, err := sessions.ListByRound(ctx, tx, roundID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
		return err
	}

	if err = fn(ctx, &roundTx{tx: tx, round: round, sessions: list}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit transaction")
		return err
	}
	return nil
}

// lookupError maps sql.ErrNoRows to ErrNotFound and everything else to ErrInternal.
func lookupError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+what)
}

// lastSessionDate is the date of the final session in sequence order, nil for an empty round.
func lastSessionDate(sessions []models.Session) *time.Time {
	ordered := Ordered(sessions)
	if len(ordered) == 0 {
		return nil
	}
	last := ordered[len(ordered)-1].Date
	return &last
}
