package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/dto"
	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

// RoundService manages rounds and their lock lifecycle.
type RoundService struct {
	rounds    roundStore
	sessions  sessionStore
	tx        txProvider
	lifecycle *RoundLifecycle
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoundService constructs a RoundService.
func NewRoundService(rounds roundStore, sessions sessionStore, tx txProvider, lifecycle *RoundLifecycle, validate *validator.Validate, logger *zap.Logger) *RoundService {
	if lifecycle == nil {
		lifecycle = NewRoundLifecycle()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoundService{rounds: rounds, sessions: sessions, tx: tx, lifecycle: lifecycle, validator: validate, logger: logger}
}

// Create opens a new round in the planning state.
func (s *RoundService) Create(ctx context.Context, req dto.CreateRoundRequest) (*models.RoundView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid round payload")
	}
	start, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	round := &models.Round{CourseID: req.CourseID, Name: req.Name, StartDate: start}
	if err := s.rounds.Create(ctx, round); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create round")
	}
	s.logger.Info("round created", zap.String("round_id", round.ID), zap.String("course_id", round.CourseID))
	view := s.lifecycle.View(*round)
	return &view, nil
}

// Get returns the round with its sessions in sequence order, cancelled ones included.
func (s *RoundService) Get(ctx context.Context, id string) (*models.RoundView, error) {
	round, err := s.rounds.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "round")
	}
	sessions, err := s.sessions.ListByRound(ctx, nil, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	round.Sessions = Ordered(sessions)
	view := s.lifecycle.View(*round)
	return &view, nil
}

// Lock freezes the round's sessions. Locking an empty round is allowed.
func (s *RoundService) Lock(ctx context.Context, id, actor string) (*models.RoundView, error) {
	return s.transition(ctx, id, actor, "locked", s.lifecycle.Lock)
}

// Unlock re-opens the round for edits.
func (s *RoundService) Unlock(ctx context.Context, id, actor string) (*models.RoundView, error) {
	return s.transition(ctx, id, actor, "unlocked", s.lifecycle.Unlock)
}

func (s *RoundService) transition(ctx context.Context, id, actor, label string, apply func(models.Round) models.Round) (*models.RoundView, error) {
	var updated models.Round
	err := inRoundTx(ctx, s.tx, s.rounds, s.sessions, s.lifecycle, s.logger, id, false, func(ctx context.Context, rt *roundTx) error {
		updated = apply(*rt.round)
		if err := s.rounds.UpdateLockState(ctx, rt.tx, &updated); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update round lock state")
		}
		updated.Sessions = Ordered(rt.sessions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("round "+label,
		zap.String("round_id", id),
		zap.String("actor", actor),
		zap.Int("sessions", len(updated.Sessions)),
		zap.Time("at", updated.UpdatedAt),
	)
	view := s.lifecycle.View(updated)
	return &view, nil
}
