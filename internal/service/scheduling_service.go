package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/dto"
	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

// ConflictPolicy decides what a session write does when conflicts are found.
type ConflictPolicy string

const (
	// ConflictPolicyWarn persists the write and reports the conflicts.
	ConflictPolicyWarn ConflictPolicy = "warn"
	// ConflictPolicyBlock rejects the write unless the caller forces it.
	ConflictPolicyBlock ConflictPolicy = "block"
)

const (
	recalcTriggerReorder = "reorder"
	recalcTriggerManual  = "manual"
	subjectHistoryLimit  = 500
)

type instructorCatalog interface {
	ListAll(ctx context.Context) ([]models.Instructor, error)
}

type classroomCatalog interface {
	ListAll(ctx context.Context) ([]models.Classroom, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// SchedulingConfig tunes the calling service.
type SchedulingConfig struct {
	ConflictPolicy ConflictPolicy
	CacheTTL       time.Duration
}

// SchedulingDeps groups the collaborators of SchedulingService.
type SchedulingDeps struct {
	Rounds      roundStore
	Sessions    sessionStore
	Instructors instructorCatalog
	Classrooms  classroomCatalog
	Subjects    subjectReader
	Tx          txProvider
	Detector    *ConflictDetector
	Engine      *RecommendationEngine
	Sequencer   *SessionSequencer
	Lifecycle   *RoundLifecycle
	Cache       *CacheService
	Metrics     *MetricsService
}

// SchedulingService runs session writes, sequencing and recommendations against storage.
type SchedulingService struct {
	deps      SchedulingDeps
	config    SchedulingConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSchedulingService wires the engine components to their stores.
func NewSchedulingService(deps SchedulingDeps, cfg SchedulingConfig, validate *validator.Validate, logger *zap.Logger) *SchedulingService {
	if deps.Detector == nil {
		deps.Detector = NewConflictDetector()
	}
	if deps.Engine == nil {
		deps.Engine = NewRecommendationEngine(deps.Detector, DefaultScoringPolicy())
	}
	if deps.Sequencer == nil {
		deps.Sequencer = NewSessionSequencer(nil)
	}
	if deps.Lifecycle == nil {
		deps.Lifecycle = NewRoundLifecycle()
	}
	if cfg.ConflictPolicy != ConflictPolicyBlock {
		cfg.ConflictPolicy = ConflictPolicyWarn
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := dto.RegisterValidations(validate); err != nil {
		logger.Warn("failed to register scheduling validations", zap.Error(err))
	}
	return &SchedulingService{
		deps:      deps,
		config:    cfg,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Policy returns the conflict policy in force.
func (s *SchedulingService) Policy() ConflictPolicy {
	return s.config.ConflictPolicy
}

// Calendar exposes the calendar used for date recalculation.
func (s *SchedulingService) Calendar() *CalendarService {
	return s.deps.Sequencer.Calendar()
}

// CheckConflicts reports conflicts for a draft session without persisting anything.
func (s *SchedulingService) CheckConflicts(ctx context.Context, roundID string, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	if _, err := s.deps.Rounds.FindByID(ctx, roundID); err != nil {
		return nil, lookupError(err, "round")
	}
	candidate, err := buildSession(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	candidate.ID = req.SessionID
	candidate.RoundID = roundID
	candidate.InstructorID = req.InstructorID
	candidate.ClassroomID = req.ClassroomID

	existing, err := s.deps.Sessions.ListByDate(ctx, nil, candidate.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	selector := SelectorFor(candidate)
	if req.CheckCohort {
		selector = selector.WithCohort(roundID)
	}
	conflicts, err := s.deps.Detector.Detect(candidate, existing, selector)
	if err != nil {
		return nil, err
	}
	s.recordConflicts(conflicts)
	return &dto.ConflictCheckResponse{HasConflicts: len(conflicts) > 0, Conflicts: conflicts}, nil
}

// CreateSession appends a session to the round's sequence.
func (s *SchedulingService) CreateSession(ctx context.Context, roundID string, req dto.SessionRequest) (*dto.SessionMutationResponse, error) {
	candidate, err := s.sessionFromRequest(req)
	if err != nil {
		return nil, err
	}
	candidate.RoundID = roundID

	var conflicts []models.Conflict
	err = s.inRoundTx(ctx, roundID, func(ctx context.Context, rt *roundTx) error {
		var err error
		if conflicts, err = s.detectForWrite(ctx, rt, candidate, req.Force); err != nil {
			return err
		}
		candidate.DayNumber = len(rt.sessions) + 1
		if err := s.deps.Sessions.Create(ctx, rt.tx, &candidate); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
		}
		return s.syncEndDate(ctx, rt, append(rt.sessions, candidate))
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "session created", roundID, zap.String("session_id", candidate.ID), zap.Int("conflicts", len(conflicts)))
	return &dto.SessionMutationResponse{Session: &candidate, Conflicts: conflicts}, nil
}

// UpdateSession edits a session in place; its position in the sequence is kept.
func (s *SchedulingService) UpdateSession(ctx context.Context, roundID, sessionID string, req dto.SessionRequest) (*dto.SessionMutationResponse, error) {
	draft, err := s.sessionFromRequest(req)
	if err != nil {
		return nil, err
	}

	var (
		updated   models.Session
		conflicts []models.Conflict
	)
	err = s.inRoundTx(ctx, roundID, func(ctx context.Context, rt *roundTx) error {
		idx := indexOf(rt.sessions, sessionID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		updated = rt.sessions[idx]
		updated.Date = draft.Date
		updated.StartTime = draft.StartTime
		updated.EndTime = draft.EndTime
		updated.InstructorID = draft.InstructorID
		updated.ClassroomID = draft.ClassroomID
		updated.SubjectID = draft.SubjectID
		if req.Status != "" {
			updated.Status = draft.Status
		}

		var err error
		if conflicts, err = s.detectForWrite(ctx, rt, updated, req.Force); err != nil {
			return err
		}
		if err := s.deps.Sessions.Update(ctx, rt.tx, &updated); err != nil {
			return lookupError(err, "session")
		}
		next := make([]models.Session, len(rt.sessions))
		copy(next, rt.sessions)
		next[idx] = updated
		return s.syncEndDate(ctx, rt, next)
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "session updated", roundID, zap.String("session_id", sessionID), zap.Int("conflicts", len(conflicts)))
	return &dto.SessionMutationResponse{Session: &updated, Conflicts: conflicts}, nil
}

// DeleteSession removes a session and closes the gap in day numbers.
func (s *SchedulingService) DeleteSession(ctx context.Context, roundID, sessionID string) error {
	err := s.inRoundTx(ctx, roundID, func(ctx context.Context, rt *roundTx) error {
		idx := indexOf(rt.sessions, sessionID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		if err := s.deps.Sessions.Delete(ctx, rt.tx, roundID, sessionID); err != nil {
			return lookupError(err, "session")
		}
		remaining := make([]models.Session, 0, len(rt.sessions)-1)
		remaining = append(remaining, rt.sessions[:idx]...)
		remaining = append(remaining, rt.sessions[idx+1:]...)
		renumbered := Renumber(Ordered(remaining))
		if err := s.deps.Sessions.UpdateSequence(ctx, rt.tx, Diff(remaining, renumbered)); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to renumber sessions")
		}
		return s.syncEndDate(ctx, rt, renumbered)
	})
	if err != nil {
		return err
	}
	s.afterWrite(ctx, "session deleted", roundID, zap.String("session_id", sessionID))
	return nil
}

// ReorderSessions moves one session and optionally re-dates the sequence from the round start date.
func (s *SchedulingService) ReorderSessions(ctx context.Context, roundID string, req dto.ReorderSessionsRequest) (*dto.SequenceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	var resp *dto.SequenceResponse
	err := s.inRoundTx(ctx, roundID, func(ctx context.Context, rt *roundTx) error {
		reordered, err := s.deps.Sequencer.Reorder(rt.sessions, req.SessionID, req.ToIndex)
		if err != nil {
			return err
		}
		resp = &dto.SequenceResponse{RoundID: roundID}
		if req.Recalculate {
			anchor := NormalizeDate(rt.round.StartDate)
			if reordered, err = s.recalculate(roundID, reordered, anchor, recalcTriggerReorder, resp); err != nil {
				return err
			}
			resp.AnchorDate = &anchor
		}
		return s.persistSequence(ctx, rt, reordered, resp)
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "sessions reordered", roundID, zap.String("session_id", req.SessionID), zap.Int("to_index", req.ToIndex), zap.Int("changed", resp.Changed))
	return resp, nil
}

// RecalculateDates re-dates every session from an anchor, ISO or relative ("next monday").
// An empty anchor uses the round start date.
func (s *SchedulingService) RecalculateDates(ctx context.Context, roundID string, req dto.RecalculateDatesRequest) (*dto.SequenceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recalculation payload")
	}
	var explicit *time.Time
	if req.AnchorDate != "" {
		anchor, err := ParseAnchorDate(req.AnchorDate, s.now())
		if err != nil {
			return nil, err
		}
		explicit = &anchor
	}

	var resp *dto.SequenceResponse
	err := s.inRoundTx(ctx, roundID, func(ctx context.Context, rt *roundTx) error {
		anchor := NormalizeDate(rt.round.StartDate)
		if explicit != nil {
			anchor = *explicit
		}
		resp = &dto.SequenceResponse{RoundID: roundID, AnchorDate: &anchor}
		redated, err := s.recalculate(roundID, rt.sessions, anchor, recalcTriggerManual, resp)
		if err != nil {
			return err
		}
		return s.persistSequence(ctx, rt, redated, resp)
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "session dates recalculated", roundID, zap.Int("changed", resp.Changed), zap.Bool("calendar_degraded", resp.CalendarDegraded))
	return resp, nil
}

// Recommend ranks available instructors and classrooms for a slot. Results are cached.
func (s *SchedulingService) Recommend(ctx context.Context, roundID string, req dto.RecommendRequest) (*RecommendationResult, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recommendation payload")
	}
	if _, err := s.deps.Rounds.FindByID(ctx, roundID); err != nil {
		return nil, false, lookupError(err, "round")
	}

	key := RecommendationKey(roundID, req)
	var cached RecommendationResult
	if hit, _ := s.deps.Cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	probe, err := buildSession(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, false, err
	}
	subject, err := s.deps.Subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		return nil, false, lookupError(err, "subject")
	}
	instructors, err := s.deps.Instructors.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}
	classrooms, err := s.deps.Classrooms.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	sameDay, err := s.deps.Sessions.ListByDate(ctx, nil, probe.Date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	history, err := s.deps.Sessions.ListBySubject(ctx, subject.ID, subjectHistoryLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject history")
	}

	start := time.Now()
	result, err := s.deps.Engine.Recommend(RecommendationCandidate{
		SessionID:   req.SessionID,
		RoundID:     roundID,
		Date:        probe.Date,
		StartTime:   probe.StartTime,
		EndTime:     probe.EndTime,
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Headcount:   req.Headcount,
	}, instructors, classrooms, mergeSessions(sameDay, history), req.Limit)
	if err != nil {
		return nil, false, err
	}
	s.deps.Metrics.ObserveRecommendation(time.Since(start))

	if err := s.deps.Cache.Set(ctx, key, result, s.config.CacheTTL); err != nil {
		s.logger.Warn("recommendation cache write failed", zap.String("round_id", roundID), zap.Error(err))
	}
	return result, false, nil
}

func (s *SchedulingService) inRoundTx(ctx context.Context, roundID string, fn roundTxFunc) error {
	return inRoundTx(ctx, s.deps.Tx, s.deps.Rounds, s.deps.Sessions, s.deps.Lifecycle, s.logger, roundID, true, fn)
}

// detectForWrite checks the candidate against every round's sessions on its date
// and applies the conflict policy. The date lock is held until the transaction
// ends, so concurrent writes in other rounds see each other's bookings.
func (s *SchedulingService) detectForWrite(ctx context.Context, rt *roundTx, candidate models.Session, force bool) ([]models.Conflict, error) {
	if err := s.deps.Sessions.LockDate(ctx, rt.tx, candidate.Date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock session date")
	}
	existing, err := s.deps.Sessions.ListByDate(ctx, rt.tx, candidate.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	conflicts, err := s.deps.Detector.Detect(candidate, existing, SelectorFor(candidate))
	if err != nil {
		return nil, err
	}
	s.recordConflicts(conflicts)
	if len(conflicts) > 0 && s.config.ConflictPolicy == ConflictPolicyBlock && !force {
		s.deps.Metrics.RecordBlockedWrite()
		blocked := &models.ConflictSetError{
			Message:   fmt.Sprintf("%d conflict(s) detected", len(conflicts)),
			Conflicts: conflicts,
		}
		return nil, appErrors.Wrap(blocked, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "session conflicts with existing bookings; resend with force to override")
	}
	return conflicts, nil
}

// recalculate re-dates sessions from anchor, switching to the weekends-only
// calendar when the holiday table does not cover the dates.
func (s *SchedulingService) recalculate(roundID string, sessions []models.Session, anchor time.Time, trigger string, resp *dto.SequenceResponse) ([]models.Session, error) {
	sequencer := s.deps.Sequencer
	redated, err := sequencer.RecalculateDates(sessions, anchor)
	degraded := sequencer.Calendar().Degraded()
	if err != nil && appErrors.Is(err, appErrors.ErrInvalidDate) && !degraded {
		s.logger.Warn("holiday table does not cover recalculation; using weekends-only calendar",
			zap.String("round_id", roundID),
			zap.String("calendar_version", sequencer.Calendar().Version()),
			zap.Time("anchor", anchor),
			zap.Error(err),
		)
		sequencer = sequencer.WithCalendar(sequencer.Calendar().WeekendsOnly())
		degraded = true
		redated, err = sequencer.RecalculateDates(sessions, anchor)
	}
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.RecordRecalculation(trigger, degraded)
	resp.CalendarVersion = sequencer.Calendar().Version()
	resp.CalendarDegraded = degraded
	return redated, nil
}

func (s *SchedulingService) persistSequence(ctx context.Context, rt *roundTx, next []models.Session, resp *dto.SequenceResponse) error {
	changed := Diff(rt.sessions, next)
	if err := s.deps.Sessions.UpdateSequence(ctx, rt.tx, changed); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session sequence")
	}
	if err := s.syncEndDate(ctx, rt, next); err != nil {
		return err
	}
	resp.Sessions = Ordered(next)
	resp.Changed = len(changed)
	resp.EndDate = lastSessionDate(next)
	return nil
}

func (s *SchedulingService) syncEndDate(ctx context.Context, rt *roundTx, sessions []models.Session) error {
	end := lastSessionDate(sessions)
	current := rt.round.EndDate
	if (end == nil && current == nil) || (end != nil && current != nil && end.Equal(*current)) {
		return nil
	}
	if err := s.deps.Rounds.UpdateEndDate(ctx, rt.tx, rt.round.ID, end); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update round end date")
	}
	rt.round.EndDate = end
	return nil
}

func (s *SchedulingService) afterWrite(ctx context.Context, msg, roundID string, fields ...zap.Field) {
	if err := s.deps.Cache.InvalidateRecommendations(ctx); err != nil {
		s.logger.Warn("recommendation cache invalidation failed", zap.String("round_id", roundID), zap.Error(err))
	}
	s.logger.Info(msg, append([]zap.Field{zap.String("round_id", roundID)}, fields...)...)
}

func (s *SchedulingService) recordConflicts(conflicts []models.Conflict) {
	counts := make(map[models.ResourceType]int)
	for _, c := range conflicts {
		counts[c.ResourceType]++
	}
	for kind, n := range counts {
		s.deps.Metrics.RecordConflicts(string(kind), n)
	}
}

func (s *SchedulingService) sessionFromRequest(req dto.SessionRequest) (models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session, err := buildSession(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return models.Session{}, err
	}
	session.InstructorID = req.InstructorID
	session.ClassroomID = req.ClassroomID
	session.SubjectID = req.SubjectID
	session.Status = models.SessionStatusScheduled
	if req.Status != "" {
		session.Status = models.SessionStatus(req.Status)
	}
	return session, nil
}

func buildSession(date, start, end string) (models.Session, error) {
	day, err := ParseDate(date)
	if err != nil {
		return models.Session{}, err
	}
	startTime, err := models.ParseTimeOfDay(start)
	if err != nil {
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	endTime, err := models.ParseTimeOfDay(end)
	if err != nil {
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	session := models.Session{Date: day, StartTime: startTime, EndTime: endTime, Status: models.SessionStatusScheduled}
	if err := ValidateInterval(session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func indexOf(sessions []models.Session, id string) int {
	for i, s := range sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func mergeSessions(groups ...[]models.Session) []models.Session {
	seen := make(map[string]struct{})
	out := make([]models.Session, 0)
	for _, group := range groups {
		for _, s := range group {
			if _, ok := seen[s.ID]; ok {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
