package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler/internal/models"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock"), mock: mock}, mock
}

func (p *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

type roundStoreStub struct {
	rounds     map[string]models.Round
	lockWrites int
	endDates   []*time.Time
}

func newRoundStoreStub(rounds ...models.Round) *roundStoreStub {
	stub := &roundStoreStub{rounds: map[string]models.Round{}}
	for _, r := range rounds {
		stub.rounds[r.ID] = r
	}
	return stub
}

func (s *roundStoreStub) FindByID(_ context.Context, id string) (*models.Round, error) {
	r, ok := s.rounds[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (s *roundStoreStub) FindForUpdate(ctx context.Context, _ sqlx.ExtContext, id string) (*models.Round, error) {
	return s.FindByID(ctx, id)
}

func (s *roundStoreStub) Create(_ context.Context, round *models.Round) error {
	if round.ID == "" {
		round.ID = fmt.Sprintf("round-%d", len(s.rounds)+1)
	}
	s.rounds[round.ID] = *round
	return nil
}

func (s *roundStoreStub) UpdateLockState(_ context.Context, _ sqlx.ExtContext, round *models.Round) error {
	s.lockWrites++
	s.rounds[round.ID] = *round
	return nil
}

func (s *roundStoreStub) UpdateEndDate(_ context.Context, _ sqlx.ExtContext, id string, endDate *time.Time) error {
	r := s.rounds[id]
	r.EndDate = endDate
	s.rounds[id] = r
	s.endDates = append(s.endDates, endDate)
	return nil
}

type sessionStoreStub struct {
	sessions      map[string]models.Session
	nextID        int
	sequenceCalls [][]models.Session
	lockedDates   []string
	lockErr       error
}

func newSessionStoreStub(sessions ...models.Session) *sessionStoreStub {
	stub := &sessionStoreStub{sessions: map[string]models.Session{}}
	for _, s := range sessions {
		stub.sessions[s.ID] = s
	}
	return stub
}

func (s *sessionStoreStub) sorted(keep func(models.Session) bool) []models.Session {
	out := make([]models.Session, 0)
	for _, session := range s.sessions {
		if keep(session) {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *sessionStoreStub) ListByRound(_ context.Context, _ sqlx.ExtContext, roundID string) ([]models.Session, error) {
	return Ordered(s.sorted(func(x models.Session) bool { return x.RoundID == roundID })), nil
}

func (s *sessionStoreStub) ListByDate(_ context.Context, _ sqlx.ExtContext, date time.Time) ([]models.Session, error) {
	probe := models.Session{Date: date}
	return s.sorted(func(x models.Session) bool { return x.SameDate(probe) }), nil
}

func (s *sessionStoreStub) LockDate(_ context.Context, exec sqlx.ExtContext, date time.Time) error {
	if s.lockErr != nil {
		return s.lockErr
	}
	if exec == nil {
		return fmt.Errorf("lock outside transaction")
	}
	s.lockedDates = append(s.lockedDates, date.Format(models.DateLayout))
	return nil
}

func (s *sessionStoreStub) ListBySubject(_ context.Context, subjectID string, _ int) ([]models.Session, error) {
	return s.sorted(func(x models.Session) bool { return x.SubjectID == subjectID && !x.Cancelled() }), nil
}

func (s *sessionStoreStub) Create(_ context.Context, _ sqlx.ExtContext, session *models.Session) error {
	if session.ID == "" {
		s.nextID++
		session.ID = fmt.Sprintf("new-%d", s.nextID)
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *sessionStoreStub) Update(_ context.Context, _ sqlx.ExtContext, session *models.Session) error {
	if _, ok := s.sessions[session.ID]; !ok {
		return sql.ErrNoRows
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *sessionStoreStub) Delete(_ context.Context, _ sqlx.ExtContext, _ string, id string) error {
	if _, ok := s.sessions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.sessions, id)
	return nil
}

func (s *sessionStoreStub) UpdateSequence(_ context.Context, _ sqlx.ExtContext, sessions []models.Session) error {
	s.sequenceCalls = append(s.sequenceCalls, sessions)
	for _, update := range sessions {
		stored := s.sessions[update.ID]
		stored.DayNumber = update.DayNumber
		stored.Date = update.Date
		s.sessions[update.ID] = stored
	}
	return nil
}

type instructorCatalogStub []models.Instructor

func (s instructorCatalogStub) ListAll(context.Context) ([]models.Instructor, error) { return s, nil }

type classroomCatalogStub []models.Classroom

func (s classroomCatalogStub) ListAll(context.Context) ([]models.Classroom, error) { return s, nil }

type subjectReaderStub map[string]models.Subject

func (s subjectReaderStub) FindByID(_ context.Context, id string) (*models.Subject, error) {
	subject, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &subject, nil
}

type schedulingFixture struct {
	svc      *SchedulingService
	rounds   *roundStoreStub
	sessions *sessionStoreStub
	cache    *memoryCacheRepo
	metrics  *MetricsService
	mock     sqlmock.Sqlmock
}

type schedulingFixtureConfig struct {
	policy   ConflictPolicy
	calendar *models.HolidayCalendar
	rounds   []models.Round
	sessions []models.Session
}

func newSchedulingFixture(t *testing.T, cfg schedulingFixtureConfig) *schedulingFixture {
	t.Helper()
	tx, mock := newTxProviderMock(t)
	if len(cfg.rounds) == 0 {
		cfg.rounds = []models.Round{{ID: "round-1", CourseID: "course-1", StartDate: day(t, "2025-09-05")}}
	}
	if cfg.calendar == nil {
		cfg.calendar = septemberHolidays()
	}
	rounds := newRoundStoreStub(cfg.rounds...)
	sessions := newSessionStoreStub(cfg.sessions...)
	cacheRepo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	detector := NewConflictDetector()

	svc := NewSchedulingService(SchedulingDeps{
		Rounds:   rounds,
		Sessions: sessions,
		Instructors: instructorCatalogStub{
			{ID: "I1", Name: "Kim", Specializations: []string{"BS Basic"}},
			{ID: "I2", Name: "Lee"},
		},
		Classrooms: classroomCatalogStub{{ID: "R1", Name: "Lab A"}, {ID: "R2", Name: "Lab B"}},
		Subjects:   subjectReaderStub{"subject-1": {ID: "subject-1", Name: "BS Basic Advanced"}},
		Tx:         tx,
		Detector:   detector,
		Engine:     NewRecommendationEngine(detector, DefaultScoringPolicy()),
		Sequencer:  NewSessionSequencer(NewCalendarService(cfg.calendar)),
		Cache:      NewCacheService(cacheRepo, metrics, time.Minute, nil, true),
		Metrics:    metrics,
	}, SchedulingConfig{ConflictPolicy: cfg.policy}, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 9, 3, 10, 0, 0, 0, time.UTC) }

	return &schedulingFixture{svc: svc, rounds: rounds, sessions: sessions, cache: cacheRepo, metrics: metrics, mock: mock}
}
