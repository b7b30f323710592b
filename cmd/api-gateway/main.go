package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-scheduler/api/swagger"
	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/repository"
	"github.com/noah-isme/course-scheduler/internal/service"
	"github.com/noah-isme/course-scheduler/pkg/cache"
	"github.com/noah-isme/course-scheduler/pkg/config"
	"github.com/noah-isme/course-scheduler/pkg/database"
	"github.com/noah-isme/course-scheduler/pkg/holiday"
	"github.com/noah-isme/course-scheduler/pkg/logger"
)

// @title Course Scheduler API
// @version 1.0.0
// @description Session scheduling, conflict detection and resource recommendations for course rounds
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	app := buildApp(cfg, db, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env,
			"conflict_policy", cfg.Scheduler.ConflictPolicy, "calendar_version", app.calendar.Version())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

type application struct {
	db         *sqlx.DB
	calendar   *service.CalendarService
	metrics    *service.MetricsService
	auth       *service.AuthService
	rounds     *service.RoundService
	scheduling *service.SchedulingService
	validator  *validator.Validate
}

func buildApp(cfg *config.Config, db *sqlx.DB, logr *zap.Logger) *application {
	calendar := service.NewCalendarService(loadCalendar(cfg.Scheduler.HolidayCalendarFile, logr))
	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if cfg.Scheduler.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, recommendation cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduler.CacheTTL, logr, cacheRepo != nil)

	rounds := repository.NewRoundRepository(db)
	sessions := repository.NewSessionRepository(db)
	lifecycle := service.NewRoundLifecycle()
	detector := service.NewConflictDetector()

	scheduling := service.NewSchedulingService(service.SchedulingDeps{
		Rounds:      rounds,
		Sessions:    sessions,
		Instructors: repository.NewInstructorRepository(db),
		Classrooms:  repository.NewClassroomRepository(db),
		Subjects:    repository.NewSubjectRepository(db),
		Tx:          db,
		Detector:    detector,
		Engine: service.NewRecommendationEngine(detector, service.ScoringPolicy{
			SpecializationWeight: cfg.Scheduler.SpecializationWeight,
			ExperienceWeight:     cfg.Scheduler.ExperienceWeight,
			DefaultLimit:         cfg.Scheduler.RecommendationLimit,
		}),
		Sequencer: service.NewSessionSequencer(calendar),
		Lifecycle: lifecycle,
		Cache:     cacheSvc,
		Metrics:   metrics,
	}, service.SchedulingConfig{
		ConflictPolicy: service.ConflictPolicy(cfg.Scheduler.ConflictPolicy),
		CacheTTL:       cfg.Scheduler.CacheTTL,
	}, validate, logr)

	var auth *service.AuthService
	if cfg.JWT.Enabled {
		auth = service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	}

	return &application{
		db:         db,
		calendar:   calendar,
		metrics:    metrics,
		auth:       auth,
		rounds:     service.NewRoundService(rounds, sessions, db, lifecycle, validate, logr),
		scheduling: scheduling,
		validator:  validate,
	}
}

// loadCalendar falls back to the weekends-only table when the holiday file cannot be read.
func loadCalendar(path string, logr *zap.Logger) *models.HolidayCalendar {
	calendar, err := holiday.LoadFile(path)
	if err != nil {
		logr.Warn("holiday calendar unavailable, using weekends-only calendar",
			zap.String("path", path), zap.Error(err))
		return models.WeekendsOnlyCalendar()
	}
	from, to := calendar.YearRange()
	logr.Info("holiday calendar loaded",
		zap.String("version", calendar.Version()), zap.Int("from_year", from), zap.Int("to_year", to))
	return calendar
}
