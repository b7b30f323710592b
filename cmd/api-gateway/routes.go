package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/handler"
	internalmiddleware "github.com/noah-isme/course-scheduler/internal/middleware"
	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/pkg/config"
	"github.com/noah-isme/course-scheduler/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-scheduler/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, app *application, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(app.metrics))

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authn := internalmiddleware.JWT(app.auth)
	readers := internalmiddleware.Passthrough()
	editors := internalmiddleware.Passthrough()
	if app.auth != nil {
		readers = internalmiddleware.RBAC(models.RoleAdmin, models.RoleCoordinator, models.RoleInstructor, models.RoleViewer)
		editors = internalmiddleware.RBAC(models.RoleAdmin, models.RoleCoordinator)
	}

	roundHandler := handler.NewRoundHandler(app.rounds)
	sessionHandler := handler.NewSessionHandler(app.scheduling)
	calendarHandler := handler.NewCalendarHandler(app.calendar, app.validator)

	api := r.Group(cfg.APIPrefix, authn)
	api.GET("/metrics/snapshot", editors, metricsHandler.Snapshot)
	api.GET("/calendar/working-days", readers, calendarHandler.WorkingDays)

	audit := func(action string) gin.HandlerFunc { return internalmiddleware.Audit(logr, action) }

	api.POST("/rounds", editors, audit("round.create"), roundHandler.Create)
	rounds := api.Group("/rounds/:id")
	rounds.GET("", readers, roundHandler.Get)
	rounds.POST("/lock", editors, audit("round.lock"), roundHandler.Lock)
	rounds.POST("/unlock", editors, audit("round.unlock"), roundHandler.Unlock)
	rounds.POST("/sessions", editors, audit("session.create"), sessionHandler.Create)
	rounds.PUT("/sessions/:sessionId", editors, audit("session.update"), sessionHandler.Update)
	rounds.DELETE("/sessions/:sessionId", editors, audit("session.delete"), sessionHandler.Delete)
	rounds.POST("/sessions/conflicts", readers, sessionHandler.CheckConflicts)
	rounds.POST("/sessions/reorder", editors, audit("session.reorder"), sessionHandler.Reorder)
	rounds.POST("/sessions/recalculate", editors, audit("session.recalculate"), sessionHandler.Recalculate)
	rounds.POST("/recommendations", readers, sessionHandler.Recommend)

	return r
}
