package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler/internal/dto"
	"github.com/noah-isme/course-scheduler/internal/service"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/response"
)

type sessionScheduler interface {
	Policy() service.ConflictPolicy
	CheckConflicts(ctx context.Context, roundID string, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
	CreateSession(ctx context.Context, roundID string, req dto.SessionRequest) (*dto.SessionMutationResponse, error)
	UpdateSession(ctx context.Context, roundID, sessionID string, req dto.SessionRequest) (*dto.SessionMutationResponse, error)
	DeleteSession(ctx context.Context, roundID, sessionID string) error
	ReorderSessions(ctx context.Context, roundID string, req dto.ReorderSessionsRequest) (*dto.SequenceResponse, error)
	RecalculateDates(ctx context.Context, roundID string, req dto.RecalculateDatesRequest) (*dto.SequenceResponse, error)
	Recommend(ctx context.Context, roundID string, req dto.RecommendRequest) (*service.RecommendationResult, bool, error)
}

// SessionHandler exposes session scheduling endpoints of a round.
type SessionHandler struct {
	service sessionScheduler
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc *service.SchedulingService) *SessionHandler {
	return &SessionHandler{service: svc}
}

func (h *SessionHandler) meta() map[string]interface{} {
	return map[string]interface{}{"conflictPolicy": h.service.Policy()}
}

// Create godoc
// @Summary Add a session to a round
// @Description Conflicts are reported in data.conflicts. Under the block policy a conflicting write returns 409 unless force is set.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Round ID"
// @Param payload body dto.SessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /rounds/{id}/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	result, err := h.service.CreateSession(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result, h.meta())
}

// Update godoc
// @Summary Edit a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Round ID"
// @Param sessionId path string true "Session ID"
// @Param payload body dto.SessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /rounds/{id}/sessions/{sessionId} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	result, err := h.service.UpdateSession(c.Request.Context(), c.Param("id"), c.Param("sessionId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, h.meta())
}

// Delete godoc
// @Summary Remove a session and renumber the rest
// @Tags Sessions
// @Param id path string true "Round ID"
// @Param sessionId path string true "Session ID"
// @Success 204
// @Failure 423 {object} response.Envelope
// @Router /rounds/{id}/sessions/{sessionId} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id"), c.Param("sessionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflicts godoc
// @Summary Check a draft session for conflicts without saving it
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Round ID"
// @Param payload body dto.ConflictCheckRequest true "Draft session"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id}/sessions/conflicts [post]
func (h *SessionHandler) CheckConflicts(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict check payload"))
		return
	}
	result, err := h.service.CheckConflicts(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, h.meta())
}

// Reorder godoc
// @Summary Move a session within the round sequence
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Round ID"
// @Param payload body dto.ReorderSessionsRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /rounds/{id}/sessions/reorder [post]
func (h *SessionHandler) Reorder(c *gin.Context) {
	var req dto.ReorderSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reorder payload"))
		return
	}
	result, err := h.service.ReorderSessions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, sequenceMeta(result))
}

// Recalculate godoc
// @Summary Re-date every session on consecutive working days from an anchor
// @Description anchorDate accepts YYYY-MM-DD or a relative phrase such as "next monday". Empty uses the round start date.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Round ID"
// @Param payload body dto.RecalculateDatesRequest false "Anchor date"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /rounds/{id}/sessions/recalculate [post]
func (h *SessionHandler) Recalculate(c *gin.Context) {
	var req dto.RecalculateDatesRequest
	// An empty body recalculates from the round start.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recalculation payload"))
		return
	}
	result, err := h.service.RecalculateDates(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, sequenceMeta(result))
}

// Recommend godoc
// @Summary Rank available instructors and classrooms for a slot
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Round ID"
// @Param payload body dto.RecommendRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id}/recommendations [post]
func (h *SessionHandler) Recommend(c *gin.Context) {
	var req dto.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recommendation payload"))
		return
	}
	result, cached, err := h.service.Recommend(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"cached": cached})
}

func sequenceMeta(result *dto.SequenceResponse) map[string]interface{} {
	return map[string]interface{}{
		"calendarDegraded": result.CalendarDegraded,
		"calendarVersion":  result.CalendarVersion,
	}
}
