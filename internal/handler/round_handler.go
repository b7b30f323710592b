package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler/internal/dto"
	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/service"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/response"
)

type roundManager interface {
	Create(ctx context.Context, req dto.CreateRoundRequest) (*models.RoundView, error)
	Get(ctx context.Context, id string) (*models.RoundView, error)
	Lock(ctx context.Context, id, actor string) (*models.RoundView, error)
	Unlock(ctx context.Context, id, actor string) (*models.RoundView, error)
}

// RoundHandler exposes round lifecycle endpoints.
type RoundHandler struct {
	service roundManager
}

// NewRoundHandler constructs the handler.
func NewRoundHandler(svc *service.RoundService) *RoundHandler {
	return &RoundHandler{service: svc}
}

// Create godoc
// @Summary Create a course round
// @Tags Rounds
// @Accept json
// @Produce json
// @Param payload body dto.CreateRoundRequest true "Round payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rounds [post]
func (h *RoundHandler) Create(c *gin.Context) {
	var req dto.CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid round payload"))
		return
	}
	round, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, round)
}

// Get godoc
// @Summary Get a round with its sessions
// @Tags Rounds
// @Produce json
// @Param id path string true "Round ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rounds/{id} [get]
func (h *RoundHandler) Get(c *gin.Context) {
	round, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, round)
}

// Lock godoc
// @Summary Lock a round so its sessions can no longer change
// @Tags Rounds
// @Produce json
// @Param id path string true "Round ID"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id}/lock [post]
func (h *RoundHandler) Lock(c *gin.Context) {
	round, err := h.service.Lock(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, round)
}

// Unlock godoc
// @Summary Unlock a round for further edits
// @Tags Rounds
// @Produce json
// @Param id path string true "Round ID"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id}/unlock [post]
func (h *RoundHandler) Unlock(c *gin.Context) {
	round, err := h.service.Unlock(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, round)
}
