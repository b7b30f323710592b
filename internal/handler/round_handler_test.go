package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler/internal/dto"
	internalmiddleware "github.com/noah-isme/course-scheduler/internal/middleware"
	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

type roundManagerMock struct {
	created dto.CreateRoundRequest
	actor   string
	err     error
}

func (m *roundManagerMock) view(id string, locked bool) *models.RoundView {
	state := models.RoundStatePlanning
	if locked {
		state = models.RoundStateLocked
	}
	return &models.RoundView{
		Round: models.Round{ID: id, Name: "Welding 101", StartDate: time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC), IsLocked: locked},
		State: state,
	}
}

func (m *roundManagerMock) Create(ctx context.Context, req dto.CreateRoundRequest) (*models.RoundView, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return m.view("round-1", false), nil
}

func (m *roundManagerMock) Get(ctx context.Context, id string) (*models.RoundView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.view(id, false), nil
}

func (m *roundManagerMock) Lock(ctx context.Context, id, actor string) (*models.RoundView, error) {
	m.actor = actor
	return m.view(id, true), m.err
}

func (m *roundManagerMock) Unlock(ctx context.Context, id, actor string) (*models.RoundView, error) {
	m.actor = actor
	return m.view(id, false), m.err
}

func TestRoundHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &roundManagerMock{}
	handler := &RoundHandler{service: mockSvc}
	body := []byte(`{"courseId":"course-1","name":"Welding 101","startDate":"2025-09-05"}`)
	req, _ := http.NewRequest(http.MethodPost, "/rounds", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "course-1", mockSvc.created.CourseID)
	assert.Equal(t, "2025-09-05", mockSvc.created.StartDate)
}

func TestRoundHandlerCreateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RoundHandler{service: &roundManagerMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/rounds", bytes.NewReader([]byte(`{"courseId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoundHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RoundHandler{service: &roundManagerMock{err: appErrors.Clone(appErrors.ErrNotFound, "round not found")}}
	router := gin.New()
	router.GET("/rounds/:id", handler.Get)

	req, _ := http.NewRequest(http.MethodGet, "/rounds/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["error"]["code"])
}

func TestRoundHandlerLockRecordsActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &roundManagerMock{}
	handler := &RoundHandler{service: mockSvc}
	router := gin.New()
	router.POST("/rounds/:id/lock", func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "coord-7", Role: models.RoleCoordinator})
		c.Next()
	}, internalmiddleware.RBAC(models.RoleAdmin, models.RoleCoordinator), handler.Lock)

	req, _ := http.NewRequest(http.MethodPost, "/rounds/round-1/lock", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "coord-7", mockSvc.actor)
	assert.Contains(t, w.Body.String(), `"state":"locked"`)
}

func TestRoundHandlerUnlockForbiddenForViewer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RoundHandler{service: &roundManagerMock{}}
	router := gin.New()
	router.POST("/rounds/:id/unlock", func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "v-1", Role: models.RoleViewer})
		c.Next()
	}, internalmiddleware.RBAC(models.RoleAdmin, models.RoleCoordinator), handler.Unlock)

	req, _ := http.NewRequest(http.MethodPost, "/rounds/round-1/unlock", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoundHandlerUnlockAnonymousActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &roundManagerMock{}
	handler := &RoundHandler{service: mockSvc}
	router := gin.New()
	router.POST("/rounds/:id/unlock", handler.Unlock)

	req, _ := http.NewRequest(http.MethodPost, "/rounds/round-1/unlock", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", mockSvc.actor)
}
