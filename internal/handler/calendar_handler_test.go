package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler/internal/dto"
	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/service"
)

func newCalendarRouter(t *testing.T, calendar *models.HolidayCalendar) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(service.NewCalendarService(calendar), nil)
	router := gin.New()
	router.GET("/calendar/working-days", handler.WorkingDays)
	return router
}

func septemberCalendar(t *testing.T) *models.HolidayCalendar {
	t.Helper()
	return models.NewHolidayCalendar("test-2025", 2025, 2025, map[string]string{
		"2025-09-08": "Holiday",
	})
}

func TestCalendarHandlerWorkingDaysSkipsHolidays(t *testing.T) {
	router := newCalendarRouter(t, septemberCalendar(t))
	req, _ := http.NewRequest(http.MethodGet, "/calendar/working-days?from=2025-09-04&days=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	var body dto.WorkingDaysResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, []string{"2025-09-05", "2025-09-09", "2025-09-10"}, body.Days)
	assert.Equal(t, "test-2025", body.CalendarVersion)
	assert.False(t, body.CalendarDegraded)
}

func TestCalendarHandlerDefaultsToFiveDays(t *testing.T) {
	router := newCalendarRouter(t, nil)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/working-days?from=2030-01-04", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.WorkingDaysResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	require.Len(t, body.Days, 5)
	assert.Equal(t, "2030-01-07", body.Days[0])
	assert.True(t, body.CalendarDegraded)
}

func TestCalendarHandlerRejectsBadQuery(t *testing.T) {
	router := newCalendarRouter(t, septemberCalendar(t))
	for _, query := range []string{"", "?from=09/04/2025", "?from=2025-09-04&days=0x", "?from=2025-09-04&days=400"} {
		req, _ := http.NewRequest(http.MethodGet, "/calendar/working-days"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestCalendarHandlerOutsideTable(t *testing.T) {
	router := newCalendarRouter(t, septemberCalendar(t))
	req, _ := http.NewRequest(http.MethodGet, "/calendar/working-days?from=2025-12-30&days=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE", decode(t, w).Error.Code)
}
