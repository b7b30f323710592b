package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/course-scheduler/internal/dto"
	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/service"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/response"
)

const defaultWorkingDays = 5

// CalendarHandler answers working-day questions against the loaded holiday table.
type CalendarHandler struct {
	calendar  *service.CalendarService
	validator *validator.Validate
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(calendar *service.CalendarService, validate *validator.Validate) *CalendarHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &CalendarHandler{calendar: calendar, validator: validate}
}

// WorkingDays godoc
// @Summary List the next working days after a date
// @Tags Calendar
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD), excluded from the result"
// @Param days query int false "Number of working days (default 5, max 366)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/working-days [get]
func (h *CalendarHandler) WorkingDays(c *gin.Context) {
	var query dto.WorkingDaysQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if query.Days == 0 {
		query.Days = defaultWorkingDays
	}
	current, err := service.ParseDate(query.From)
	if err != nil {
		response.Error(c, err)
		return
	}

	days := make([]string, 0, query.Days)
	for len(days) < query.Days {
		if current, err = h.calendar.NextWorkingDay(current); err != nil {
			response.Error(c, err)
			return
		}
		days = append(days, current.Format(models.DateLayout))
	}
	response.JSON(c, http.StatusOK, dto.WorkingDaysResponse{
		From:             query.From,
		Days:             days,
		CalendarVersion:  h.calendar.Version(),
		CalendarDegraded: h.calendar.Degraded(),
	})
}
