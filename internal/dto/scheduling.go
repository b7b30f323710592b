package dto

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/course-scheduler/internal/models"
)

// CreateRoundRequest opens a new round of a course.
type CreateRoundRequest struct {
	CourseID  string `json:"courseId" validate:"required"`
	Name      string `json:"name" validate:"required,max=200"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
}

// SessionRequest is the payload for creating or editing a session.
type SessionRequest struct {
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" validate:"required,hhmm"`
	EndTime      string `json:"endTime" validate:"required,hhmm"`
	InstructorID string `json:"instructorId"`
	ClassroomID  string `json:"classroomId"`
	SubjectID    string `json:"subjectId" validate:"required"`
	Status       string `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled rescheduled"`
	// Force persists despite conflicts under the block policy.
	Force bool `json:"force"`
}

// ConflictCheckRequest asks for conflicts of a draft session without saving it.
type ConflictCheckRequest struct {
	SessionID    string `json:"sessionId"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" validate:"required,hhmm"`
	EndTime      string `json:"endTime" validate:"required,hhmm"`
	InstructorID string `json:"instructorId"`
	ClassroomID  string `json:"classroomId"`
	CheckCohort  bool   `json:"checkCohort"`
}

// ReorderSessionsRequest moves one session to a new 0-based position.
type ReorderSessionsRequest struct {
	SessionID   string `json:"sessionId" validate:"required"`
	ToIndex     int    `json:"toIndex" validate:"min=0"`
	Recalculate bool   `json:"recalculate"`
}

// RecalculateDatesRequest re-dates the round from an anchor; empty means the round start date.
type RecalculateDatesRequest struct {
	AnchorDate string `json:"anchorDate" validate:"omitempty,max=64"`
}

// RecommendRequest describes the slot resources are wanted for.
type RecommendRequest struct {
	SessionID string `json:"sessionId"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
	SubjectID string `json:"subjectId" validate:"required"`
	Headcount int    `json:"headcount" validate:"min=0"`
	Limit     int    `json:"limit" validate:"min=0,max=50"`
}

// WorkingDaysQuery lists the next working days from a date.
type WorkingDaysQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	Days int    `form:"days" validate:"omitempty,min=1,max=366"`
}

// SessionMutationResponse returns the stored session with any conflicts detected on write.
type SessionMutationResponse struct {
	Session   *models.Session   `json:"session"`
	Conflicts []models.Conflict `json:"conflicts"`
}

// ConflictCheckResponse reports conflicts for a draft session.
type ConflictCheckResponse struct {
	HasConflicts bool              `json:"hasConflicts"`
	Conflicts    []models.Conflict `json:"conflicts"`
}

// SequenceResponse is the round's sequence after a reorder or recalculation.
type SequenceResponse struct {
	RoundID          string           `json:"roundId"`
	Sessions         []models.Session `json:"sessions"`
	Changed          int              `json:"changed"`
	AnchorDate       *time.Time       `json:"anchorDate,omitempty"`
	EndDate          *time.Time       `json:"endDate,omitempty"`
	CalendarVersion  string           `json:"calendarVersion,omitempty"`
	CalendarDegraded bool             `json:"calendarDegraded"`
}

// WorkingDaysResponse lists consecutive working days.
type WorkingDaysResponse struct {
	From             string   `json:"from"`
	Days             []string `json:"days"`
	CalendarVersion  string   `json:"calendarVersion"`
	CalendarDegraded bool     `json:"calendarDegraded"`
}

// RegisterValidations installs the custom tags used by scheduling payloads.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
}
