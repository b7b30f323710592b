package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler/internal/middleware"
	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/response"
)

// actorFromContext names who triggered a change for the audit log line.
func actorFromContext(c *gin.Context) string {
	if actor := middleware.ActorID(c); actor != "" {
		return actor
	}
	return "anonymous"
}

// respondError renders blocked writes with their conflicts; everything else goes through response.Error.
func respondError(c *gin.Context, err error) {
	var blocked *models.ConflictSetError
	if errors.As(err, &blocked) {
		appErr := appErrors.FromError(err)
		c.Header("Cache-Control", "no-store")
		c.JSON(appErr.Status, response.Envelope{
			Data:  gin.H{"conflicts": blocked.Conflicts},
			Error: appErr,
		})
		return
	}
	response.Error(c, err)
}
