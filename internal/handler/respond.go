package handler

import (
	"log"
	"strconv"

	"internship_portal/internal/apperror"

	"github.com/gin-gonic/gin"
)

// respondError writes the short user-facing message and logs the full cause
func respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Type == apperror.InternalError || appErr.Type == apperror.TransportError || appErr.Type == apperror.TimeoutError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
	} else if appErr.Err != nil {
		log.Printf("INFO: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(appErr.StatusCode(), appErr.ToResponse())
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, apperror.Validation("Invalid request: "+err.Error(), nil))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperror.Validation("Invalid ID format", err))
		return 0, false
	}
	return id, true
}
