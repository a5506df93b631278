package controllers

import (
	"net/http"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"

	"github.com/gin-gonic/gin"
)

// Healthz is the liveness probe for both the agent and the dashboard.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// respondError writes a coded error as JSON with the matching HTTP status.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": errors.Message(err)})
}

func statusFor(err error) int {
	switch {
	case errors.IsCode(err, errors.ErrConflict):
		return http.StatusConflict
	case errors.IsCode(err, errors.ErrInvalid):
		return http.StatusBadRequest
	case errors.IsCode(err, errors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
