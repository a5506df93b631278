package controllers

import (
	"net/http"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/services"

	"github.com/gin-gonic/gin"
)

// MetricsController serves the agent's local samples.
type MetricsController struct {
	Store *services.SampleStore
}

func NewMetricsController(store *services.SampleStore) *MetricsController {
	return &MetricsController{Store: store}
}

// GetMetrics returns the newest sample, or 503 until the first one has
// been collected.
func (mc *MetricsController) GetMetrics(c *gin.Context) {
	sample, ok := mc.Store.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "no sample collected yet",
			"ready": false,
		})
		return
	}
	c.JSON(http.StatusOK, sample)
}

// GetHistory returns retained samples, oldest first. An optional
// duration query parameter such as 90s limits the response to that
// recent span.
func (mc *MetricsController) GetHistory(c *gin.Context) {
	var since time.Time
	if raw := c.Query("duration"); raw != "" {
		span, err := time.ParseDuration(raw)
		if err != nil || span <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration parameter: " + raw})
			return
		}
		since = time.Now().Add(-span)
	}

	samples := mc.Store.History(since)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(samples),
		"dropped": mc.Store.Drops(),
		"samples": samples,
	})
}
