package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/services"

	"github.com/gin-gonic/gin"
)

// targetOverview joins a target's polling status with its newest sample.
type targetOverview struct {
	models.TargetStatus
	Latest *models.Sample `json:"latest,omitempty"`
}

// DashboardController serves the aggregated view over all agents.
type DashboardController struct {
	Poller     *services.Poller
	Aggregator *services.Aggregator
	Alerts     *services.AlertEngine
}

func NewDashboardController(poller *services.Poller, aggregator *services.Aggregator, alerts *services.AlertEngine) *DashboardController {
	return &DashboardController{Poller: poller, Aggregator: aggregator, Alerts: alerts}
}

// GetTargets returns every configured target with its polling state and
// latest sample.
func (dc *DashboardController) GetTargets(c *gin.Context) {
	statuses := dc.Poller.Statuses()
	targets := make([]targetOverview, 0, len(statuses))
	for _, status := range statuses {
		item := targetOverview{TargetStatus: status}
		if sample, ok := dc.Aggregator.Latest(status.Name); ok {
			item.Latest = &sample
		}
		targets = append(targets, item)
	}
	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

// GetAgents lists every agent the aggregator has data for.
func (dc *DashboardController) GetAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": dc.Aggregator.Agents()})
}

// GetAgentHistory returns the agent's metric windows. Optional query
// parameters narrow the response: metric selects a single series,
// duration (for example 5m) trims each series to that recent span.
func (dc *DashboardController) GetAgentHistory(c *gin.Context) {
	name := c.Param("name")
	history, ok := dc.Aggregator.History(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown agent: " + name})
		return
	}

	var cutoff time.Time
	if raw := c.Query("duration"); raw != "" {
		span, err := time.ParseDuration(raw)
		if err != nil || span <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration parameter: " + raw})
			return
		}
		cutoff = time.Now().Add(-span)
	}

	if metric := c.Query("metric"); metric != "" {
		if !models.KnownMetric(metric) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "unknown metric: " + metric + " (tracked: " + strings.Join(models.TrackedMetrics, ", ") + ")",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"agent": name, "metric": metric, "points": pointsSince(history[metric], cutoff)})
		return
	}

	if !cutoff.IsZero() {
		for metric, points := range history {
			history[metric] = pointsSince(points, cutoff)
		}
	}
	c.JSON(http.StatusOK, gin.H{"agent": name, "metrics": history})
}

// pointsSince trims a chronological series to points after cutoff. A zero
// cutoff keeps everything.
func pointsSince(points []models.MetricPoint, cutoff time.Time) []models.MetricPoint {
	if cutoff.IsZero() {
		if points == nil {
			return []models.MetricPoint{}
		}
		return points
	}
	for i, point := range points {
		if point.Timestamp.After(cutoff) {
			return points[i:]
		}
	}
	return []models.MetricPoint{}
}

// GetAlerts returns every rule state plus how many are firing.
func (dc *DashboardController) GetAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"firing": dc.Alerts.Firing(),
		"states": dc.Alerts.States(),
	})
}

// GetEvents returns the retained alert event history, oldest first. An
// optional limit query parameter keeps only the most recent entries.
func (dc *DashboardController) GetEvents(c *gin.Context) {
	events := dc.Alerts.Events()

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter: " + raw})
			return
		}
		if len(events) > limit {
			events = events[len(events)-limit:]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
