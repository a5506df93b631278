package controllers

import (
	"net/http"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/services"

	"github.com/gin-gonic/gin"
)

// stressRequest is the POST /stress body. Duration is a pointer so an
// omitted value can fall back to the default while an explicit zero is
// rejected.
type stressRequest struct {
	Class    string `json:"class"`
	Duration *int   `json:"duration"`
}

// StressController starts, stops, and reports stress jobs.
type StressController struct {
	Runner *services.StressRunner
}

func NewStressController(runner *services.StressRunner) *StressController {
	return &StressController{Runner: runner}
}

// StartStress launches a stress job and returns it with 202. A job
// already in flight yields 409, a bad class or duration 400.
func (sc *StressController) StartStress(c *gin.Context) {
	var req stressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	job, err := sc.Runner.Start(req.Class, req.Duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// GetStress returns the current or last stress job.
func (sc *StressController) GetStress(c *gin.Context) {
	job, ok := sc.Runner.Status()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stress job has been started"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// StopStress terminates the active job of the class in the path.
func (sc *StressController) StopStress(c *gin.Context) {
	job, err := sc.Runner.Stop(c.Param("class"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
