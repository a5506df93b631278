package controllers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/controllers"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/routes"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgentRouter(t *testing.T) (*gin.Engine, *services.SampleStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewSampleStore(16, nil)
	runner := services.NewStressRunner("stress-ng", time.Second)
	runner.SetCommand(func(models.StressClass, int) (string, []string) {
		return "/bin/sh", []string{"-c", "sleep 30"}
	})
	hub := services.NewHub()
	t.Cleanup(func() {
		hub.Stop()
		runner.Shutdown()
	})

	r := gin.New()
	routes.RegisterAgentRoutes(r,
		controllers.NewMetricsController(store),
		controllers.NewStressController(runner),
		controllers.NewWebSocketController(hub),
	)
	return r, store
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func TestMetricsEndpointBeforeFirstSample(t *testing.T) {
	r, _ := newAgentRouter(t)

	w := doRequest(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	decodeJSON(t, w, &body)
	assert.Equal(t, false, body["ready"])
	assert.Contains(t, body["error"], "no sample")
}

func TestMetricsEndpointServesLatestSample(t *testing.T) {
	r, store := newAgentRouter(t)
	store.Update(models.Sample{
		Timestamp:  time.Now(),
		CPUStat:    &models.CPUStat{CPUPercent: 33.3},
		MemoryStat: &models.MemoryStat{MemoryPercent: 60},
	})

	w := doRequest(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sample models.Sample
	decodeJSON(t, w, &sample)
	assert.Equal(t, 33.3, sample.CPUPercent)
	assert.Equal(t, 60.0, sample.MemoryPercent)
}

func TestMetricsHistoryEndpoint(t *testing.T) {
	r, store := newAgentRouter(t)
	now := time.Now()
	store.Update(models.Sample{Timestamp: now.Add(-2 * time.Minute), CPUStat: &models.CPUStat{CPUPercent: 1}})
	store.Update(models.Sample{Timestamp: now.Add(-30 * time.Second), CPUStat: &models.CPUStat{CPUPercent: 2}})
	store.Update(models.Sample{Timestamp: now, CPUStat: &models.CPUStat{CPUPercent: 3}})

	var body struct {
		Count   int             `json:"count"`
		Dropped uint64          `json:"dropped"`
		Samples []models.Sample `json:"samples"`
	}

	w := doRequest(r, http.MethodGet, "/metrics/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &body)
	assert.Equal(t, 3, body.Count)
	require.Len(t, body.Samples, 3)
	assert.Equal(t, 1.0, body.Samples[0].CPUPercent, "oldest first")

	w = doRequest(r, http.MethodGet, "/metrics/history?duration=90s", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &body)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Samples, 2)
	assert.Equal(t, 2.0, body.Samples[0].CPUPercent)
}

func TestMetricsHistoryRejectsBadDuration(t *testing.T) {
	r, _ := newAgentRouter(t)

	for _, raw := range []string{"banana", "-5s", "0s"} {
		w := doRequest(r, http.MethodGet, "/metrics/history?duration="+raw, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}

func TestStressLifecycleOverHTTP(t *testing.T) {
	r, _ := newAgentRouter(t)

	w := doRequest(r, http.MethodPost, "/stress", `{"class":"cpu","duration":5}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var job models.StressJob
	decodeJSON(t, w, &job)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, models.StressCPU, job.Class)
	assert.Equal(t, models.JobRunning, job.State)
	assert.Equal(t, 5, job.DurationSeconds)

	// Only one job at a time.
	w = doRequest(r, http.MethodPost, "/stress", `{"class":"io"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodGet, "/stress", "")
	require.Equal(t, http.StatusOK, w.Code)
	var current models.StressJob
	decodeJSON(t, w, &current)
	assert.Equal(t, job.ID, current.ID)

	// Stopping must name the running job's class.
	w = doRequest(r, http.MethodDelete, "/stress/io", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodDelete, "/stress/cpu", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stopped models.StressJob
	decodeJSON(t, w, &stopped)
	assert.Equal(t, job.ID, stopped.ID)
	assert.Equal(t, models.JobStopped, stopped.State)

	w = doRequest(r, http.MethodDelete, "/stress/cpu", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The finished job stays queryable.
	w = doRequest(r, http.MethodGet, "/stress", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &current)
	assert.Equal(t, models.JobStopped, current.State)
}

func TestStressRejectsBadRequests(t *testing.T) {
	r, _ := newAgentRouter(t)

	w := doRequest(r, http.MethodPost, "/stress", `{"class":"quantum"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	decodeJSON(t, w, &body)
	assert.Contains(t, body["error"], "quantum")

	w = doRequest(r, http.MethodPost, "/stress", `{"class":"cpu","duration":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/stress", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodDelete, "/stress/quantum", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing above should have recorded a job.
	w = doRequest(r, http.MethodGet, "/stress", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStressDefaultsDuration(t *testing.T) {
	r, _ := newAgentRouter(t)

	w := doRequest(r, http.MethodPost, "/stress", `{"class":"cpu"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var job models.StressJob
	decodeJSON(t, w, &job)
	assert.Equal(t, services.DefaultStressDuration, job.DurationSeconds)

	doRequest(r, http.MethodDelete, "/stress/cpu", "")
}

func TestAgentHealthz(t *testing.T) {
	r, _ := newAgentRouter(t)

	w := doRequest(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	decodeJSON(t, w, &body)
	assert.Equal(t, "ok", body["status"])
}
