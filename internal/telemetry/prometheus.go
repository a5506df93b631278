package telemetry

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SamplesCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudvitals_samples_collected_total",
			Help: "Total number of vitals samples collected",
		},
	)

	SamplesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudvitals_samples_dropped_total",
			Help: "Samples discarded because the store queue was full",
		},
	)

	SampleReadErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudvitals_sample_read_errors_total",
			Help: "Counter reads that failed during sampling",
		},
		[]string{"subsystem"},
	)

	JobsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudvitals_stress_jobs_started_total",
			Help: "Stress jobs accepted, by class",
		},
		[]string{"class"},
	)

	JobsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudvitals_stress_jobs_finished_total",
			Help: "Stress jobs reaching a terminal state, by state",
		},
		[]string{"state"},
	)

	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudvitals_polls_total",
			Help: "Poll attempts per target",
		},
		[]string{"target"},
	)

	PollFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudvitals_poll_failures_total",
			Help: "Failed poll attempts per target",
		},
		[]string{"target"},
	)

	AlertTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudvitals_alert_events_total",
			Help: "Alert events emitted, by kind",
		},
		[]string{"agent", "metric", "kind"},
	)

	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cloudvitals_websocket_clients",
			Help: "Currently connected WebSocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(SamplesCollected)
	prometheus.MustRegister(SamplesDropped)
	prometheus.MustRegister(SampleReadErrors)
	prometheus.MustRegister(JobsStarted)
	prometheus.MustRegister(JobsFinished)
	prometheus.MustRegister(PollsTotal)
	prometheus.MustRegister(PollFailures)
	prometheus.MustRegister(AlertTransitions)
	prometheus.MustRegister(WebsocketClients)
}

// Handler adapts the prometheus scrape handler for gin routing.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
