package config

import (
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
)

// Config represents the complete cloud-vitals.yaml configuration file.
// One file configures both programs; each reads only its own section.
type Config struct {
	Agent     AgentConfig     `yaml:"agent" mapstructure:"agent"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// AgentConfig controls the on-host sampling agent.
type AgentConfig struct {
	// Listen is the host:port the agent API binds.
	Listen string `yaml:"listen" mapstructure:"listen"`

	// SampleInterval is the cadence of vitals collection.
	SampleInterval time.Duration `yaml:"sample_interval" mapstructure:"sample_interval"`

	// ChannelSize bounds the sampler-to-store queue. When the queue is
	// full the oldest unread sample is dropped, never the newest.
	ChannelSize int `yaml:"channel_size" mapstructure:"channel_size"`

	// HistorySize is how many samples the in-memory ring retains.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	// GracePeriod is how long past its requested duration a stress job
	// may keep running before it is force-killed and marked timed out.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`

	// Volumes restricts volume sampling to these mount points.
	// Empty means every physical partition.
	Volumes []string `yaml:"volumes" mapstructure:"volumes"`

	// StressBinary is the load generator executable, resolved via PATH.
	StressBinary string `yaml:"stress_binary" mapstructure:"stress_binary"`
}

// DashboardConfig controls the central polling dashboard.
type DashboardConfig struct {
	// Listen is the host:port the dashboard API binds.
	Listen string `yaml:"listen" mapstructure:"listen"`

	// WindowSpan is how much history each metric window retains.
	WindowSpan time.Duration `yaml:"window_span" mapstructure:"window_span"`

	// RequestTimeout bounds every poll request to an agent.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`

	// BackoffBase is the delay after a target's first consecutive failure.
	// Each further failure doubles the delay up to BackoffMax.
	BackoffBase time.Duration `yaml:"backoff_base" mapstructure:"backoff_base"`

	// BackoffMax caps the failure backoff.
	BackoffMax time.Duration `yaml:"backoff_max" mapstructure:"backoff_max"`

	// EventLimit is how many recent alert events are retained.
	EventLimit int `yaml:"event_limit" mapstructure:"event_limit"`

	// Targets are the agents to poll.
	Targets []models.AgentTarget `yaml:"targets" mapstructure:"targets"`

	// Rules are the alert thresholds applied to every target.
	Rules []models.AlertRule `yaml:"rules" mapstructure:"rules"`
}

// DefaultConfig returns a Config with sensible defaults for a single-host
// setup. Targets and rules are left empty.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Listen:         ":5000",
			SampleInterval: time.Second,
			ChannelSize:    64,
			HistorySize:    300,
			GracePeriod:    5 * time.Second,
			StressBinary:   "stress-ng",
		},
		Dashboard: DashboardConfig{
			Listen:         ":8080",
			WindowSpan:     15 * time.Minute,
			RequestTimeout: 2 * time.Second,
			BackoffBase:    2 * time.Second,
			BackoffMax:     time.Minute,
			EventLimit:     256,
		},
	}
}
