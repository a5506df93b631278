package models

import (
	"fmt"
	"time"
)

// AgentTarget identifies one monitored agent, fixed at dashboard startup
type AgentTarget struct {
	Name         string        `json:"name" yaml:"name" mapstructure:"name"`
	Host         string        `json:"host" yaml:"host" mapstructure:"host"`
	Port         int           `json:"port" yaml:"port" mapstructure:"port"`
	PollInterval time.Duration `json:"-" yaml:"poll_interval" mapstructure:"poll_interval"`
}

// MetricsURL returns the agent endpoint the poller fetches
func (t AgentTarget) MetricsURL() string {
	return fmt.Sprintf("http://%s:%d/metrics", t.Host, t.Port)
}

// PollState represents where a target's poll loop currently is
type PollState string

const (
	PollIdle       PollState = "idle"
	PollRequesting PollState = "requesting"
	PollBackoff    PollState = "backoff"
)

// TargetStatus represents the live polling status of one target
type TargetStatus struct {
	Name                string    `json:"name"`
	URL                 string    `json:"url"`
	State               PollState `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastSuccess         time.Time `json:"last_success,omitzero"`
	LastError           string    `json:"last_error,omitempty"`
	NextDelay           string    `json:"next_delay,omitempty"`
}
