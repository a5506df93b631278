package models

import (
	"fmt"
	"time"
)

// Comparator directions for alert rules
const (
	CompareAbove = "above"
	CompareBelow = "below"
)

// AlertRule represents one configured threshold check
type AlertRule struct {
	Metric     string        `json:"metric" yaml:"metric" mapstructure:"metric"`
	Comparator string        `json:"comparator" yaml:"comparator" mapstructure:"comparator"`
	Limit      float64       `json:"limit" yaml:"limit" mapstructure:"limit"`
	Sustained  time.Duration `json:"sustained" yaml:"sustained" mapstructure:"sustained"`
}

// Breached reports whether a value violates the rule's limit
func (r AlertRule) Breached(v float64) bool {
	if r.Comparator == CompareBelow {
		return v < r.Limit
	}
	return v > r.Limit
}

// Label returns a short human-readable form, e.g. "cpu_percent above 90"
func (r AlertRule) Label() string {
	return fmt.Sprintf("%s %s %g", r.Metric, r.Comparator, r.Limit)
}

// AlertStatus represents a hysteresis phase
type AlertStatus string

const (
	AlertNormal     AlertStatus = "normal"
	AlertBreaching  AlertStatus = "breaching"
	AlertAlerting   AlertStatus = "alerting"
	AlertRecovering AlertStatus = "recovering"
)

// AlertState represents the hysteresis state of one rule on one agent
type AlertState struct {
	Agent          string      `json:"agent"`
	Rule           AlertRule   `json:"rule"`
	Status         AlertStatus `json:"status"`
	BreachStart    time.Time   `json:"breach_start,omitzero"`
	ClearStart     time.Time   `json:"clear_start,omitzero"`
	LastTransition time.Time   `json:"last_transition,omitzero"`
	LastValue      float64     `json:"last_value"`
}

// Kinds of alert events
const (
	EventFired   = "fired"
	EventCleared = "cleared"
)

// AlertEvent represents an alert firing or clearing
type AlertEvent struct {
	Agent     string    `json:"agent"`
	Metric    string    `json:"metric"`
	Rule      string    `json:"rule"`
	Kind      string    `json:"kind"`
	Value     float64   `json:"value"`
	Limit     float64   `json:"limit"`
	Timestamp time.Time `json:"timestamp"`
}
