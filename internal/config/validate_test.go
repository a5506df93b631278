package config

import (
	"testing"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Dashboard.Targets = []models.AgentTarget{
		{Name: "web-1", Host: "10.0.0.5", Port: 5000, PollInterval: time.Second},
	}
	cfg.Dashboard.Rules = []models.AlertRule{
		{Metric: models.MetricCPUPercent, Comparator: models.CompareAbove, Limit: 90, Sustained: 30 * time.Second},
	}
	return cfg
}

func TestValidateAgentAcceptsDefaults(t *testing.T) {
	assert.NoError(t, ValidateAgent(DefaultConfig()))
}

func TestValidateAgentRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"empty listen", func(c *Config) { c.Agent.Listen = " " }, "agent.listen"},
		{"zero interval", func(c *Config) { c.Agent.SampleInterval = 0 }, "sample_interval"},
		{"zero channel", func(c *Config) { c.Agent.ChannelSize = 0 }, "channel_size"},
		{"zero history", func(c *Config) { c.Agent.HistorySize = 0 }, "history_size"},
		{"negative grace", func(c *Config) { c.Agent.GracePeriod = -time.Second }, "grace_period"},
		{"empty binary", func(c *Config) { c.Agent.StressBinary = "" }, "stress_binary"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := ValidateAgent(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestValidateDashboardAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, ValidateDashboard(validConfig()))
}

func TestValidateDashboardRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"empty listen", func(c *Config) { c.Dashboard.Listen = "" }, "dashboard.listen"},
		{"zero window", func(c *Config) { c.Dashboard.WindowSpan = 0 }, "window_span"},
		{"zero timeout", func(c *Config) { c.Dashboard.RequestTimeout = 0 }, "request_timeout"},
		{"zero base", func(c *Config) { c.Dashboard.BackoffBase = 0 }, "backoff_base"},
		{"max below base", func(c *Config) { c.Dashboard.BackoffMax = time.Second }, "backoff_max"},
		{"zero event limit", func(c *Config) { c.Dashboard.EventLimit = 0 }, "event_limit"},
		{"no targets", func(c *Config) { c.Dashboard.Targets = nil }, "at least one agent"},
		{"unnamed target", func(c *Config) { c.Dashboard.Targets[0].Name = "" }, "needs a name"},
		{"duplicate names", func(c *Config) {
			c.Dashboard.Targets = append(c.Dashboard.Targets, c.Dashboard.Targets[0])
		}, "duplicate target name"},
		{"missing host", func(c *Config) { c.Dashboard.Targets[0].Host = "" }, "needs a host"},
		{"bad port", func(c *Config) { c.Dashboard.Targets[0].Port = 70000 }, "invalid port"},
		{"zero poll interval", func(c *Config) { c.Dashboard.Targets[0].PollInterval = 0 }, "poll_interval"},
		{"unknown rule metric", func(c *Config) { c.Dashboard.Rules[0].Metric = "load" }, "unknown metric"},
		{"bad comparator", func(c *Config) { c.Dashboard.Rules[0].Comparator = "over" }, "comparator"},
		{"negative limit", func(c *Config) { c.Dashboard.Rules[0].Limit = -1 }, "negative limit"},
		{"zero sustained", func(c *Config) { c.Dashboard.Rules[0].Sustained = 0 }, "sustained"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := ValidateDashboard(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestValidateDashboardAllowsNoRules(t *testing.T) {
	cfg := validConfig()
	cfg.Dashboard.Rules = nil
	assert.NoError(t, ValidateDashboard(cfg))
}
