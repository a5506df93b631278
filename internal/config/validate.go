package config

import (
	"fmt"
	"strings"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
)

// ValidateAgent checks the agent section for errors.
func ValidateAgent(cfg *Config) error {
	a := cfg.Agent

	if strings.TrimSpace(a.Listen) == "" {
		return errors.New(errors.ErrConfig,
			"agent.listen must not be empty",
			"Use an address like ':5000' or '127.0.0.1:5000'")
	}
	if a.SampleInterval <= 0 {
		return errors.New(errors.ErrConfig,
			"agent.sample_interval must be positive",
			"A duration like '1s' works well; sub-second intervals burn CPU on the counters themselves")
	}
	if a.ChannelSize < 1 {
		return errors.New(errors.ErrConfig,
			"agent.channel_size must be at least 1",
			"The queue between sampler and store needs room for one sample")
	}
	if a.HistorySize < 1 {
		return errors.New(errors.ErrConfig,
			"agent.history_size must be at least 1",
			"The agent keeps at least the latest sample")
	}
	if a.GracePeriod < 0 {
		return errors.New(errors.ErrConfig,
			"agent.grace_period must not be negative",
			"Use '0s' to kill stress jobs exactly at their duration")
	}
	if strings.TrimSpace(a.StressBinary) == "" {
		return errors.New(errors.ErrConfig,
			"agent.stress_binary must not be empty",
			"The default 'stress-ng' is available via apt on Ubuntu")
	}

	return nil
}

// ValidateDashboard checks the dashboard section for errors.
func ValidateDashboard(cfg *Config) error {
	d := cfg.Dashboard

	if strings.TrimSpace(d.Listen) == "" {
		return errors.New(errors.ErrConfig,
			"dashboard.listen must not be empty",
			"Use an address like ':8080'")
	}
	if d.WindowSpan <= 0 {
		return errors.New(errors.ErrConfig,
			"dashboard.window_span must be positive",
			"A span like '15m' retains fifteen minutes of history per metric")
	}
	if d.RequestTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"dashboard.request_timeout must be positive",
			"Keep it short, e.g. '2s'; a slow agent must not stall its poll loop")
	}
	if d.BackoffBase <= 0 {
		return errors.New(errors.ErrConfig,
			"dashboard.backoff_base must be positive",
			"The delay after a first failure, e.g. '2s'")
	}
	if d.BackoffMax < d.BackoffBase {
		return errors.New(errors.ErrConfig,
			"dashboard.backoff_max must be at least backoff_base",
			"The backoff doubles per failure until it hits this cap")
	}
	if d.EventLimit < 1 {
		return errors.New(errors.ErrConfig,
			"dashboard.event_limit must be at least 1",
			"This bounds the retained alert event log")
	}

	if len(d.Targets) == 0 {
		return errors.New(errors.ErrConfig,
			"dashboard.targets must list at least one agent",
			"Add a target with name, host, and port")
	}
	seen := map[string]bool{}
	for i, t := range d.Targets {
		if strings.TrimSpace(t.Name) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("dashboard.targets[%d] needs a name", i),
				"Target names label history and alerts, e.g. 'web-1'")
		}
		if seen[t.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("duplicate target name '%s'", t.Name),
				"Each target needs a unique name")
		}
		seen[t.Name] = true
		if strings.TrimSpace(t.Host) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("target '%s' needs a host", t.Name),
				"A hostname or IP the dashboard can reach")
		}
		if t.Port < 1 || t.Port > 65535 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("target '%s' has invalid port %d", t.Name, t.Port),
				"Agents listen on 5000 unless configured otherwise")
		}
		if t.PollInterval <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("target '%s' has a non-positive poll_interval", t.Name),
				"Use a duration like '1s', or omit it to inherit the sample interval")
		}
	}

	for i, r := range d.Rules {
		if err := validateRule(i, r); err != nil {
			return err
		}
	}

	return nil
}

func validateRule(i int, r models.AlertRule) error {
	if !models.KnownMetric(r.Metric) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("rules[%d] references unknown metric '%s'", i, r.Metric),
			"Known metrics: "+strings.Join(models.TrackedMetrics, ", "))
	}
	if r.Comparator != models.CompareAbove && r.Comparator != models.CompareBelow {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("rules[%d] has invalid comparator '%s'", i, r.Comparator),
			"Use 'above' or 'below'")
	}
	if r.Limit < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("rules[%d] has a negative limit", i),
			"Percent metrics range 0-100; byte rates start at 0")
	}
	if r.Sustained <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("rules[%d] needs a positive sustained duration", i),
			"The breach must hold this long before the alert fires, e.g. '30s'")
	}
	return nil
}
