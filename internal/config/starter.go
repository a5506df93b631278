package config

import (
	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"

	"gopkg.in/yaml.v3"
)

const starterHeader = `# cloud-vitals configuration.
#
# One file serves both programs: "cloud-vitals agent" reads the agent
# section and "cloud-vitals dashboard" reads the dashboard section, so
# the same file can be shipped to every host.
# Durations use Go notation: 500ms, 1s, 2m, 1h.

`

// starterFile mirrors Config with string durations so the generated YAML
// reads the way people write it.
type starterFile struct {
	Agent struct {
		Listen         string   `yaml:"listen"`
		SampleInterval string   `yaml:"sample_interval"`
		ChannelSize    int      `yaml:"channel_size"`
		HistorySize    int      `yaml:"history_size"`
		GracePeriod    string   `yaml:"grace_period"`
		Volumes        []string `yaml:"volumes,omitempty"`
		StressBinary   string   `yaml:"stress_binary"`
	} `yaml:"agent"`
	Dashboard struct {
		Listen         string          `yaml:"listen"`
		WindowSpan     string          `yaml:"window_span"`
		RequestTimeout string          `yaml:"request_timeout"`
		BackoffBase    string          `yaml:"backoff_base"`
		BackoffMax     string          `yaml:"backoff_max"`
		EventLimit     int             `yaml:"event_limit"`
		Targets        []starterTarget `yaml:"targets"`
		Rules          []starterRule   `yaml:"rules"`
	} `yaml:"dashboard"`
}

type starterTarget struct {
	Name         string `yaml:"name"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	PollInterval string `yaml:"poll_interval"`
}

type starterRule struct {
	Metric     string  `yaml:"metric"`
	Comparator string  `yaml:"comparator"`
	Limit      float64 `yaml:"limit"`
	Sustained  string  `yaml:"sustained"`
}

// Starter renders the commented starter configuration that
// "cloud-vitals init" writes: defaults plus one example target and two
// example alert rules.
func Starter() ([]byte, error) {
	defaults := DefaultConfig()

	var f starterFile
	f.Agent.Listen = defaults.Agent.Listen
	f.Agent.SampleInterval = defaults.Agent.SampleInterval.String()
	f.Agent.ChannelSize = defaults.Agent.ChannelSize
	f.Agent.HistorySize = defaults.Agent.HistorySize
	f.Agent.GracePeriod = defaults.Agent.GracePeriod.String()
	f.Agent.StressBinary = defaults.Agent.StressBinary

	f.Dashboard.Listen = defaults.Dashboard.Listen
	f.Dashboard.WindowSpan = defaults.Dashboard.WindowSpan.String()
	f.Dashboard.RequestTimeout = defaults.Dashboard.RequestTimeout.String()
	f.Dashboard.BackoffBase = defaults.Dashboard.BackoffBase.String()
	f.Dashboard.BackoffMax = defaults.Dashboard.BackoffMax.String()
	f.Dashboard.EventLimit = defaults.Dashboard.EventLimit
	f.Dashboard.Targets = []starterTarget{
		{Name: "local", Host: "127.0.0.1", Port: 5000, PollInterval: "1s"},
	}
	f.Dashboard.Rules = []starterRule{
		{Metric: models.MetricCPUPercent, Comparator: models.CompareAbove, Limit: 90, Sustained: "30s"},
		{Metric: models.MetricMemoryPercent, Comparator: models.CompareAbove, Limit: 85, Sustained: "1m"},
	}

	body, err := yaml.Marshal(&f)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "could not render starter config", "")
	}
	return append([]byte(starterHeader), body...), nil
}
