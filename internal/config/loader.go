package config

import (
	"os"
	"path/filepath"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "cloud-vitals.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/cloud-vitals"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'cloud-vitals init' to create one, or specify a path with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. cloud-vitals.yaml in the current directory
// 3. ~/.config/cloud-vitals/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if
// no config file exists anywhere in the search order. The returned path
// is empty when defaults were used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	// Targets may omit poll_interval; fall back to the sample cadence.
	for i := range cfg.Dashboard.Targets {
		if cfg.Dashboard.Targets[i].PollInterval <= 0 {
			cfg.Dashboard.Targets[i].PollInterval = cfg.Agent.SampleInterval
		}
	}

	return cfg, nil
}

// setDefaults seeds viper so partially written files still unmarshal into
// a complete config. Durations are strings; viper parses them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.listen", ":5000")
	v.SetDefault("agent.sample_interval", "1s")
	v.SetDefault("agent.channel_size", 64)
	v.SetDefault("agent.history_size", 300)
	v.SetDefault("agent.grace_period", "5s")
	v.SetDefault("agent.stress_binary", "stress-ng")
	v.SetDefault("dashboard.listen", ":8080")
	v.SetDefault("dashboard.window_span", "15m")
	v.SetDefault("dashboard.request_timeout", "2s")
	v.SetDefault("dashboard.backoff_base", "2s")
	v.SetDefault("dashboard.backoff_max", "1m")
	v.SetDefault("dashboard.event_limit", 256)
}
