package cli

import (
	"log"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/config"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cloud-vitals",
	Short: "Host vitals monitoring for small fleets",
	Long: `Cloud-Vitals watches the vitals of a fleet of hosts.

Run "cloud-vitals agent" on each machine to expose its CPU, memory,
swap, disk, and network readings over HTTP, along with an endpoint that
generates synthetic load for failure drills. Run "cloud-vitals
dashboard" somewhere central to poll every agent, keep rolling history
per metric, and raise alerts when a threshold stays breached.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default ./cloud-vitals.yaml, then ~/.config/cloud-vitals/config.yaml)")
}

// Execute runs the command line interface.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves and loads the config file, falling back to defaults
// when none exists.
func loadConfig(tag string) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if path == "" {
		log.Printf("%s no config file found, using defaults", tag)
	} else {
		log.Printf("%s loading config from %s", tag, path)
	}
	return cfg, nil
}
