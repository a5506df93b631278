package cli

import (
	"fmt"
	"os"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/config"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Writes a commented cloud-vitals.yaml into the current directory
(or to --config) with defaults, one example target, and two example
alert rules to edit from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit() error {
	path := configPath
	if path == "" {
		path = config.ConfigFileName
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s already exists", path),
			"pass --force to overwrite it")
	}

	data, err := config.Starter()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("could not write %s", path),
			"check the directory exists and is writable")
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}
