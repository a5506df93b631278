package main

import (
	"fmt"
	"os"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/cli"
)

// Set via ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
