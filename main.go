package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Build info
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath  string
	forceDryRun bool
)

var mainCommand = &cobra.Command{
	Use:          "memguard",
	Short:        "Terminate processes that exceed memory thresholds",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	mainCommand.PersistentFlags().StringVarP(&configPath, "config", "c", "", "set configuration file path (default $MEMGUARD_CONFIG or config.toml)")
	mainCommand.Flags().BoolVar(&forceDryRun, "dry-run", false, "log decisions without signalling any process")
}

func main() {
	if err := mainCommand.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
