package main

import (
	"fmt"

	"memguard/config"

	"github.com/spf13/cobra"
)

var commandCheck = &cobra.Command{
	Use:   "check",
	Short: "Check configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, dotenv := config.ResolvePath(configPath)
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if dotenv {
			fmt.Fprintln(out, "loaded environment from .env")
		}
		fmt.Fprintf(out, "%s: ok\n", cfg.Path)
		fmt.Fprintf(out, "  thresholds: %v%% or %v GB, every %v\n", cfg.RAMPercentThreshold, cfg.RAMGBThreshold, cfg.CheckInterval)
		fmt.Fprintf(out, "  whitelist: %d pid(s), %d name(s), %d user(s)\n", len(cfg.WhitelistPIDs), len(cfg.WhitelistNames), len(cfg.WhitelistUsers))
		fmt.Fprintf(out, "  dry run: %t, log file: %s, syslog: %t\n", cfg.DryRun, cfg.LogFile, cfg.EnableSyslog)
		return nil
	},
}

func init() {
	mainCommand.AddCommand(commandCheck)
}
