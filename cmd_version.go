package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var commandVersion = &cobra.Command{
	Use:   "version",
	Short: "Print current version of memguard",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "memguard %s (%s) built on %s\n", version, commit, date)
		fmt.Fprintf(cmd.OutOrStdout(), "Environment: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	mainCommand.AddCommand(commandVersion)
}
