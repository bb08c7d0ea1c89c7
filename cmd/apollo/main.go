// cmd/apollo/main.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package main implements apollo, an operator CLI that exercises the
// control core's guidance runtime and input service — the entry point
// and command registration hub. It has no subcommand for the manual
// action dispatcher. Subcommands live in their own cmd_*.go files.
//
// # File Index
//
//   - main.go          - entry point, rootCmd, global flags
//   - cmd_catalog.go   - catalogCmd, catalogLintCmd
//   - cmd_guidance.go  - guidanceCmd, guidanceExecCmd
//   - cmd_bindings.go  - bindingsCmd, bindingsListCmd
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	applog "github.com/jwiedeman/apollo64-sub003/pkg/log"
)

var (
	logLevel string
	logDir   string

	lg *applog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "apollo",
	Short: "Exercise the Apollo64 control core (guidance, input)",
	Long: `apollo is an operator CLI over two of the control core's components:
the Guidance Computer Runtime and the UI Input Service. It has no
subcommand for the Manual Action Dispatcher. It is scaffolding for
manual exercise of the core, not a mission-data loader or renderer.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lg = applog.New(logLevel, logDir)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, notice, warn, error")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for the rotating log file (defaults to the user config dir)")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(guidanceCmd)
	rootCmd.AddCommand(bindingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
