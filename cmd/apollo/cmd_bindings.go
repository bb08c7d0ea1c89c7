// cmd/apollo/cmd_bindings.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwiedeman/apollo64-sub003/pkg/input"
)

var bindingsDevice string

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "Inspect the Input Service's binding tables",
}

var bindingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Dump the active binding table for a device",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := input.NewService(input.Options{Logger: lg, LoadDefaults: true})

		devices := []input.Device{input.DeviceKeyboard, input.DeviceGamepad, input.DeviceN64}
		if bindingsDevice != "" {
			devices = []input.Device{input.Device(bindingsDevice)}
		}

		for _, d := range devices {
			fmt.Printf("%s:\n", d)
			for _, b := range svc.Bindings(d) {
				fmt.Printf("  %-18s priority=%-4d source=%-8s command=%s\n", b.Identifier, b.Priority, b.Source, b.Command)
			}
		}
		return nil
	},
}

func init() {
	bindingsListCmd.Flags().StringVar(&bindingsDevice, "device", "", "keyboard, gamepad, or n64 (default: all)")
	bindingsCmd.AddCommand(bindingsListCmd)
}
