// cmd/apollo/cmd_catalog.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwiedeman/apollo64-sub003/pkg/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect guidance macro catalogs",
}

var catalogLintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Validate a YAML macro catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.LoadCatalogFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("catalog %q (%s): %d macro(s) loaded\n", c.Description, c.Version, c.Len())
		for id, m := range c.Macros() {
			verb, noun := "-", "-"
			if m.Verb != nil {
				verb = fmt.Sprintf("%d", *m.Verb)
			}
			if m.Noun != nil {
				noun = fmt.Sprintf("%d", *m.Noun)
			}
			fmt.Printf("  %-24s verb=%-3s noun=%-3s mode=%-8s program=%s\n", id, verb, noun, m.Mode, m.Program)
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogLintCmd)
}
