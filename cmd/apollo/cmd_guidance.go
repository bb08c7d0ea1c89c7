// cmd/apollo/cmd_guidance.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"

	"github.com/jwiedeman/apollo64-sub003/pkg/catalog"
	"github.com/jwiedeman/apollo64-sub003/pkg/guidance"
)

var (
	guidanceCatalogPath string
	guidanceMacroID     string
	guidanceVerb        int
	guidanceNoun        int
	guidanceRegisters   string
	guidanceSequence    string
	guidanceGetSeconds  float64
	guidanceActor       string
	guidanceSource      string
	guidanceProgram     string
	guidanceEventID     string
	guidanceNote        string
)

var guidanceCmd = &cobra.Command{
	Use:   "guidance",
	Short: "Exercise the Guidance Computer Runtime",
}

var guidanceExecCmd = &cobra.Command{
	Use:   "exec",
	Short: "Replay a single guidance entry against a catalog and print the resulting state",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.LoadCatalogFile(guidanceCatalogPath)
		if err != nil {
			return err
		}

		r := guidance.NewRuntime(lg, 50)
		r.LoadCatalog(c)

		entry := guidance.Entry{MacroID: guidanceMacroID}
		if guidanceVerb != 0 {
			entry.Verb = guidanceVerb
		}
		if guidanceNoun != 0 {
			entry.Noun = guidanceNoun
		}
		if guidanceRegisters != "" {
			regs := orderedmap.New()
			for _, pair := range strings.Split(guidanceRegisters, ",") {
				kv := strings.SplitN(pair, "=", 2)
				if len(kv) != 2 {
					continue
				}
				regs.Set(strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
			}
			entry.Registers = regs
		}
		if guidanceSequence != "" {
			for _, tok := range strings.Split(guidanceSequence, ",") {
				entry.Sequence = append(entry.Sequence, strings.TrimSpace(tok))
			}
		}

		meta := guidance.Metadata{
			GetSeconds: guidanceGetSeconds,
			Actor:      guidanceActor,
			Source:     guidanceSource,
			Program:    guidanceProgram,
			EventID:    guidanceEventID,
			Note:       guidanceNote,
		}

		result := r.ExecuteEntry(entry, meta)
		fmt.Printf("status=%s commandId=%s requiresAck=%t\n", result.Status, result.CommandID, result.RequiresAck)
		if len(result.Issues) > 0 {
			fmt.Printf("issues: %s\n", strings.Join(result.Issues, "; "))
		}

		snap := r.Snapshot()
		fmt.Printf("program=%s majorMode=%s subMode=%s\n", snap.Program.Current, snap.Program.MajorMode, snap.Program.SubMode)
		fmt.Printf("annunciators: pro=%t keyRel=%t oprErr=%t\n", snap.Annunciators.Pro, snap.Annunciators.KeyRel, snap.Annunciators.OprErr)
		if snap.PendingAck != nil {
			fmt.Printf("pendingAck: macro=%s issuedAt=%s\n", snap.PendingAck.MacroID, strconv.FormatFloat(snap.PendingAck.IssuedAtSeconds, 'f', 1, 64))
		}
		return nil
	},
}

func init() {
	guidanceExecCmd.Flags().StringVar(&guidanceCatalogPath, "catalog", "", "path to a YAML macro catalog (required)")
	guidanceExecCmd.Flags().StringVar(&guidanceMacroID, "macro-id", "", "macro id to execute")
	guidanceExecCmd.Flags().IntVar(&guidanceVerb, "verb", 0, "override verb")
	guidanceExecCmd.Flags().IntVar(&guidanceNoun, "noun", 0, "override noun")
	guidanceExecCmd.Flags().StringVar(&guidanceRegisters, "registers", "", "comma-separated id=value pairs, e.g. R1=002:44:12,R2=12.5")
	guidanceExecCmd.Flags().StringVar(&guidanceSequence, "sequence", "", "comma-separated keystroke sequence, e.g. VERB,NOUN,ENTER")
	guidanceExecCmd.Flags().Float64Var(&guidanceGetSeconds, "get-seconds", 0, "ground elapsed time in seconds")
	guidanceExecCmd.Flags().StringVar(&guidanceActor, "actor", "", "actor tag")
	guidanceExecCmd.Flags().StringVar(&guidanceSource, "source", "", "source tag")
	guidanceExecCmd.Flags().StringVar(&guidanceProgram, "program", "", "program override")
	guidanceExecCmd.Flags().StringVar(&guidanceEventID, "event-id", "", "associated event id")
	guidanceExecCmd.Flags().StringVar(&guidanceNote, "note", "", "free-text note attached to the history entry")
	_ = guidanceExecCmd.MarkFlagRequired("catalog")
	_ = guidanceExecCmd.MarkFlagRequired("macro-id")

	guidanceCmd.AddCommand(guidanceExecCmd)
}
