// pkg/guidance/macro.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package guidance implements the Guidance Computer Runtime (GR): a
// stateful evaluator of guidance-computer macro entries that maintains
// program, display, annunciator, register, and acknowledgement state.
package guidance

// Mode is the macro's operating mode.
type Mode string

const (
	ModeEntry   Mode = "entry"
	ModeMonitor Mode = "monitor"
	ModeUtility Mode = "utility"
)

// RegisterDef is one register slot a macro declares, in display order.
type RegisterDef struct {
	ID     string
	Label  string
	Units  string
	Format string
}

// Macro is an immutable descriptor keyed by a stable string id. It
// carries everything the runtime needs to resolve verb/noun/program
// and seed the register display when an entry invokes it.
type Macro struct {
	ID           string
	Label        string
	Description  string
	Verb         *int
	Noun         *int
	Mode         Mode
	Program      string
	MajorMode    string
	SubMode      string
	Registers    []RegisterDef
	Requirements []any // opaque, passed through unexamined
}
