// pkg/guidance/state.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package guidance

// Program is the current program/major-mode/sub-mode triple.
type Program struct {
	Current   string
	MajorMode string
	SubMode   string
}

// Display mirrors what the DSKY display would show: the resolved
// verb/noun pair, any labels the macro carries, which macro produced
// the display, and the macro's mode.
type Display struct {
	Verb    *int
	Noun    *int
	Labels  []string
	MacroID string
	Mode    Mode
}

// Annunciators is the fixed set of DSKY warning lamps the runtime
// tracks: pro, keyRel, oprErr, temp, gimbalLock.
type Annunciators struct {
	Pro        bool
	KeyRel     bool
	OprErr     bool
	Temp       bool
	GimbalLock bool
}

// RegisterValue is one entry in the register display: a register
// definition plus its current value (a number or a trimmed string).
type RegisterValue struct {
	ID     string
	Label  string
	Units  string
	Format string
	Value  any
}

// PendingAck describes an outstanding crew acknowledgement required by
// an entry-mode macro that did not self-acknowledge with PRO.
type PendingAck struct {
	MacroID         string
	MacroLabel      string
	Program         string
	IssuedAtSeconds float64
}

// Metrics accumulates lifetime counters across every ExecuteEntry and
// Acknowledge call.
type Metrics struct {
	Commands     int
	Macros       int
	Rejected     int
	Acknowledged int
}

// HistoryEntry is one applied command record, as retained in the
// bounded, newest-first command history.
type HistoryEntry struct {
	ID          string
	MacroID     string
	MacroLabel  string
	Program     string
	Verb        *int
	Noun        *int
	Labels      []string
	Mode        Mode
	Actor       string
	Source      string
	AutopilotID string
	EventID     string
	GetSeconds  float64
	GET         string
	Note        string
	Registers   map[string]any
	Issues      []string
}

// Snapshot is a deep-copied, self-contained view of the runtime's
// state, safe for the caller to retain or mutate freely.
type Snapshot struct {
	Program      Program
	Display      Display
	Annunciators Annunciators
	Registers    []RegisterValue
	History      []HistoryEntry
	PendingAck   *PendingAck
	Metrics      Metrics
}
