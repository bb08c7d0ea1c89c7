// pkg/dispatch/types.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package dispatch implements the Manual Action Dispatcher (MD): it
// normalizes high-level manual action intents (checklist acks,
// resource deltas, propellant burns, DSKY entries) into canonical
// queue records, enqueues them onto an external scheduled queue, and
// emits mirror events and optional intent recordings.
package dispatch

import "errors"

// ActionType is the closed set of manual action intents the
// dispatcher routes.
type ActionType string

const (
	ActionChecklistAck   ActionType = "checklist_ack"
	ActionResourceDelta  ActionType = "resource_delta"
	ActionPropellantBurn ActionType = "propellant_burn"
	ActionDskyEntry      ActionType = "dsky_entry"
)

var (
	ErrQueueNotConfigured               = errors.New("Manual action queue is not configured")
	ErrChecklistAckRequiresEventID       = errors.New("Checklist acknowledgement requires an eventId")
	ErrPropellantBurnRequiresTank        = errors.New("Propellant burn requires a tank identifier")
	ErrPropellantBurnRequiresAmount      = errors.New("Propellant burn requires a numeric amount")
	ErrDskyEntryRequiresMacroOrVerbNoun  = errors.New("DSKY entry requires a macroId or both verb and noun")
)

// unsupportedActionTypeError formats the literal "Unsupported manual
// action type: <type>" message spec §7 requires; it is not a sentinel
// since the message embeds the caller's (unrecognized) type string.
func unsupportedActionTypeError(actionType string) error {
	return errors.New("Unsupported manual action type: " + actionType)
}

// ActionRecord is the normalized record the dispatcher produces for
// every successful dispatch: what was built for the queue, who
// triggered it, and when.
type ActionRecord struct {
	ID          string
	Type        ActionType
	GetSeconds  float64
	Actor       string
	Source      string
	Payload     map[string]any
	QueueAction string
	Note        string
	Timestamp   string // formatted GET
}

// ChecklistAckSpec is the intent for a checklist-step acknowledgement.
type ChecklistAckSpec struct {
	ID                 string
	EventID            string
	Count              int
	RetryWindowSeconds *float64
	RetryUntilSeconds  *float64
	Actor              string
	Source             string
	Note               string
	ChecklistID        string
	StepNumber         int
	GetSeconds         *float64
}

// ResourceDeltaSpec is the intent for an arbitrary consumable/resource
// adjustment (propellant, power, water, etc. deltas the downstream sim
// interprets).
type ResourceDeltaSpec struct {
	ID         string
	Effect     map[string]any
	Context    map[string]any
	Actor      string
	Source     string
	Note       string
	GetSeconds *float64
}

// PropellantBurnSpec is the intent for a manual propellant burn.
// Exactly one of MassKg or AmountLb should be set; both accept a
// numeric value or a numeric string (treated as SI units, never as
// unit-less) — AmountLb converts to kg at 1 lb = 0.45359237 kg.
type PropellantBurnSpec struct {
	ID         string
	Tank       string
	MassKg     any
	AmountLb   any
	Actor      string
	Source     string
	Note       string
	GetSeconds *float64
}

// DskyEntrySpec is the intent for a manually-keyed DSKY entry, mirrored
// into the queue for the guidance runtime to later evaluate.
type DskyEntrySpec struct {
	ID         string
	MacroID    string
	Verb       any
	Noun       any
	Program    string
	Registers  map[string]any
	Sequence   any // string (newline/comma separated) or []string
	Actor      string
	Source     string
	Note       string
	GetSeconds *float64
}
