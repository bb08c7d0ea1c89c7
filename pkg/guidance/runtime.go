// pkg/guidance/runtime.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package guidance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brunoga/deep"
	"github.com/iancoleman/orderedmap"

	"github.com/jwiedeman/apollo64-sub003/pkg/clock"
	applog "github.com/jwiedeman/apollo64-sub003/pkg/log"
	"github.com/jwiedeman/apollo64-sub003/pkg/util"
)

const defaultHistoryLimit = 50

// Entry is a guidance-computer entry submitted to ExecuteEntry. Verb
// and Noun accept anything parseInt can coerce (an int, a float, or a
// numeral string) so callers fed from JSON/YAML don't need to
// pre-convert. Registers, when non-nil, is walked in insertion order —
// an ordinary Go map cannot make that guarantee, which is why the
// ordered-map type is used here instead.
type Entry struct {
	MacroID   string
	Verb      any
	Noun      any
	Registers *orderedmap.OrderedMap
	Sequence  []string
}

// Metadata carries the call's provenance and defaults that the entry
// itself doesn't specify.
type Metadata struct {
	GetSeconds  float64
	Actor       string
	Source      string
	Program     string
	EventID     string
	AutopilotID string
	Note        string
}

// Result is the outcome of ExecuteEntry.
type Result struct {
	Status      string // "applied" | "rejected"
	CommandID   string
	MacroID     string
	Verb        *int
	Noun        *int
	Program     string
	RequiresAck bool
	Issues      []string
}

// AckDetails carries the provenance of an Acknowledge call.
type AckDetails struct {
	GetSeconds float64
	Actor      string
	Source     string
	Note       string
}

// Runtime is the Guidance Computer Runtime (GR): it accepts entries,
// resolves verb/noun against a macro, updates display/program/
// annunciator/register state, and issues or clears acknowledgement
// requests. It is single-threaded and synchronous — every call
// mutates state and returns before another call may proceed (spec §5);
// callers needing concurrent access must serialize themselves.
type Runtime struct {
	lg      *applog.Logger
	catalog *MacroCatalog

	program      Program
	display      Display
	annunciators Annunciators
	registers    []RegisterValue
	history      *util.BoundedHistory[HistoryEntry]
	pendingAck   *PendingAck
	metrics      Metrics

	nextCommandID int
}

// NewRuntime constructs a Runtime with the given history limit. lg may
// be nil (all logging calls become no-ops, per pkg/log's nil-safe
// convention).
func NewRuntime(lg *applog.Logger, historyLimit int) *Runtime {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Runtime{
		lg:      lg,
		catalog: NewMacroCatalog("", ""),
		history: util.NewBoundedHistory[HistoryEntry](historyLimit),
	}
}

// LoadCatalog atomically replaces the runtime's macro catalog.
func (r *Runtime) LoadCatalog(c *MacroCatalog) {
	r.catalog = c
}

// Catalog returns the runtime's current macro catalog.
func (r *Runtime) Catalog() *MacroCatalog {
	return r.catalog
}

// ExecuteEntry evaluates a guidance-computer entry: resolving its
// macro, verb, and noun, merging registers, and either applying the
// result to runtime state or rejecting it (spec §4.2).
func (r *Runtime) ExecuteEntry(entry Entry, meta Metadata) Result {
	macro, haveMacro := r.catalog.Get(entry.MacroID)

	var macroVerb, macroNoun *int
	if haveMacro {
		macroVerb, macroNoun = macro.Verb, macro.Noun
	}

	verb, verbIssue := resolveVerbOrNoun("Verb", entry.Verb, macroVerb)
	noun, nounIssue := resolveVerbOrNoun("Noun", entry.Noun, macroNoun)

	var issues []string
	if verbIssue != "" {
		issues = append(issues, verbIssue)
	}
	if nounIssue != "" {
		issues = append(issues, nounIssue)
	}

	if verb == nil || noun == nil {
		return r.reject(entry.MacroID, "Verb/Noun missing or non-numeric")
	}

	sequence := normalizeSequence(entry.Sequence)
	registers, registerValues := r.mergeRegisters(macro, entry.Registers)

	mode := macro.Mode
	if !haveMacro {
		mode = ModeUtility
	}

	requiresAck := mode == ModeEntry && !containsToken(sequence, "PRO")
	selfAck := containsToken(sequence, "PRO")

	carryKeyRel := mode == ModeEntry && containsKeyRel(sequence)
	var keyRel bool
	if carryKeyRel {
		keyRel = r.annunciators.KeyRel
	}

	resolvedProgram := macro.Program
	if resolvedProgram == "" {
		resolvedProgram = meta.Program
	}
	if resolvedProgram == "" {
		resolvedProgram = r.program.Current
	}
	majorMode := util.Select(macro.MajorMode != "", macro.MajorMode, r.program.MajorMode)
	subMode := util.Select(macro.SubMode != "", macro.SubMode, r.program.SubMode)

	actor := meta.Actor
	source := meta.Source

	r.nextCommandID++
	commandID := fmt.Sprintf("AGC_CMD_%05d", r.nextCommandID)

	r.metrics.Commands++
	if entry.MacroID != "" {
		r.metrics.Macros++
	}
	if selfAck {
		r.metrics.Acknowledged++
	}

	get := clock.FormatGET(meta.GetSeconds)
	hist := HistoryEntry{
		ID:          commandID,
		MacroID:     entry.MacroID,
		MacroLabel:  macro.Label,
		Program:     resolvedProgram,
		Verb:        verb,
		Noun:        noun,
		Labels:      util.DuplicateSlice(macroLabels(macro)),
		Mode:        mode,
		Actor:       actor,
		Source:      source,
		AutopilotID: meta.AutopilotID,
		EventID:     meta.EventID,
		GetSeconds:  meta.GetSeconds,
		GET:         get,
		Note:        meta.Note,
		Registers:   registers,
		Issues:      util.DuplicateSlice(issues),
	}
	r.history.PushFront(hist)

	r.registers = registerValues
	r.program = Program{Current: resolvedProgram, MajorMode: majorMode, SubMode: subMode}
	r.display = Display{Verb: verb, Noun: noun, Labels: macroLabels(macro), MacroID: entry.MacroID, Mode: mode}
	r.annunciators = Annunciators{
		Pro:        requiresAck,
		KeyRel:     keyRel,
		OprErr:     false,
		Temp:       r.annunciators.Temp,
		GimbalLock: r.annunciators.GimbalLock,
	}
	if requiresAck {
		r.pendingAck = &PendingAck{
			MacroID:         entry.MacroID,
			MacroLabel:      macro.Label,
			Program:         resolvedProgram,
			IssuedAtSeconds: meta.GetSeconds,
		}
	} else {
		r.pendingAck = nil
	}

	r.lg.Log(applog.SeverityNotice, meta.GetSeconds, fmt.Sprintf("AGC %s %s", entry.MacroID, formatVerbNoun(verb, noun)))

	return Result{
		Status:      "applied",
		CommandID:   commandID,
		MacroID:     entry.MacroID,
		Verb:        verb,
		Noun:        noun,
		Program:     resolvedProgram,
		RequiresAck: requiresAck,
		Issues:      issues,
	}
}

func (r *Runtime) reject(macroID, reason string) Result {
	r.metrics.Rejected++
	r.metrics.Commands++
	r.annunciators.OprErr = true
	r.annunciators.Pro = false
	r.annunciators.KeyRel = false
	r.pendingAck = nil

	r.lg.Warn("guidance entry rejected",
		"macro_id", macroID,
		"reason", reason)

	return Result{
		Status: "rejected",
		Issues: []string{reason},
	}
}

// Acknowledge clears a pending acknowledgement. It is idempotent: a
// call with no pending acknowledgement is a no-op returning false.
func (r *Runtime) Acknowledge(details AckDetails) bool {
	if r.pendingAck == nil {
		return false
	}

	macroID := r.pendingAck.MacroID
	if macroID == "" {
		macroID = "macro"
	}

	r.pendingAck = nil
	r.annunciators.Pro = false
	r.annunciators.KeyRel = false
	r.metrics.Acknowledged++

	r.lg.Log(applog.SeverityNotice, details.GetSeconds, fmt.Sprintf("AGC PRO acknowledged for %s", macroID))

	return true
}

// Snapshot returns a deep-copied view of the runtime's current state.
func (r *Runtime) Snapshot() Snapshot {
	return Snapshot{
		Program:      r.program,
		Display:      deep.MustCopy(r.display),
		Annunciators: r.annunciators,
		Registers:    deep.MustCopy(r.registers),
		History:      deep.MustCopy(r.history.Slice()),
		PendingAck:   deep.MustCopy(r.pendingAck),
		Metrics:      r.metrics,
	}
}

// Metrics returns the runtime's lifetime counters.
func (r *Runtime) Metrics() Metrics {
	return r.metrics
}

///////////////////////////////////////////////////////////////////////////
// helpers

func macroLabels(m Macro) []string {
	if m.Label == "" {
		return nil
	}
	return []string{m.Label}
}

func formatVerbNoun(verb, noun *int) string {
	v := "??"
	if verb != nil {
		v = fmt.Sprintf("%02d", *verb)
	}
	n := "??"
	if noun != nil {
		n = fmt.Sprintf("%02d", *noun)
	}
	return fmt.Sprintf("V%sN%s", v, n)
}

// resolveVerbOrNoun implements the verb/noun resolution policy common
// to both fields: prefer the entry's value; if the macro also defines
// one and they differ, record an issue; otherwise fall back to the
// macro's value.
func resolveVerbOrNoun(label string, entryVal any, macroVal *int) (*int, string) {
	if entryInt, ok := parseIntLoose(entryVal); ok {
		if macroVal != nil && *macroVal != entryInt {
			issue := fmt.Sprintf("%s differs from macro definition (entry=%d, macro=%d)", label, entryInt, *macroVal)
			return &entryInt, issue
		}
		return &entryInt, ""
	}
	if macroVal != nil {
		v := *macroVal
		return &v, ""
	}
	return nil, ""
}

func parseIntLoose(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float32:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return n, true
	default:
		return 0, false
	}
}

func normalizeSequence(seq []string) []string {
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

func containsToken(sequence []string, token string) bool {
	for _, s := range sequence {
		if s == token {
			return true
		}
	}
	return false
}

func containsKeyRel(sequence []string) bool {
	for _, s := range sequence {
		if s == "KEY REL" || s == "KEYREL" {
			return true
		}
	}
	return false
}

// normalizeRegisterValue applies the entry-register normalization
// rule: numeric values and trimmed strings pass through, falsy values
// (nil, false, "", zero) become an empty string.
func normalizeRegisterValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if !t {
			return ""
		}
		return t
	case string:
		trimmed := strings.TrimSpace(t)
		return trimmed
	case int:
		if t == 0 {
			return ""
		}
		return t
	case int32:
		if t == 0 {
			return ""
		}
		return t
	case int64:
		if t == 0 {
			return ""
		}
		return t
	case float32:
		if t == 0 {
			return ""
		}
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return t
	default:
		return v
	}
}

// mergeRegisters builds the merged register value map (preserving the
// macro's register order, then appending any new ids from entry in
// insertion order) and the parallel []RegisterValue display list.
func (r *Runtime) mergeRegisters(macro Macro, entryRegisters *orderedmap.OrderedMap) (map[string]any, []RegisterValue) {
	merged := orderedmap.New()
	defs := make(map[string]RegisterDef, len(macro.Registers))
	for _, rd := range macro.Registers {
		defs[rd.ID] = rd
		merged.Set(rd.ID, "")
	}

	if entryRegisters != nil {
		for _, k := range entryRegisters.Keys() {
			v, _ := entryRegisters.Get(k)
			key := strings.ToUpper(strings.TrimSpace(k))
			merged.Set(key, normalizeRegisterValue(v))
		}
	}

	values := make(map[string]any, len(merged.Keys()))
	display := make([]RegisterValue, 0, len(merged.Keys()))
	for _, id := range merged.Keys() {
		v, _ := merged.Get(id)
		values[id] = v
		def := defs[id]
		display = append(display, RegisterValue{
			ID:     id,
			Label:  def.Label,
			Units:  def.Units,
			Format: def.Format,
			Value:  v,
		})
	}

	return values, display
}
