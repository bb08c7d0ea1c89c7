// pkg/dispatch/dispatch.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dispatch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/brunoga/deep"
	"github.com/google/uuid"

	"github.com/jwiedeman/apollo64-sub003/pkg/bus"
	"github.com/jwiedeman/apollo64-sub003/pkg/clock"
	applog "github.com/jwiedeman/apollo64-sub003/pkg/log"
	"github.com/jwiedeman/apollo64-sub003/pkg/util"
)

const (
	defaultHistoryLimit = 50
	lbToKg              = 0.45359237
)

// TypeHandler receives every successfully dispatched ActionRecord of
// its registered type; AnyHandler receives every dispatched record
// regardless of type. Both are invoked after the record is queued and
// pushed to history, before the bus events fire.
type TypeHandler func(ActionRecord)
type AnyHandler func(ActionRecord)

// Options configures a Dispatcher. Queue is required; everything else
// has a usable zero value.
type Options struct {
	Logger       *applog.Logger
	Bus          *bus.Bus
	Queue        Queue
	Recorder     Recorder
	RecordIntents bool
	HistoryLimit int
	TimeProvider func() float64
}

// Dispatcher is the Manual Action Dispatcher (MD): it normalizes
// high-level manual action intents into canonical queue records,
// enqueues them, and mirrors every successful dispatch onto handlers
// and the event bus (spec §4.3).
type Dispatcher struct {
	lg           *applog.Logger
	bus          *bus.Bus
	queue        Queue
	recorder     Recorder
	recordIntents bool
	timeProvider func() float64

	mu           sync.Mutex
	history      *util.BoundedHistory[ActionRecord]
	anyHandlers  []AnyHandler
	typeHandlers map[ActionType][]TypeHandler

	nextSeq int
}

func NewDispatcher(opts Options) *Dispatcher {
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &Dispatcher{
		lg:            opts.Logger,
		bus:           opts.Bus,
		queue:         opts.Queue,
		recorder:      opts.Recorder,
		recordIntents: opts.RecordIntents,
		timeProvider:  opts.TimeProvider,
		history:       util.NewBoundedHistory[ActionRecord](limit),
		typeHandlers:  make(map[ActionType][]TypeHandler),
	}
}

// OnAny registers a handler invoked for every successful dispatch.
func (d *Dispatcher) OnAny(h AnyHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.anyHandlers = append(d.anyHandlers, h)
}

// OnType registers a handler invoked only for dispatches of the given
// type.
func (d *Dispatcher) OnType(t ActionType, h TypeHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.typeHandlers[t] = append(d.typeHandlers[t], h)
}

// History returns a deep-copied, oldest-first view of accepted
// dispatches.
func (d *Dispatcher) History() []ActionRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return deep.MustCopy(d.history.Slice())
}

///////////////////////////////////////////////////////////////////////////
// generic, string-tagged entry point

// Dispatch routes a generic, snake_case-keyed intent to the matching
// typed Dispatch* method by its "type" field (spec §6: "input type is
// lowercased and routed to one of checklist_ack/resource_delta/
// propellant_burn/dsky_entry; unknown type fails"). Callers that know
// their action type at compile time should prefer the typed methods
// directly; this exists for callers (a queue consumer, a CLI, a test
// harness replaying recorded intents) that only have a record map.
func (d *Dispatcher) Dispatch(record map[string]any) (ActionRecord, error) {
	actionType := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", record["type"])))
	switch ActionType(actionType) {
	case ActionChecklistAck:
		return d.DispatchChecklistAck(checklistAckSpecFromRecord(record))
	case ActionResourceDelta:
		return d.DispatchResourceDelta(resourceDeltaSpecFromRecord(record))
	case ActionPropellantBurn:
		return d.DispatchPropellantBurn(propellantBurnSpecFromRecord(record))
	case ActionDskyEntry:
		return d.DispatchDskyEntry(dskyEntrySpecFromRecord(record))
	default:
		return ActionRecord{}, unsupportedActionTypeError(actionType)
	}
}

func stringField(record map[string]any, key string) string {
	v, _ := record[key].(string)
	return v
}

func floatPtrField(record map[string]any, key string) *float64 {
	switch v := record[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

// timestampAliasKeys is the full set of key names the MD timestamp
// resolution rule (spec §4.3) treats as candidates for a call's "get"
// timestamp, in priority order.
var timestampAliasKeys = []string{
	"getSeconds", "get_seconds", "get",
	"timeSeconds", "time", "timestampSeconds", "timestamp",
}

// resolveTimestampAliasField returns the first finite value found among
// a generic record's aliased timestamp keys. Numeric values are taken
// as-is; string values are accepted in either GET (HHH:MM:SS) or bare
// numeric-seconds form via clock.ParseGET.
func resolveTimestampAliasField(record map[string]any) *float64 {
	for _, key := range timestampAliasKeys {
		v, present := record[key]
		if !present {
			continue
		}
		switch t := v.(type) {
		case float64:
			if !math.IsNaN(t) && !math.IsInf(t, 0) {
				f := t
				return &f
			}
		case int:
			f := float64(t)
			return &f
		case int32:
			f := float64(t)
			return &f
		case int64:
			f := float64(t)
			return &f
		case string:
			if f, ok := clock.ParseGET(t); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return &f
			}
		}
	}
	return nil
}

func intField(record map[string]any, key string) int {
	switch v := record[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func checklistAckSpecFromRecord(record map[string]any) ChecklistAckSpec {
	return ChecklistAckSpec{
		ID:                 stringField(record, "id"),
		EventID:            stringField(record, "event_id"),
		Count:              intField(record, "count"),
		RetryWindowSeconds: floatPtrField(record, "retry_window_seconds"),
		RetryUntilSeconds:  floatPtrField(record, "retry_until"),
		Actor:              stringField(record, "actor"),
		Source:             stringField(record, "source"),
		Note:               stringField(record, "note"),
		ChecklistID:        stringField(record, "checklist_id"),
		StepNumber:         intField(record, "step_number"),
		GetSeconds:         resolveTimestampAliasField(record),
	}
}

func resourceDeltaSpecFromRecord(record map[string]any) ResourceDeltaSpec {
	effect, _ := record["effect"].(map[string]any)
	context, _ := record["context"].(map[string]any)
	return ResourceDeltaSpec{
		ID:         stringField(record, "id"),
		Effect:     effect,
		Context:    context,
		Actor:      stringField(record, "actor"),
		Source:     stringField(record, "source"),
		Note:       stringField(record, "note"),
		GetSeconds: resolveTimestampAliasField(record),
	}
}

func propellantBurnSpecFromRecord(record map[string]any) PropellantBurnSpec {
	return PropellantBurnSpec{
		ID:         stringField(record, "id"),
		Tank:       stringField(record, "tank"),
		MassKg:     record["mass_kg"],
		AmountLb:   record["amount_lb"],
		Actor:      stringField(record, "actor"),
		Source:     stringField(record, "source"),
		Note:       stringField(record, "note"),
		GetSeconds: resolveTimestampAliasField(record),
	}
}

func dskyEntrySpecFromRecord(record map[string]any) DskyEntrySpec {
	registers, _ := record["registers"].(map[string]any)
	return DskyEntrySpec{
		ID:         stringField(record, "id"),
		MacroID:    stringField(record, "macro_id"),
		Verb:       record["verb"],
		Noun:       record["noun"],
		Program:    stringField(record, "program"),
		Registers:  registers,
		Sequence:   record["sequence"],
		Actor:      stringField(record, "actor"),
		Source:     stringField(record, "source"),
		Note:       stringField(record, "note"),
		GetSeconds: resolveTimestampAliasField(record),
	}
}

///////////////////////////////////////////////////////////////////////////
// public dispatch methods

// DispatchChecklistAck dispatches a checklist-step acknowledgement
// (spec §4.3).
func (d *Dispatcher) DispatchChecklistAck(spec ChecklistAckSpec) (ActionRecord, error) {
	if err := d.requireQueue(); err != nil {
		return ActionRecord{}, err
	}
	if strings.TrimSpace(spec.EventID) == "" {
		return ActionRecord{}, ErrChecklistAckRequiresEventID
	}

	count := spec.Count
	if count < 1 {
		count = 1
	}

	actor := strings.ToUpper(strings.TrimSpace(spec.Actor))
	source := strings.ToLower(strings.TrimSpace(spec.Source))
	if source == "" {
		if actor != "" {
			source = strings.ToLower(actor)
		} else {
			source = "ui"
		}
	}

	record := map[string]any{
		"type":     string(ActionChecklistAck),
		"event_id": spec.EventID,
		"count":    count,
	}
	if spec.ChecklistID != "" {
		record["checklist_id"] = spec.ChecklistID
	}
	if spec.StepNumber != 0 {
		record["step_number"] = spec.StepNumber
	}
	if spec.RetryWindowSeconds != nil && *spec.RetryWindowSeconds > 0 {
		record["retry_window_seconds"] = *spec.RetryWindowSeconds
	}
	if spec.RetryUntilSeconds != nil {
		record["retry_until"] = *spec.RetryUntilSeconds
	}
	if spec.Note != "" {
		record["note"] = spec.Note
	}

	get := d.resolveTimestamp(spec.GetSeconds)

	return d.enqueue(enqueueArgs{
		id:          spec.ID,
		actionType:  ActionChecklistAck,
		getSeconds:  get,
		actor:       actor,
		source:      source,
		note:        spec.Note,
		queueRecord: record,
		onSuccess: func(rec ActionRecord) {
			if d.recordIntents && d.recorder != nil {
				d.recorder.RecordChecklistAck(util.DuplicateMap(record))
			}
		},
	})
}

// DispatchResourceDelta dispatches an arbitrary resource adjustment
// (spec §4.3).
func (d *Dispatcher) DispatchResourceDelta(spec ResourceDeltaSpec) (ActionRecord, error) {
	if err := d.requireQueue(); err != nil {
		return ActionRecord{}, err
	}

	record := map[string]any{
		"type":   string(ActionResourceDelta),
		"effect": deep.MustCopy(spec.Effect),
	}
	if spec.Context != nil {
		record["context"] = deep.MustCopy(spec.Context)
	}
	if spec.Note != "" {
		record["note"] = spec.Note
	}

	get := d.resolveTimestamp(spec.GetSeconds)

	return d.enqueue(enqueueArgs{
		id:          spec.ID,
		actionType:  ActionResourceDelta,
		getSeconds:  get,
		actor:       strings.ToUpper(strings.TrimSpace(spec.Actor)),
		source:      strings.ToLower(strings.TrimSpace(spec.Source)),
		note:        spec.Note,
		queueRecord: record,
	})
}

// DispatchPropellantBurn dispatches a manual propellant burn (spec
// §4.3).
func (d *Dispatcher) DispatchPropellantBurn(spec PropellantBurnSpec) (ActionRecord, error) {
	if err := d.requireQueue(); err != nil {
		return ActionRecord{}, err
	}

	tank := strings.ToLower(strings.TrimSpace(spec.Tank))
	if tank == "" {
		return ActionRecord{}, ErrPropellantBurnRequiresTank
	}
	if !strings.HasSuffix(tank, "_kg") {
		tank += "_kg"
	}

	massKg, ok := resolvePropellantMass(spec.MassKg, spec.AmountLb)
	if !ok {
		return ActionRecord{}, ErrPropellantBurnRequiresAmount
	}

	record := map[string]any{
		"type":    string(ActionPropellantBurn),
		"tank":    tank,
		"mass_kg": massKg,
	}
	if spec.Note != "" {
		record["note"] = spec.Note
	}

	get := d.resolveTimestamp(spec.GetSeconds)

	return d.enqueue(enqueueArgs{
		id:          spec.ID,
		actionType:  ActionPropellantBurn,
		getSeconds:  get,
		actor:       strings.ToUpper(strings.TrimSpace(spec.Actor)),
		source:      strings.ToLower(strings.TrimSpace(spec.Source)),
		note:        spec.Note,
		queueRecord: record,
	})
}

// DispatchDskyEntry dispatches a manually-keyed DSKY entry, mirrored
// into the queue for the guidance runtime to later evaluate (spec
// §4.3).
func (d *Dispatcher) DispatchDskyEntry(spec DskyEntrySpec) (ActionRecord, error) {
	if err := d.requireQueue(); err != nil {
		return ActionRecord{}, err
	}

	verb, verbOK := parseIntLoose(spec.Verb)
	noun, nounOK := parseIntLoose(spec.Noun)
	haveMacro := strings.TrimSpace(spec.MacroID) != ""
	if !haveMacro && !(verbOK && nounOK) {
		return ActionRecord{}, ErrDskyEntryRequiresMacroOrVerbNoun
	}

	record := map[string]any{
		"type": string(ActionDskyEntry),
	}
	if haveMacro {
		record["macro_id"] = spec.MacroID
	}
	if verbOK {
		record["verb"] = verb
	}
	if nounOK {
		record["noun"] = noun
	}
	if spec.Program != "" {
		record["program"] = spec.Program
	}
	if len(spec.Registers) > 0 {
		regs := make(map[string]any, len(spec.Registers))
		for k, v := range spec.Registers {
			regs[strings.ToUpper(strings.TrimSpace(k))] = fmt.Sprintf("%v", v)
		}
		record["registers"] = regs
	}
	if seq := normalizeSequenceInput(spec.Sequence); len(seq) > 0 {
		record["sequence"] = seq
	}
	if spec.Note != "" {
		record["note"] = spec.Note
	}

	get := d.resolveTimestamp(spec.GetSeconds)

	return d.enqueue(enqueueArgs{
		id:          spec.ID,
		actionType:  ActionDskyEntry,
		getSeconds:  get,
		actor:       strings.ToUpper(strings.TrimSpace(spec.Actor)),
		source:      strings.ToLower(strings.TrimSpace(spec.Source)),
		note:        spec.Note,
		queueRecord: record,
		onSuccess: func(rec ActionRecord) {
			if d.recordIntents && d.recorder != nil {
				d.recorder.RecordDskyEntry(util.DuplicateMap(record))
			}
		},
	})
}

///////////////////////////////////////////////////////////////////////////
// shared enqueue protocol

type enqueueArgs struct {
	id          string
	actionType  ActionType
	getSeconds  float64
	actor       string
	source      string
	note        string
	queueRecord map[string]any
	onSuccess   func(ActionRecord)
}

// enqueue implements the common enqueue protocol (spec §4.3): attempt
// queue.AddAction; on error, log and re-raise; on success, build the
// ActionRecord, push to history, log, notify handlers, and emit the
// mirror bus events.
func (d *Dispatcher) enqueue(a enqueueArgs) (ActionRecord, error) {
	id := a.id
	if id == "" {
		id = uuid.NewString()
	}
	a.queueRecord["id"] = id

	if err := d.queue.AddAction(a.queueRecord); err != nil {
		d.lg.Error("manual action enqueue failed",
			"type", string(a.actionType),
			"id", id,
			"reason", err.Error())
		return ActionRecord{}, err
	}

	record := ActionRecord{
		ID:          id,
		Type:        a.actionType,
		GetSeconds:  a.getSeconds,
		Actor:       a.actor,
		Source:      a.source,
		Payload:     a.queueRecord,
		QueueAction: string(a.actionType),
		Note:        a.note,
		Timestamp:   clock.FormatGET(a.getSeconds),
	}

	d.mu.Lock()
	d.history.Push(record)
	anyHandlers := make([]AnyHandler, len(d.anyHandlers))
	copy(anyHandlers, d.anyHandlers)
	typeHandlers := make([]TypeHandler, len(d.typeHandlers[a.actionType]))
	copy(typeHandlers, d.typeHandlers[a.actionType])
	d.mu.Unlock()

	d.lg.Log(applog.SeverityInfo, a.getSeconds, fmt.Sprintf("manual action dispatched: %s", a.actionType),
		"id", id, "actor", a.actor)

	if a.onSuccess != nil {
		a.onSuccess(record)
	}

	for _, h := range anyHandlers {
		h(record)
	}
	for _, h := range typeHandlers {
		h(record)
	}

	if d.bus != nil {
		d.bus.Emit("ui:manual", record)
		d.bus.Emit("ui:manual:"+string(a.actionType), record)
	}

	return record, nil
}

func (d *Dispatcher) requireQueue() error {
	if d.queue == nil {
		return ErrQueueNotConfigured
	}
	return nil
}

// resolveTimestamp implements the MD timestamp-resolution rule (spec
// §4.3): prefer the call's explicit GetSeconds, else the dispatcher's
// TimeProvider, else zero.
func (d *Dispatcher) resolveTimestamp(explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	if d.timeProvider != nil {
		return d.timeProvider()
	}
	return 0
}

// resolvePropellantMass accepts a numeric or numeric-string mass/amount
// (Design Note (d): "accept both string and numeric amounts — treat
// strings as SI floats, never as unit-less") and prefers an explicit
// mass over a pound amount requiring conversion.
func resolvePropellantMass(massKg, amountLb any) (float64, bool) {
	if v, ok := parseFloatLoose(massKg); ok {
		return v, true
	}
	if v, ok := parseFloatLoose(amountLb); ok {
		return v * lbToKg, true
	}
	return 0, false
}

// parseFloatLoose mirrors parseIntLoose for float-valued fields:
// numeric types pass through, numeric strings are parsed as SI floats.
func parseFloatLoose(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		if t != t { // NaN
			return 0, false
		}
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
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
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// normalizeSequenceInput accepts either a string (split on newlines,
// then commas) or a []string, trimming every token.
func normalizeSequenceInput(seq any) []string {
	switch t := seq.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		var parts []string
		if strings.Contains(s, "\n") {
			parts = strings.Split(s, "\n")
		} else {
			parts = strings.Split(s, ",")
		}
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}
