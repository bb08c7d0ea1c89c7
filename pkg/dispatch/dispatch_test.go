// pkg/dispatch/dispatch_test.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dispatch

import (
	"errors"
	"testing"

	"github.com/jwiedeman/apollo64-sub003/pkg/bus"
	applog "github.com/jwiedeman/apollo64-sub003/pkg/log"
)

func floatp(v float64) *float64 { return &v }

func TestDispatchChecklistAckQueuesRecordAndRecordsIntent(t *testing.T) {
	q := NewMemoryQueue()
	rec := NewMemoryRecorder()
	d := NewDispatcher(Options{
		Logger:        applog.NewDiscard(),
		Queue:         q,
		Recorder:      rec,
		RecordIntents: true,
		TimeProvider:  func() float64 { return 150 },
	})

	result, err := d.DispatchChecklistAck(ChecklistAckSpec{
		EventID:     "EVENT_A",
		Count:       2,
		Note:        "CMP advance",
		ChecklistID: "CHECK_A",
		StepNumber:  4,
		RetryWindowSeconds: floatp(5),
		Actor:       "CMP",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != ActionChecklistAck {
		t.Fatalf("expected checklist_ack type, got %s", result.Type)
	}
	if result.Timestamp != "000:02:30" {
		t.Fatalf("expected timestamp 000:02:30, got %s", result.Timestamp)
	}

	records := q.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 queued record, got %d", len(records))
	}
	if records[0]["type"] != "checklist_ack" || records[0]["event_id"] != "EVENT_A" || records[0]["count"] != 2 {
		t.Fatalf("unexpected queue record: %+v", records[0])
	}
	if records[0]["retry_window_seconds"] != 5.0 {
		t.Fatalf("expected retry_window_seconds=5, got %+v", records[0]["retry_window_seconds"])
	}

	if stats := rec.Stats(); stats.Checklist != 1 {
		t.Fatalf("expected recorder.stats.checklist=1, got %d", stats.Checklist)
	}
}

func TestDispatchChecklistAckWithoutQueueConfiguredFails(t *testing.T) {
	d := NewDispatcher(Options{Logger: applog.NewDiscard()})

	_, err := d.DispatchChecklistAck(ChecklistAckSpec{})
	if !errors.Is(err, ErrQueueNotConfigured) {
		t.Fatalf("expected ErrQueueNotConfigured, got %v", err)
	}
}

func TestDispatchChecklistAckRequiresEventID(t *testing.T) {
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: NewMemoryQueue()})

	_, err := d.DispatchChecklistAck(ChecklistAckSpec{})
	if !errors.Is(err, ErrChecklistAckRequiresEventID) {
		t.Fatalf("expected ErrChecklistAckRequiresEventID, got %v", err)
	}
}

func TestDispatchPropellantBurnRequiresAmount(t *testing.T) {
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: NewMemoryQueue()})

	_, err := d.DispatchPropellantBurn(PropellantBurnSpec{Tank: "csm_rcs"})
	if !errors.Is(err, ErrPropellantBurnRequiresAmount) {
		t.Fatalf("expected ErrPropellantBurnRequiresAmount, got %v", err)
	}
}

func TestDispatchPropellantBurnConvertsPoundsAndNormalizesTank(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	_, err := d.DispatchPropellantBurn(PropellantBurnSpec{Tank: "csm_rcs", AmountLb: 10.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := q.Records()
	if records[0]["tank"] != "csm_rcs_kg" {
		t.Fatalf("expected tank normalized with _kg suffix, got %+v", records[0]["tank"])
	}
	gotMass := records[0]["mass_kg"].(float64)
	wantMass := 10 * lbToKg
	if gotMass < wantMass-1e-9 || gotMass > wantMass+1e-9 {
		t.Fatalf("expected mass_kg=%v, got %v", wantMass, gotMass)
	}
}

func TestDispatchPropellantBurnAcceptsStringAmount(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	_, err := d.DispatchPropellantBurn(PropellantBurnSpec{Tank: "sm_rcs", MassKg: "12.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotMass := q.Records()[0]["mass_kg"].(float64)
	if gotMass < 12.5-1e-9 || gotMass > 12.5+1e-9 {
		t.Fatalf("expected mass_kg=12.5 parsed from string, got %v", gotMass)
	}
}

func TestDispatchGenericPropellantBurnAcceptsStringAmount(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	_, err := d.Dispatch(map[string]any{
		"type":    "propellant_burn",
		"tank":    "csm_rcs",
		"amount_lb": "22",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotMass := q.Records()[0]["mass_kg"].(float64)
	wantMass := 22 * lbToKg
	if gotMass < wantMass-1e-9 || gotMass > wantMass+1e-9 {
		t.Fatalf("expected mass_kg=%v parsed from string pounds, got %v", wantMass, gotMass)
	}
}

func TestDispatchGenericResolvesAliasedAndGETFormattedTimestamp(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	result, err := d.Dispatch(map[string]any{
		"type":     "checklist_ack",
		"event_id": "EVENT_C",
		"timestampSeconds": "000:02:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.GetSeconds != 150 {
		t.Fatalf("expected GET-formatted alias timestamp to resolve to 150 seconds, got %v", result.GetSeconds)
	}
}

func TestDispatchDskyEntryRequiresMacroOrVerbNoun(t *testing.T) {
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: NewMemoryQueue()})

	_, err := d.DispatchDskyEntry(DskyEntrySpec{Verb: 16})
	if !errors.Is(err, ErrDskyEntryRequiresMacroOrVerbNoun) {
		t.Fatalf("expected ErrDskyEntryRequiresMacroOrVerbNoun, got %v", err)
	}
}

func TestDispatchDskyEntryWithMacroIDSucceeds(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	_, err := d.DispatchDskyEntry(DskyEntrySpec{MacroID: "P30_LOAD_PAD", Sequence: "VERB,NOUN,ENTER"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := q.Records()
	seq, ok := records[0]["sequence"].([]string)
	if !ok || len(seq) != 3 || seq[0] != "VERB" || seq[2] != "ENTER" {
		t.Fatalf("unexpected sequence: %+v", records[0]["sequence"])
	}
}

func TestEnqueueFailurePropagatesAndLogsWithoutTouchingHistory(t *testing.T) {
	q := NewMemoryQueue()
	q.FailNextWith(errors.New("downstream rejected"))
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	_, err := d.DispatchResourceDelta(ResourceDeltaSpec{Effect: map[string]any{"power_w": -50}})
	if err == nil || err.Error() != "downstream rejected" {
		t.Fatalf("expected propagated queue error, got %v", err)
	}
	if len(d.History()) != 0 {
		t.Fatalf("expected no history entry on enqueue failure, got %d", len(d.History()))
	}
}

func TestDispatchEmitsAnyAndTypeHandlersAndBusEvents(t *testing.T) {
	q := NewMemoryQueue()
	b := bus.New()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q, Bus: b})

	var anyCalls, typeCalls, busCalls, busTypeCalls int
	d.OnAny(func(ActionRecord) { anyCalls++ })
	d.OnType(ActionResourceDelta, func(ActionRecord) { typeCalls++ })
	b.On("ui:manual", func(any) { busCalls++ })
	b.On("ui:manual:resource_delta", func(any) { busTypeCalls++ })

	_, err := d.DispatchResourceDelta(ResourceDeltaSpec{Effect: map[string]any{"water_kg": 1.5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anyCalls != 1 || typeCalls != 1 {
		t.Fatalf("expected 1 any-call and 1 type-call, got any=%d type=%d", anyCalls, typeCalls)
	}
	if busCalls != 1 || busTypeCalls != 1 {
		t.Fatalf("expected 1 ui:manual and 1 ui:manual:resource_delta event, got %d and %d", busCalls, busTypeCalls)
	}
	if len(d.History()) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(d.History()))
	}
}

func TestDispatchGenericRoutesByTypeField(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	result, err := d.Dispatch(map[string]any{
		"type":     "CHECKLIST_ACK",
		"event_id": "EVENT_B",
		"count":    1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != ActionChecklistAck {
		t.Fatalf("expected checklist_ack type, got %s", result.Type)
	}
}

func TestDispatchGenericRejectsUnknownType(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(Options{Logger: applog.NewDiscard(), Queue: q})

	_, err := d.Dispatch(map[string]any{"type": "warp_drive_engage"})
	if err == nil {
		t.Fatal("expected an error for an unsupported action type")
	}
	if err.Error() != "Unsupported manual action type: warp_drive_engage" {
		t.Fatalf("unexpected error message: %v", err)
	}
}
