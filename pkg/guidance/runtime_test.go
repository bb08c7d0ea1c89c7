// pkg/guidance/runtime_test.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package guidance

import (
	"strings"
	"testing"

	"github.com/iancoleman/orderedmap"
)

func intp(v int) *int { return &v }

func testCatalog() *MacroCatalog {
	c := NewMacroCatalog("v1", "test catalog")
	c.Load(map[string]Macro{
		"P30_LOAD_PAD": {
			ID:    "P30_LOAD_PAD",
			Label: "Load PAD for P30",
			Verb:  intp(16),
			Noun:  intp(36),
			Mode:  ModeEntry,
			Program: "P30",
			Registers: []RegisterDef{
				{ID: "R1", Label: "Time of ignition"},
				{ID: "R2", Label: "Delta V X"},
				{ID: "R3", Label: "Delta V Y"},
			},
		},
		"P64_EXECUTE": {
			ID:    "P64_EXECUTE",
			Label: "Execute P64",
			Verb:  intp(64),
			Noun:  intp(66),
			Mode:  ModeEntry,
			Program: "P64",
			Registers: []RegisterDef{
				{ID: "R1", Label: "Altitude"},
			},
		},
	})
	return c
}

func registersOf(pairs ...[2]any) *orderedmap.OrderedMap {
	om := orderedmap.New()
	for _, p := range pairs {
		om.Set(p[0].(string), p[1])
	}
	return om
}

func TestMacroExecutionWithDeferredAck(t *testing.T) {
	r := NewRuntime(nil, 50)
	r.LoadCatalog(testCatalog())

	res := r.ExecuteEntry(Entry{
		MacroID:   "P30_LOAD_PAD",
		Registers: registersOf([2]any{"R1", "002:44:12"}, [2]any{"R2", 12.5}, [2]any{"R3", -0.4}),
		Sequence:  []string{"VERB", "NOUN", "ENTER"},
	}, Metadata{GetSeconds: 9876.5, Actor: "AUTO_CREW", Source: "autopilot", EventID: "EVT_MCC2"})

	if res.Status != "applied" {
		t.Fatalf("expected applied, got %s", res.Status)
	}
	if !res.RequiresAck {
		t.Fatalf("expected requiresAck=true")
	}
	if res.Program != "P30" || res.Verb == nil || *res.Verb != 16 || res.Noun == nil || *res.Noun != 36 {
		t.Fatalf("unexpected program/verb/noun: %+v", res)
	}

	snap := r.Snapshot()
	if !snap.Annunciators.Pro {
		t.Fatalf("expected annunciators.pro=true")
	}
	if snap.PendingAck == nil || snap.PendingAck.MacroID != "P30_LOAD_PAD" {
		t.Fatalf("expected pending ack for P30_LOAD_PAD, got %+v", snap.PendingAck)
	}
	if len(snap.History) != 1 {
		t.Fatalf("expected history length 1, got %d", len(snap.History))
	}

	ok := r.Acknowledge(AckDetails{GetSeconds: 9880, Actor: "CMP", Source: "manual", Note: "Pad verified"})
	if !ok {
		t.Fatalf("expected acknowledge to succeed")
	}

	snap = r.Snapshot()
	if snap.PendingAck != nil {
		t.Fatalf("expected pendingAck cleared")
	}
	if snap.Annunciators.Pro || snap.Annunciators.KeyRel {
		t.Fatalf("expected pro/keyRel cleared after ack, got %+v", snap.Annunciators)
	}
}

func TestVerbNounOverrideWithSelfAck(t *testing.T) {
	r := NewRuntime(nil, 50)
	r.LoadCatalog(testCatalog())

	res := r.ExecuteEntry(Entry{
		MacroID:   "P64_EXECUTE",
		Verb:      65,
		Noun:      67,
		Sequence:  []string{"VERB", "NOUN", "PRO"},
		Registers: registersOf([2]any{"R1", 4250}),
	}, Metadata{GetSeconds: 120000})

	if res.Status != "applied" {
		t.Fatalf("expected applied, got %s", res.Status)
	}
	if res.RequiresAck {
		t.Fatalf("expected requiresAck=false")
	}

	foundVerb, foundNoun := false, false
	for _, issue := range res.Issues {
		if strings.Contains(issue, "Verb differs") {
			foundVerb = true
		}
		if strings.Contains(issue, "Noun differs") {
			foundNoun = true
		}
	}
	if !foundVerb || !foundNoun {
		t.Fatalf("expected verb/noun differs issues, got %v", res.Issues)
	}

	m := r.Metrics()
	if m.Acknowledged != 1 {
		t.Fatalf("expected acknowledged=1, got %d", m.Acknowledged)
	}
	if r.Snapshot().PendingAck != nil {
		t.Fatalf("expected no pending ack for self-acked entry")
	}
}

func TestRejectionOnMissingMacro(t *testing.T) {
	r := NewRuntime(nil, 50)
	r.LoadCatalog(testCatalog())

	res := r.ExecuteEntry(Entry{MacroID: "UNKNOWN_MACRO"}, Metadata{GetSeconds: 512})

	if res.Status != "rejected" {
		t.Fatalf("expected rejected, got %s", res.Status)
	}

	snap := r.Snapshot()
	if len(snap.History) != 0 {
		t.Fatalf("expected untouched history, got %d entries", len(snap.History))
	}
	if !snap.Annunciators.OprErr {
		t.Fatalf("expected oprErr=true")
	}
	if snap.PendingAck != nil {
		t.Fatalf("expected no pending ack")
	}
	if r.Metrics().Rejected != 1 {
		t.Fatalf("expected rejected metric=1, got %d", r.Metrics().Rejected)
	}
}

func TestAcknowledgeIsIdempotentWithNoPendingAck(t *testing.T) {
	r := NewRuntime(nil, 50)
	if r.Acknowledge(AckDetails{}) {
		t.Fatalf("expected acknowledge with no pending ack to return false")
	}
}

func TestHistoryBoundedAtLimit(t *testing.T) {
	r := NewRuntime(nil, 2)
	r.LoadCatalog(testCatalog())

	for i := 0; i < 5; i++ {
		r.ExecuteEntry(Entry{MacroID: "P64_EXECUTE", Sequence: []string{"PRO"}}, Metadata{GetSeconds: float64(i)})
	}

	snap := r.Snapshot()
	if len(snap.History) != 2 {
		t.Fatalf("expected history capped at 2, got %d", len(snap.History))
	}
	// newest-first: the most recent entry (getSeconds=4) is at index 0.
	if snap.History[0].GetSeconds != 4 {
		t.Fatalf("expected newest-first ordering, got %+v", snap.History[0])
	}
}

func TestCommandIDsAreMonotonic(t *testing.T) {
	r := NewRuntime(nil, 50)
	r.LoadCatalog(testCatalog())

	res1 := r.ExecuteEntry(Entry{MacroID: "P64_EXECUTE", Sequence: []string{"PRO"}}, Metadata{})
	res2 := r.ExecuteEntry(Entry{MacroID: "P64_EXECUTE", Sequence: []string{"PRO"}}, Metadata{})

	if res1.CommandID != "AGC_CMD_00001" || res2.CommandID != "AGC_CMD_00002" {
		t.Fatalf("expected monotonic command ids, got %s then %s", res1.CommandID, res2.CommandID)
	}
}

func TestMetadataNoteFlowsIntoHistoryEntry(t *testing.T) {
	r := NewRuntime(nil, 50)
	r.LoadCatalog(testCatalog())

	r.ExecuteEntry(Entry{MacroID: "P64_EXECUTE", Sequence: []string{"PRO"}}, Metadata{Note: "Pad verified"})

	snap := r.Snapshot()
	if len(snap.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(snap.History))
	}
	if snap.History[0].Note != "Pad verified" {
		t.Fatalf("expected note to flow into history entry, got %q", snap.History[0].Note)
	}
}
