// pkg/bus/bus_test.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bus

import "testing"

func TestEmitOrderAndPayload(t *testing.T) {
	b := New()
	var got []string
	b.On("ui:command", func(payload any) {
		got = append(got, "first:"+payload.(string))
	})
	b.On("ui:command", func(payload any) {
		got = append(got, "second:"+payload.(string))
	})

	b.Emit("ui:command", "cmd-00001")

	if len(got) != 2 || got[0] != "first:cmd-00001" || got[1] != "second:cmd-00001" {
		t.Fatalf("unexpected handler order/payload: %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	unsub := b.On("ui:manual", func(any) { calls++ })
	b.Emit("ui:manual", nil)
	unsub()
	b.Emit("ui:manual", nil)

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestOffByHandlerIdentity(t *testing.T) {
	b := New()
	calls := 0
	h := func(any) { calls++ }
	b.On("x", h)
	b.Off("x", h)
	b.Emit("x", nil)

	if calls != 0 {
		t.Fatalf("expected handler removed, got %d calls", calls)
	}
}

func TestEmptyNameIsNoOp(t *testing.T) {
	b := New()
	calls := 0
	unsub := b.On("  ", func(any) { calls++ })
	unsub()
	b.Emit("", nil)
	b.Emit("   ", "x")

	if calls != 0 {
		t.Fatalf("expected no calls for blank names, got %d", calls)
	}
	if b.ListenerCount() != 0 {
		t.Fatalf("expected no listeners registered, got %d", b.ListenerCount())
	}
}

func TestReentrantSubscribeDuringEmitNotObservedThisEvent(t *testing.T) {
	b := New()
	var lateCalls int
	b.On("ev", func(any) {
		b.On("ev", func(any) { lateCalls++ })
	})

	b.Emit("ev", nil) // registers the late handler, which must not see this emission
	if lateCalls != 0 {
		t.Fatalf("late handler observed the emission that registered it")
	}

	b.Emit("ev", nil) // now both handlers fire; lateCalls becomes 1
	if lateCalls != 1 {
		t.Fatalf("expected late handler to fire on the next emission, got %d", lateCalls)
	}
}

func TestListenerCountAndClear(t *testing.T) {
	b := New()
	b.On("a", func(any) {})
	b.On("a", func(any) {})
	b.On("b", func(any) {})

	if n := b.ListenerCount("a"); n != 2 {
		t.Fatalf("expected 2 listeners on a, got %d", n)
	}
	if n := b.ListenerCount(); n != 3 {
		t.Fatalf("expected 3 total listeners, got %d", n)
	}

	b.Clear("a")
	if n := b.ListenerCount("a"); n != 0 {
		t.Fatalf("expected a cleared, got %d", n)
	}
	if n := b.ListenerCount("b"); n != 1 {
		t.Fatalf("expected b untouched, got %d", n)
	}

	b.Clear()
	if n := b.ListenerCount(); n != 0 {
		t.Fatalf("expected all cleared, got %d", n)
	}
}
