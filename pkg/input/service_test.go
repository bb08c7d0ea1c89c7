// pkg/input/service_test.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package input

import (
	"testing"

	applog "github.com/jwiedeman/apollo64-sub003/pkg/log"
)

func ticker(start float64) func() float64 {
	t := start
	return func() float64 {
		t++
		return t
	}
}

func newTestService(historyLimit int) *Service {
	return NewService(Options{
		Logger:       applog.NewDiscard(),
		HistoryLimit: historyLimit,
		TimeProvider: ticker(0),
		LoadDefaults: true,
	})
}

func TestKeyboardViewSequence(t *testing.T) {
	s := newTestService(50)

	evt := s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "1", Code: "Digit1"})
	if evt == nil || evt.Command != "view:navigation" {
		t.Fatalf("expected view:navigation, got %+v", evt)
	}
	if s.GetState().View != ViewNavigation {
		t.Fatalf("expected view=navigation")
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "2", Code: "Digit2"})
	if evt == nil || evt.Command != "view:controls" {
		t.Fatalf("expected view:controls, got %+v", evt)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "ArrowDown", Code: "ArrowDown"})
	if evt == nil || evt.Command != "controls:panel_next" {
		t.Fatalf("expected controls:panel_next, got %+v", evt)
	}
	if s.GetState().ControlsPanelIndex != 1 {
		t.Fatalf("expected controlsPanelIndex=1, got %d", s.GetState().ControlsPanelIndex)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "Enter", Code: "Enter"})
	if evt == nil || evt.Command != "controls:activate_panel" {
		t.Fatalf("expected controls:activate_panel, got %+v", evt)
	}
	st := s.GetState()
	if st.FocusTarget == nil || *st.FocusTarget != "panel" {
		t.Fatalf("expected focusTarget=panel, got %+v", st.FocusTarget)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: " ", Code: "Space"})
	if evt == nil || evt.Command != "controls:toggle_control" {
		t.Fatalf("expected controls:toggle_control, got %+v", evt)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "Tab", Code: "Tab"})
	if evt == nil || evt.Command != "controls:cycle_control_focus" {
		t.Fatalf("expected controls:cycle_control_focus, got %+v", evt)
	}
	if s.GetState().ControlsControlIndex != 1 {
		t.Fatalf("expected controlsControlIndex=1, got %d", s.GetState().ControlsControlIndex)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "Escape", Code: "Escape"})
	if evt == nil || evt.Command != "focus:release" {
		t.Fatalf("expected focus:release, got %+v", evt)
	}
	st = s.GetState()
	if st.FocusTarget != nil || st.Mode != ModeIdle {
		t.Fatalf("expected focusTarget=nil, mode=idle, got %+v", st)
	}
}

func TestDskyFocusAndBuffering(t *testing.T) {
	s := newTestService(50)

	evt := s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "g", Code: "KeyG"})
	if evt == nil || evt.Command != "dsky:focus" {
		t.Fatalf("expected dsky:focus, got %+v", evt)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "v", Code: "KeyV"})
	if evt == nil || evt.Command != "dsky:key" || evt.Payload["key"] != "VERB" {
		t.Fatalf("expected dsky:key VERB, got %+v", evt)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "1", Code: "Digit1"})
	if evt == nil || evt.Command != "dsky:key" || evt.Payload["key"] != "1" {
		t.Fatalf("expected dsky:key 1, got %+v", evt)
	}
	buf := s.GetState().DskyBuffer
	if len(buf) != 2 || buf[0].Key != "VERB" || buf[1].Key != "1" {
		t.Fatalf("expected DSKY buffer [VERB 1], got %+v", buf)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "m", Code: "KeyM", Ctrl: true})
	if evt == nil || evt.Command != "dsky:macro_tray" {
		t.Fatalf("expected dsky:macro_tray, got %+v", evt)
	}
	st := s.GetState()
	if st.ModalTarget == nil || *st.ModalTarget != "macroTray" {
		t.Fatalf("expected modalTarget=macroTray, got %+v", st.ModalTarget)
	}

	evt = s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "Escape", Code: "Escape"})
	if evt == nil || evt.Command != "focus:release" {
		t.Fatalf("expected focus:release, got %+v", evt)
	}
	st = s.GetState()
	if st.FocusTarget != nil || st.ModalTarget != nil {
		t.Fatalf("expected focus cleared, got %+v", st)
	}
}

func TestGamepadWithHistoryBound(t *testing.T) {
	s := newTestService(2)

	s.HandleEvent(RawEvent{Device: DeviceGamepad, Buttons: []string{"LB", "Y"}})
	s.HandleEvent(RawEvent{Device: DeviceGamepad, Buttons: []string{"DOWN"}})
	s.HandleEvent(RawEvent{Device: DeviceGamepad, Buttons: []string{"Y"}, Hold: true})
	s.HandleEvent(RawEvent{Device: DeviceGamepad, Buttons: []string{"LB", "X"}, Hold: true})

	hist := s.GetHistory(0)
	if len(hist) != 2 {
		t.Fatalf("expected history length 2, got %d", len(hist))
	}
	if hist[len(hist)-1].Command != "dsky:macro_tray" {
		t.Fatalf("expected last command dsky:macro_tray, got %s", hist[len(hist)-1].Command)
	}
}

func TestKeyboardIdentifierInvariantUnderModifierOrder(t *testing.T) {
	a := canonicalizeKeyboardIdentifier(RawEvent{Key: "s", Code: "KeyS", Ctrl: true, Shift: true})
	b := canonicalizeKeyboardIdentifier(RawEvent{Key: "s", Code: "KeyS", Shift: true, Ctrl: true})
	if a != b {
		t.Fatalf("expected identifier invariant under modifier struct-field order, got %q vs %q", a, b)
	}
	if a != "CTRL+SHIFT+S" {
		t.Fatalf("expected CTRL+SHIFT+S, got %q", a)
	}
}

func TestKeyUpEventsAreDiscarded(t *testing.T) {
	s := newTestService(50)
	evt := s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "1", Code: "Digit1", KeyUp: true})
	if evt != nil {
		t.Fatalf("expected key-up event to be discarded, got %+v", evt)
	}
}

func TestNoMatchingBindingIsANoOp(t *testing.T) {
	s := newTestService(50)
	evt := s.HandleEvent(RawEvent{Device: DeviceKeyboard, Key: "z", Code: "KeyZ"})
	if evt != nil {
		t.Fatalf("expected no binding match, got %+v", evt)
	}
}
