// pkg/input/defaults.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package input

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

var dskyKeyPayload PayloadBuilder = func(ev RawEvent, st State) map[string]any {
	return map[string]any{"key": dskyKeyFromEvent(ev)}
}

// dskyKeyFromEvent derives the buffered DSKY key token from the
// normalized event (spec §4.1 dsky:key effect).
func dskyKeyFromEvent(ev RawEvent) string {
	token := canonicalKey(ev.Key, ev.Code, ev.Shift)
	switch token {
	case "ENTER":
		return "PRO"
	case "BACKSPACE":
		return "KEY_REL"
	case "V":
		return "VERB"
	case "N":
		return "NOUN"
	case "PLUS", "MINUS", "DECIMAL":
		return token
	default:
		return token
	}
}

// loadDefaultKeyboardBindings installs the keyboard default table
// (spec §6 highlights, a faithful-enough subset for crew muscle
// memory: view selection, panel navigation, DSKY entry, and
// workspace/macro-tray shortcuts).
func (s *Service) loadDefaultKeyboardBindings() {
	add := func(spec BindingSpec) {
		spec.Device = DeviceKeyboard
		spec.Source = "default"
		s.AddBinding(spec)
	}

	add(BindingSpec{Command: "view:navigation", Inputs: []string{"1"}, Priority: 10})
	add(BindingSpec{Command: "view:controls", Inputs: []string{"2"}, Priority: 10})
	add(BindingSpec{Command: "view:systems", Inputs: []string{"3"}, Priority: 10})
	add(BindingSpec{Command: "view:cycle_forward", Inputs: []string{"TAB"}, Priority: 5})
	add(BindingSpec{Command: "view:cycle_backward", Inputs: []string{"SHIFT", "TAB"}, Priority: 5})

	add(BindingSpec{Command: "tile:toggle", Inputs: []string{"CTRL", "T"}, Priority: 10})

	add(BindingSpec{Command: "controls:panel_next", Inputs: []string{"DOWN"}, Priority: 10, Views: []View{ViewControls}})
	add(BindingSpec{Command: "controls:panel_prev", Inputs: []string{"UP"}, Priority: 10, Views: []View{ViewControls}})
	add(BindingSpec{Command: "controls:activate_panel", Inputs: []string{"ENTER"}, Priority: 10, Views: []View{ViewControls}})
	add(BindingSpec{Command: "controls:toggle_control", Inputs: []string{"SPACE"}, Priority: 20, RequiresFocus: strp("panel")})
	add(BindingSpec{Command: "controls:cycle_control_focus", Inputs: []string{"TAB"}, Priority: 20, RequiresFocus: strp("panel")})
	add(BindingSpec{Command: "controls:cycle_control_focus_backward", Inputs: []string{"SHIFT", "TAB"}, Priority: 20, RequiresFocus: strp("panel")})
	add(BindingSpec{Command: "controls:ack_step", Inputs: []string{"A"}, Priority: 10, Views: []View{ViewControls}})
	add(BindingSpec{Command: "controls:mark_blocked", Inputs: []string{"CTRL", "B"}, Priority: 10, Views: []View{ViewControls}})

	add(BindingSpec{Command: "context:do_next", Inputs: []string{"SPACE"}, Priority: 5, Modes: []Mode{ModeIdle}})

	add(BindingSpec{Command: "checklist:open", Inputs: []string{"C"}, Priority: 10, Modes: []Mode{ModeIdle, ModeFocused}})

	add(BindingSpec{Command: "focus:release", Inputs: []string{"ESCAPE"}, Priority: 10, Modes: []Mode{ModeFocused, ModeModal}})

	add(BindingSpec{Command: "dsky:focus", Inputs: []string{"G"}, Priority: 10})
	add(BindingSpec{Command: "dsky:macro_tray", Inputs: []string{"CTRL", "M"}, Priority: 10, RequiresFocus: strp("dsky")})

	dskyKeys := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "V", "N", "ENTER", "BACKSPACE", "PLUS", "MINUS", "DECIMAL"}
	for _, k := range dskyKeys {
		add(BindingSpec{Command: "dsky:key", Inputs: []string{k}, Priority: 90, RequiresFocus: strp("dsky"), PayloadBuilder: dskyKeyPayload, AllowRepeat: true})
		add(BindingSpec{Command: "dsky:key", Inputs: []string{k}, Priority: 90, RequiresModalTarget: strp("macroTray"), PayloadBuilder: dskyKeyPayload, AllowRepeat: true})
	}

	add(BindingSpec{Command: "alarm:silence", Inputs: []string{"R"}, Priority: 10})
	add(BindingSpec{Command: "sim:pause_toggle", Inputs: []string{"P"}, Priority: 10})
	add(BindingSpec{Command: "time:step_increase", Inputs: []string{"PLUS"}, Priority: 5, Modes: []Mode{ModeIdle}})
	add(BindingSpec{Command: "time:step_decrease", Inputs: []string{"MINUS"}, Priority: 5, Modes: []Mode{ModeIdle}})

	add(BindingSpec{Command: "navigation:timeline_prev", Inputs: []string{"LEFT"}, Priority: 10, Views: []View{ViewNavigation}})
	add(BindingSpec{Command: "navigation:timeline_next", Inputs: []string{"RIGHT"}, Priority: 10, Views: []View{ViewNavigation}})
	add(BindingSpec{Command: "navigation:toggle_reference", Inputs: []string{"R"}, Priority: 5, Views: []View{ViewNavigation}})
	add(BindingSpec{Command: "navigation:toggle_projection", Inputs: []string{"T"}, Priority: 10, Views: []View{ViewNavigation}})
	add(BindingSpec{Command: "navigation:plan_burn", Inputs: []string{"B"}, Priority: 10, Views: []View{ViewNavigation}})
	add(BindingSpec{Command: "navigation:toggle_docking_overlay", Inputs: []string{"D"}, Priority: 10, Views: []View{ViewNavigation}})

	add(BindingSpec{Command: "systems:module_prev", Inputs: []string{"UP"}, Priority: 10, Views: []View{ViewSystems}})
	add(BindingSpec{Command: "systems:module_next", Inputs: []string{"DOWN"}, Priority: 10, Views: []View{ViewSystems}})
	add(BindingSpec{Command: "systems:expand_trend", Inputs: []string{"E"}, Priority: 10, Views: []View{ViewSystems}})
	add(BindingSpec{Command: "systems:ack_caution", Inputs: []string{"A"}, Priority: 10, Views: []View{ViewSystems}})
	add(BindingSpec{Command: "systems:pin_dsn_pass", Inputs: []string{"D"}, Priority: 10, Views: []View{ViewSystems}})
	add(BindingSpec{Command: "systems:export_snapshot", Inputs: []string{"CTRL", "E"}, Priority: 10, Views: []View{ViewSystems}})

	add(BindingSpec{Command: "workspace:save_layout", Inputs: []string{"CTRL", "S"}, Priority: 10})
	add(BindingSpec{Command: "workspace:load_preset_picker", Inputs: []string{"CTRL", "L"}, Priority: 10})
}

// loadDefaultGamepadBindings installs the gamepad default table
// (spec §6 highlights).
func (s *Service) loadDefaultGamepadBindings() {
	add := func(spec BindingSpec) {
		spec.Device = DeviceGamepad
		spec.Source = "default"
		s.AddBinding(spec)
	}

	add(BindingSpec{Command: "view:navigation", Inputs: []string{"LB", "A"}, Priority: 10})
	add(BindingSpec{Command: "view:controls", Inputs: []string{"LB", "Y"}, Priority: 10})
	add(BindingSpec{Command: "view:systems", Inputs: []string{"LB", "B"}, Priority: 10})

	add(BindingSpec{Command: "controls:panel_next", Inputs: []string{"DOWN"}, Priority: 10})
	add(BindingSpec{Command: "controls:panel_prev", Inputs: []string{"UP"}, Priority: 10})

	add(BindingSpec{Command: "context:do_next", Inputs: []string{"A"}, Priority: 5, Modes: []Mode{ModeIdle}})
	add(BindingSpec{Command: "controls:toggle_control", Inputs: []string{"A"}, Priority: 10, RequiresFocus: strp("panel")})

	add(BindingSpec{Command: "dsky:focus", Inputs: []string{"Y"}, Priority: 10, RequiresHold: boolp(true)})
	add(BindingSpec{Command: "dsky:macro_tray", Inputs: []string{"LB", "X"}, Priority: 10, RequiresHold: boolp(true)})

	add(BindingSpec{Command: "alarm:silence", Inputs: []string{"R3"}, Priority: 10})
}

// loadDefaultN64Bindings installs the N64 default table (spec §6
// highlights).
func (s *Service) loadDefaultN64Bindings() {
	add := func(spec BindingSpec) {
		spec.Device = DeviceN64
		spec.Source = "default"
		s.AddBinding(spec)
	}

	add(BindingSpec{Command: "view:navigation", Inputs: []string{"C-LEFT"}, Priority: 10})
	add(BindingSpec{Command: "view:controls", Inputs: []string{"C-UP"}, Priority: 10})
	add(BindingSpec{Command: "view:systems", Inputs: []string{"C-RIGHT"}, Priority: 10})

	add(BindingSpec{Command: "dsky:focus", Inputs: []string{"Z"}, Priority: 10, RequiresHold: boolp(true)})
	add(BindingSpec{Command: "dsky:macro_tray", Inputs: []string{"C-UP", "L"}, Priority: 10, RequiresFocus: strp("dsky")})

	add(BindingSpec{Command: "sim:pause_toggle", Inputs: []string{"START", "Z"}, Priority: 10})
}
