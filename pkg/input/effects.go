// pkg/input/effects.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package input

// commandEffect mutates s.state in response to a dispatched command.
// Called with s.mu already held by Dispatch.
type commandEffect func(s *Service, payload map[string]any, getSeconds float64)

var commandEffects map[string]commandEffect

func init() {
	commandEffects = map[string]commandEffect{
		"view:navigation":      setView(ViewNavigation),
		"view:controls":        setView(ViewControls),
		"view:systems":         setView(ViewSystems),
		"view:cycle_forward":   cycleView(1),
		"view:cycle_backward":  cycleView(-1),

		"tile:toggle": func(s *Service, _ map[string]any, _ float64) {
			s.state.TileModeActive = !s.state.TileModeActive
		},

		"focus:release": func(s *Service, _ map[string]any, _ float64) {
			s.state.Mode = ModeIdle
			s.state.FocusTarget = nil
			s.state.ModalTarget = nil
			s.state.Overlays = Overlays{}
		},

		"dsky:focus": func(s *Service, _ map[string]any, _ float64) {
			s.state.Mode = ModeFocused
			s.state.FocusTarget = strp("dsky")
		},

		"dsky:macro_tray": toggleModalOverlay(func(s *Service, on bool) { s.state.Overlays.MacroTray = on }, "macroTray"),
		"checklist:open":  toggleFocusedOverlay(func(s *Service, on bool) { s.state.Overlays.Checklist = on }),

		"dsky:key": func(s *Service, payload map[string]any, getSeconds float64) {
			focusedDsky := s.state.FocusTarget != nil && *s.state.FocusTarget == "dsky"
			inMacroTray := s.state.ModalTarget != nil && *s.state.ModalTarget == "macroTray"
			if !focusedDsky && !inMacroTray {
				return
			}
			key, _ := payload["key"].(string)
			if key == "" {
				return
			}
			entry := DskyKey{Key: key, TimestampSeconds: getSeconds}
			s.state.DskyBuffer = append(s.state.DskyBuffer, entry)
			if len(s.state.DskyBuffer) > dskyBufferCapacity {
				s.state.DskyBuffer = s.state.DskyBuffer[len(s.state.DskyBuffer)-dskyBufferCapacity:]
			}
		},

		"context:do_next": counter(func(s *Service) *int { return &s.state.ContextActions }, 1),

		"controls:panel_next":                  counter(func(s *Service) *int { return &s.state.ControlsPanelIndex }, 1),
		"controls:panel_prev":                  counterClamped(func(s *Service) *int { return &s.state.ControlsPanelIndex }, -1),
		"controls:cycle_control_focus":         counter(func(s *Service) *int { return &s.state.ControlsControlIndex }, 1),
		"controls:cycle_control_focus_backward": counterClamped(func(s *Service) *int { return &s.state.ControlsControlIndex }, -1),
		"controls:ack_step":                    counter(func(s *Service) *int { return &s.state.ChecklistAcknowledged }, 1),
		"controls:mark_blocked": func(s *Service, _ map[string]any, _ float64) {
			s.state.ChecklistBlocked = !s.state.ChecklistBlocked
		},
		"controls:toggle_control": func(s *Service, _ map[string]any, getSeconds float64) {
			s.state.ControlsLastActionAt = &getSeconds
		},
		"controls:activate_panel": func(s *Service, payload map[string]any, _ float64) {
			panelID, _ := payload["panelId"].(string)
			if panelID == "" {
				panelID = "active"
				payload["panelId"] = panelID
			}
			s.state.Mode = ModeFocused
			s.state.FocusTarget = strp("panel")
			s.state.ControlsControlIndex = 0
		},

		"systems:module_prev":     counterClamped(func(s *Service) *int { return &s.state.SystemsModuleIndex }, -1),
		"systems:module_next":     counter(func(s *Service) *int { return &s.state.SystemsModuleIndex }, 1),
		"systems:expand_trend": func(s *Service, _ map[string]any, _ float64) {
			s.state.SystemsTrendExpanded = !s.state.SystemsTrendExpanded
		},
		"systems:ack_caution":      counter(func(s *Service) *int { return &s.state.SystemsCautionsAcknowledged }, 1),
		"systems:pin_dsn_pass": func(s *Service, _ map[string]any, _ float64) {
			s.state.SystemsDsnPinned = !s.state.SystemsDsnPinned
		},
		"systems:export_snapshot": counter(func(s *Service) *int { return &s.state.SystemsSnapshots }, 1),

		"workspace:save_layout":         counter(func(s *Service) *int { return &s.state.WorkspaceSaves }, 1),
		"workspace:load_preset_picker":  counter(func(s *Service) *int { return &s.state.WorkspaceLoads }, 1),

		"navigation:timeline_prev":   counterClamped(func(s *Service) *int { return &s.state.NavigationTimelineIndex }, -1),
		"navigation:timeline_next":   counter(func(s *Service) *int { return &s.state.NavigationTimelineIndex }, 1),
		"navigation:timeline_select": func(s *Service, payload map[string]any, _ float64) {
			if idx, ok := payload["index"].(int); ok && idx >= 0 {
				s.state.NavigationTimelineIndex = idx
			}
		},
		"navigation:toggle_reference": func(s *Service, _ map[string]any, _ float64) {
			if s.state.NavReference == "cmc" {
				s.state.NavReference = "scs"
			} else {
				s.state.NavReference = "cmc"
			}
		},
		"navigation:toggle_projection": func(s *Service, _ map[string]any, _ float64) {
			if s.state.NavigationProjection == "3d" {
				s.state.NavigationProjection = "2d"
			} else {
				s.state.NavigationProjection = "3d"
			}
		},
		"navigation:toggle_docking_overlay": func(s *Service, _ map[string]any, _ float64) {
			s.state.DockingOverlayEnabled = !s.state.DockingOverlayEnabled
		},
		"navigation:plan_burn": func(s *Service, _ map[string]any, getSeconds float64) {
			s.state.NavigationPlanBurnAt = &getSeconds
		},

		"alarm:silence": func(s *Service, _ map[string]any, getSeconds float64) {
			s.state.LastAlarmSilencedAt = &getSeconds
		},
		"sim:pause_toggle": func(s *Service, _ map[string]any, _ float64) {
			s.state.SimPaused = !s.state.SimPaused
		},
		"time:step_increase": counter(func(s *Service) *int { return &s.state.TimeStepIncrements }, 1),
		"time:step_decrease": counter(func(s *Service) *int { return &s.state.TimeStepDecrements }, 1),
	}
}

func setView(v View) commandEffect {
	return func(s *Service, _ map[string]any, _ float64) {
		s.state.View = v
		s.state.Mode = ModeIdle
		s.state.FocusTarget = nil
	}
}

func cycleView(dir int) commandEffect {
	return func(s *Service, _ map[string]any, _ float64) {
		idx := 0
		for i, v := range viewCycle {
			if v == s.state.View {
				idx = i
				break
			}
		}
		idx = (idx + dir + len(viewCycle)) % len(viewCycle)
		s.state.View = viewCycle[idx]
		s.state.Mode = ModeIdle
		s.state.FocusTarget = nil
	}
}

func counter(field func(s *Service) *int, delta int) commandEffect {
	return func(s *Service, _ map[string]any, _ float64) {
		p := field(s)
		*p += delta
	}
}

func counterClamped(field func(s *Service) *int, delta int) commandEffect {
	return func(s *Service, _ map[string]any, _ float64) {
		p := field(s)
		v := *p + delta
		if v < 0 {
			v = 0
		}
		*p = v
	}
}

// toggleModalOverlay implements the macro-tray style open/close
// discipline: opening stashes the previous mode+focus, sets the modal
// target, and enters modal mode; closing restores the previous focus
// (mode=focused) or falls back to idle (spec §4.1 dsky:macro_tray).
func toggleModalOverlay(setOverlay func(s *Service, on bool), modalTarget string) commandEffect {
	return func(s *Service, _ map[string]any, _ float64) {
		if s.state.ModalTarget != nil && *s.state.ModalTarget == modalTarget {
			setOverlay(s, false)
			s.state.ModalTarget = nil
			if s.state.PreviousFocusBeforeModal != nil {
				s.state.Mode = ModeFocused
				s.state.FocusTarget = s.state.PreviousFocusBeforeModal
			} else {
				s.state.Mode = ModeIdle
				s.state.FocusTarget = nil
			}
			s.state.PreviousFocusBeforeModal = nil
			return
		}

		s.state.PreviousModeBeforeModal = s.state.Mode
		s.state.PreviousFocusBeforeModal = s.state.FocusTarget
		setOverlay(s, true)
		s.state.Mode = ModeModal
		s.state.ModalTarget = strp(modalTarget)
	}
}

// toggleFocusedOverlay implements the checklist-overlay open/close
// discipline: the same stash/restore behavior as the modal overlay,
// but under focused mode rather than modal (spec §4.1 checklist:open).
func toggleFocusedOverlay(setOverlay func(s *Service, on bool)) commandEffect {
	return func(s *Service, _ map[string]any, _ float64) {
		if s.state.Overlays.Checklist {
			setOverlay(s, false)
			if s.state.PreviousFocusBeforeModal != nil {
				s.state.FocusTarget = s.state.PreviousFocusBeforeModal
				s.state.Mode = ModeFocused
			} else {
				s.state.Mode = ModeIdle
				s.state.FocusTarget = nil
			}
			s.state.PreviousFocusBeforeModal = nil
			return
		}

		s.state.PreviousModeBeforeModal = s.state.Mode
		s.state.PreviousFocusBeforeModal = s.state.FocusTarget
		setOverlay(s, true)
		s.state.Mode = ModeFocused
	}
}
