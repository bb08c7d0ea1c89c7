// pkg/input/bindings.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package input

import (
	"fmt"
	"sort"
	"strings"
)

// BindingSpec is the caller-facing shape for adding a binding;
// Service.AddBinding fills in ID/Index/Identifier and inserts it in
// priority order.
type BindingSpec struct {
	Command             string
	Device              Device
	Inputs              []string
	Priority            int
	RequiresHold        *bool
	AllowRepeat         bool
	Modes               []Mode
	Views               []View
	RequiresFocus       *string
	RequiresModalTarget *string
	TileMode            TileConstraint
	PayloadBuilder      PayloadBuilder
	Source              string
}

func setOf[T comparable](items []T) map[T]bool {
	if len(items) == 0 {
		return nil
	}
	m := make(map[T]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}

func identifierFromInputs(device Device, inputs []string) string {
	if device == DeviceKeyboard {
		return strings.Join(inputs, "+")
	}
	sorted := append([]string(nil), inputs...)
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}

// AddBinding inserts a binding into its device's table, maintaining
// priority-descending / insertion-index-ascending order.
func (s *Service) AddBinding(spec BindingSpec) Binding {
	device := spec.Device
	if device == "" {
		device = DeviceKeyboard
	}
	source := spec.Source
	if source == "" {
		source = "user"
	}

	s.bindingSeq++
	b := Binding{
		ID:                  fmt.Sprintf("bind-%05d", s.bindingSeq),
		Index:               s.bindingSeq,
		Command:             strings.ToLower(spec.Command),
		Device:              device,
		Inputs:              append([]string(nil), spec.Inputs...),
		Identifier:          identifierFromInputs(device, spec.Inputs),
		Priority:            spec.Priority,
		RequiresHold:        spec.RequiresHold,
		AllowRepeat:         spec.AllowRepeat,
		Modes:               setOf(spec.Modes),
		Views:               setOf(spec.Views),
		RequiresFocus:       spec.RequiresFocus,
		RequiresModalTarget: spec.RequiresModalTarget,
		TileMode:            spec.TileMode,
		PayloadBuilder:      spec.PayloadBuilder,
		Source:              source,
	}

	list := append(s.bindings[device], b)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority > list[j].Priority
		}
		return list[i].Index < list[j].Index
	})
	s.bindings[device] = list
	s.matchCache.Purge()
	return b
}

// matchBinding implements the binding-match algorithm (spec §4.1):
// the first binding (in priority/index order) satisfying every guard
// wins. Outcomes are memoized in s.matchCache, keyed on every input
// the guards examine.
func (s *Service) matchBinding(device Device, identifier string, ev RawEvent) *Binding {
	key := matchCacheKey(device, identifier, ev, s.state)
	if cached, ok := s.matchCache.Get(key); ok {
		if !cached.found {
			return nil
		}
		b := cached.binding
		return &b
	}

	found := s.matchBindingUncached(device, identifier, ev)
	if found != nil {
		s.matchCache.Add(key, matchResult{found: true, binding: *found})
	} else {
		s.matchCache.Add(key, matchResult{found: false})
	}
	return found
}

func matchCacheKey(device Device, identifier string, ev RawEvent, st State) string {
	focus := ""
	if st.FocusTarget != nil {
		focus = *st.FocusTarget
	}
	modal := ""
	if st.ModalTarget != nil {
		modal = *st.ModalTarget
	}
	return fmt.Sprintf("%s|%s|%t|%t|%s|%s|%s|%s|%t",
		device, identifier, ev.Hold, ev.Repeat, st.Mode, st.View, focus, modal, st.TileModeActive)
}

func (s *Service) matchBindingUncached(device Device, identifier string, ev RawEvent) *Binding {
	for i := range s.bindings[device] {
		b := &s.bindings[device][i]
		if b.Identifier != identifier {
			continue
		}
		if b.RequiresHold != nil && *b.RequiresHold != ev.Hold {
			continue
		}
		if ev.Repeat && !b.AllowRepeat {
			continue
		}
		if b.Modes != nil && !b.Modes[s.state.Mode] {
			continue
		}
		if b.Views != nil && !b.Views[s.state.View] {
			continue
		}
		if b.RequiresFocus != nil {
			if s.state.FocusTarget == nil || *s.state.FocusTarget != *b.RequiresFocus {
				continue
			}
		}
		if b.RequiresModalTarget != nil {
			if s.state.ModalTarget == nil || *s.state.ModalTarget != *b.RequiresModalTarget {
				continue
			}
		}
		switch b.TileMode {
		case TileRequired:
			if !s.state.TileModeActive {
				continue
			}
		case TileDisallowed:
			if s.state.TileModeActive {
				continue
			}
		}
		return b
	}
	return nil
}
