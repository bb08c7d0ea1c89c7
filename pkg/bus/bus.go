// pkg/bus/bus.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package bus is a minimal synchronous pub/sub event bus: the backbone
// the manual dispatcher and input service use to announce ui:manual,
// ui:command, and similar events to the rest of the simulator. Handlers are invoked inline, in the order they were
// registered, against a snapshot of the listener set taken at emission
// time — registering or removing a handler mid-emission only affects
// later events.
package bus

import (
	"reflect"
	"strings"
	"sync"
)

// Handler receives an event's payload. Payloads are whatever the
// emitting component chose to pass; callers that need a stable type
// should type-assert.
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is safe for concurrent use, though the control core itself is
// single-threaded and synchronous (spec §5) — the mutex exists to
// tolerate a handler that re-enters On/Off/Emit while being invoked,
// not to support multi-writer access.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]subscription
	next uint64
}

func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// On registers handler for name and returns a function that removes
// it. An empty or all-whitespace name, or a nil handler, is a no-op;
// the returned unsubscribe function does nothing in that case.
func (b *Bus) On(name string, handler Handler) (unsubscribe func()) {
	name = strings.TrimSpace(name)
	if name == "" || handler == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() { b.removeByID(name, id) }
}

// Off removes the first registration of handler under name, matched
// by function pointer identity as reported by reflect. That pointer
// identifies the function's code, so two closures created from the
// same function literal compare equal.
func (b *Bus) Off(name string, handler Handler) {
	name = strings.TrimSpace(name)
	if name == "" || handler == nil {
		return
	}
	target := reflect.ValueOf(handler).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[name]
	for i, s := range subs {
		if reflect.ValueOf(s.handler).Pointer() == target {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) removeByID(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit dispatches payload to every handler registered for name, in
// registration order, against a snapshot taken before the first
// handler runs. A trimmed-empty name is a no-op.
func (b *Bus) Emit(name string, payload any) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	b.mu.Lock()
	snapshot := make([]subscription, len(b.subs[name]))
	copy(snapshot, b.subs[name])
	b.mu.Unlock()

	for _, s := range snapshot {
		s.handler(payload)
	}
}

// Clear removes every handler for name, or every handler for every
// name when called with no argument.
func (b *Bus) Clear(name ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(name) == 0 {
		b.subs = make(map[string][]subscription)
		return
	}
	delete(b.subs, strings.TrimSpace(name[0]))
}

// ListenerCount returns the number of handlers registered for name, or
// the total across all names when called with no argument.
func (b *Bus) ListenerCount(name ...string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(name) == 0 {
		n := 0
		for _, s := range b.subs {
			n += len(s)
		}
		return n
	}
	return len(b.subs[strings.TrimSpace(name[0])])
}
