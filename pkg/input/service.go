// pkg/input/service.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package input

import (
	"fmt"
	"strings"
	"sync"

	"github.com/brunoga/deep"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jwiedeman/apollo64-sub003/pkg/bus"
	applog "github.com/jwiedeman/apollo64-sub003/pkg/log"
	"github.com/jwiedeman/apollo64-sub003/pkg/util"
)

const defaultHistoryLimit = 50

// AnyHandler receives every dispatched command; CommandHandler
// receives only dispatches of its registered command id (the command
// name, e.g. "view:controls", not the per-dispatch "cmd-NNNNN" id).
type AnyHandler func(CommandEvent)
type CommandHandler func(CommandEvent)

// Options configures a Service.
type Options struct {
	Logger          *applog.Logger
	Bus             *bus.Bus
	HistoryLimit    int
	TimeProvider    func() float64
	LoadDefaults    bool
}

// Service is the UI Input Service (IS).
type Service struct {
	lg           *applog.Logger
	bus          *bus.Bus
	timeProvider func() float64

	mu              sync.Mutex
	state           State
	bindings        map[Device][]Binding
	bindingSeq      int
	history         *util.BoundedHistory[CommandEvent]
	nextCommandSeq  int
	anyHandlers     []AnyHandler
	commandHandlers map[string][]CommandHandler

	// matchCache memoizes binding-match outcomes for (device,
	// identifier, hold/repeat, mode/view/focus/modal/tile) tuples —
	// the match algorithm is a linear guard-by-guard scan and the same
	// tuple recurs constantly under repeat-key/held-button input.
	// Invalidated whenever a binding is added.
	matchCache *lru.Cache[string, matchResult]
}

type matchResult struct {
	found   bool
	binding Binding
}

func NewService(opts Options) *Service {
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	cache, _ := lru.New[string, matchResult](256)
	s := &Service{
		lg:              opts.Logger,
		bus:             opts.Bus,
		timeProvider:    opts.TimeProvider,
		state:           NewState(),
		bindings:        make(map[Device][]Binding),
		history:         util.NewBoundedHistory[CommandEvent](limit),
		commandHandlers: make(map[string][]CommandHandler),
		matchCache:      cache,
	}
	if opts.LoadDefaults {
		s.loadDefaultKeyboardBindings()
		s.loadDefaultGamepadBindings()
		s.loadDefaultN64Bindings()
	}
	return s
}

func (s *Service) OnAny(h AnyHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anyHandlers = append(s.anyHandlers, h)
}

func (s *Service) OnCommand(commandID string, h CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commandHandlers[commandID] = append(s.commandHandlers[commandID], h)
}

// HandleEvent canonicalizes a raw device event, matches it against the
// device's binding table, and — on a match — dispatches the bound
// command. Returns nil when the event is discarded (key-up, no match,
// unresolved key).
func (s *Service) HandleEvent(ev RawEvent) *CommandEvent {
	if ev.KeyUp {
		return nil
	}
	device := canonicalizeDevice(string(ev.Device))
	ev.Device = device

	identifier := Identifier(device, ev)
	if identifier == "" {
		return nil
	}

	s.mu.Lock()
	binding := s.matchBinding(device, identifier, ev)
	s.mu.Unlock()
	if binding == nil {
		return nil
	}

	var payload map[string]any
	if binding.PayloadBuilder != nil {
		s.mu.Lock()
		payload = binding.PayloadBuilder(ev, s.state)
		s.mu.Unlock()
	}

	return s.Dispatch(binding.Command, payload, device, ev.GetSeconds)
}

// Dispatch applies a command's effect and notifies subscribers (spec
// §4.1 step 1-8); it is the same path HandleEvent uses, and is public
// so callers (tests, a CLI, automation) can invoke commands directly.
func (s *Service) Dispatch(command string, payload map[string]any, device Device, getSeconds *float64) *CommandEvent {
	command = strings.ToLower(strings.TrimSpace(command))
	if command == "" {
		return nil
	}
	if payload == nil {
		payload = map[string]any{}
	}

	get := s.resolveTimestamp(getSeconds)

	s.mu.Lock()
	pre := deep.MustCopy(s.state)

	effect, ok := commandEffects[command]
	if ok {
		effect(s, payload, get)
	}

	post := deep.MustCopy(s.state)

	s.nextCommandSeq++
	evt := CommandEvent{
		ID:         fmt.Sprintf("cmd-%05d", s.nextCommandSeq),
		Command:    command,
		Device:     device,
		Payload:    util.DuplicateMap(payload),
		GetSeconds: get,
		PreState:   pre,
		PostState:  post,
	}
	s.history.Push(evt)

	anyHandlers := make([]AnyHandler, len(s.anyHandlers))
	copy(anyHandlers, s.anyHandlers)
	cmdHandlers := make([]CommandHandler, len(s.commandHandlers[command]))
	copy(cmdHandlers, s.commandHandlers[command])
	s.mu.Unlock()

	s.lg.Log(applog.SeverityInfo, get, fmt.Sprintf("command dispatched: %s", command), "command_id", evt.ID)

	for _, h := range anyHandlers {
		h(evt)
	}
	for _, h := range cmdHandlers {
		h(evt)
	}

	if s.bus != nil {
		s.bus.Emit("ui:command", evt)
		s.bus.Emit("ui:command:"+evt.ID, evt)
	}

	return &evt
}

func (s *Service) resolveTimestamp(explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	if s.timeProvider != nil {
		return s.timeProvider()
	}
	return 0
}

// GetState returns a deep-copied state snapshot; the DSKY buffer is
// trimmed to its last 10 entries (spec §4.1 observability).
func (s *Service) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := deep.MustCopy(s.state)
	if len(snap.DskyBuffer) > stateDskyBufferWindow {
		snap.DskyBuffer = snap.DskyBuffer[len(snap.DskyBuffer)-stateDskyBufferWindow:]
	}
	return snap
}

// GetHistory returns deep-copied dispatched command events, oldest
// first. limit<=0 returns the full bounded history.
func (s *Service) GetHistory(limit int) []CommandEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		return deep.MustCopy(s.history.Slice())
	}
	return deep.MustCopy(s.history.Tail(limit))
}

// Bindings returns the device's binding table, priority order. It is a
// shallow copy (bindings carry an optional func field, which deep-copy
// primitives cannot traverse) — safe for listing, not for mutation.
func (s *Service) Bindings(device Device) []Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return util.DuplicateSlice(s.bindings[device])
}
