// pkg/input/types.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package input implements the UI Input Service (IS): it translates
// raw device events into canonical commands via a priority-ordered
// binding table, owns the simulator UI's mode/focus/view/overlay
// state, and dispatches resulting commands to subscribers and the
// event bus.
package input

// Device is the closed set of input sources a binding can target.
type Device string

const (
	DeviceKeyboard Device = "keyboard"
	DeviceGamepad  Device = "gamepad"
	DeviceN64      Device = "n64"
)

// View is one of the three UI panes the service can be focused on.
type View string

const (
	ViewNavigation View = "navigation"
	ViewControls   View = "controls"
	ViewSystems    View = "systems"
)

var viewCycle = []View{ViewNavigation, ViewControls, ViewSystems}

// Mode is the UI's coarse interaction mode.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeFocused Mode = "focused"
	ModeModal   Mode = "modal"
)

// TileConstraint restricts a binding to (or away from) tile mode.
type TileConstraint string

const (
	TileAny        TileConstraint = ""
	TileRequired   TileConstraint = "required"
	TileDisallowed TileConstraint = "disallowed"
)

// RawEvent is a raw device event fed to HandleEvent. Only the fields
// relevant to the event's device need to be populated.
type RawEvent struct {
	Device Device

	// Keyboard
	Key   string
	Code  string
	Shift bool
	Ctrl  bool
	Meta  bool
	Alt   bool
	KeyUp bool

	// Gamepad / N64
	Button  string
	Buttons []string

	Hold   bool
	Repeat bool

	GetSeconds *float64
}

// PayloadBuilder derives a command payload from the matched raw event
// and the service's state at match time.
type PayloadBuilder func(ev RawEvent, st State) map[string]any

// Binding is one entry in a device's priority-ordered binding table.
type Binding struct {
	ID                  string
	Index               int
	Command             string
	Device              Device
	Inputs              []string
	Identifier          string
	Priority            int
	RequiresHold        *bool
	AllowRepeat         bool
	Modes               map[Mode]bool
	Views               map[View]bool
	RequiresFocus       *string
	RequiresModalTarget *string
	TileMode            TileConstraint
	PayloadBuilder      PayloadBuilder
	Source              string
}

// DskyKey is one buffered DSKY keystroke.
type DskyKey struct {
	Key             string
	TimestampSeconds float64
	Identifier      string
}

// Overlays tracks the two modal-adjacent overlays the IS owns.
type Overlays struct {
	Checklist bool
	MacroTray bool
}

// State is the UI Input Service's full internal state (spec §3).
type State struct {
	View  View
	Mode  Mode

	FocusTarget *string
	ModalTarget *string

	PreviousModeBeforeModal  Mode
	PreviousFocusBeforeModal *string

	TileModeActive bool
	Overlays       Overlays

	NavigationTimelineIndex int
	ControlsPanelIndex      int
	ControlsControlIndex    int
	SystemsModuleIndex      int

	ChecklistAcknowledged       int
	ContextActions              int
	TimeStepIncrements           int
	TimeStepDecrements           int
	SystemsCautionsAcknowledged int
	SystemsSnapshots             int
	WorkspaceSaves               int
	WorkspaceLoads               int

	NavReference       string // "cmc" | "scs"
	NavigationProjection string // "2d" | "3d"
	DockingOverlayEnabled bool
	SystemsTrendExpanded  bool
	SystemsDsnPinned      bool
	SimPaused             bool
	ChecklistBlocked      bool

	DskyBuffer []DskyKey

	LastAlarmSilencedAt     *float64
	NavigationPlanBurnAt    *float64
	ControlsLastActionAt    *float64
}

// NewState returns the IS's zero/default state.
func NewState() State {
	return State{
		View:                 ViewNavigation,
		Mode:                 ModeIdle,
		NavReference:         "cmc",
		NavigationProjection: "3d",
	}
}

// CommandEvent is one dispatched command, pre- and post-state
// snapshotted (spec §4.1 step 1-3).
type CommandEvent struct {
	ID         string
	Command    string
	Device     Device
	Payload    map[string]any
	GetSeconds float64
	PreState   State
	PostState  State
}

const dskyBufferCapacity = 32
const stateDskyBufferWindow = 10
