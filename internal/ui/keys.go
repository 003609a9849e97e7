package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ToggleLogs key.Binding

	// Backend
	Stream   key.Binding
	Validate key.Binding

	// Scene
	LoadModel key.Binding
	Rest      key.Binding

	// Camera
	OrbitLeft  key.Binding
	OrbitRight key.Binding
	OrbitUp    key.Binding
	OrbitDown  key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding

	// Prompt
	Confirm key.Binding
	Cancel  key.Binding
}

const (
	startStreamLabel = "start stream"
	stopStreamLabel  = "stop stream"
)

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle theme"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log pane"),
		),

		Stream: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", startStreamLabel),
		),
		Validate: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "validate pose"),
		),

		LoadModel: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "load URDF"),
		),
		Rest: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resting pose"),
		),

		OrbitLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "orbit left"),
		),
		OrbitRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "orbit right"),
		),
		OrbitUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "orbit up"),
		),
		OrbitDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "orbit down"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// setStreaming flips the stream binding's help label.
func (k *keyMap) setStreaming(on bool) {
	label := startStreamLabel
	if on {
		label = stopStreamLabel
	}
	k.Stream.SetHelp("s", label)
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Stream, k.Validate, k.LoadModel, k.Rest, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Backend
		{k.Stream, k.Validate},
		// Scene
		{k.LoadModel, k.Rest},
		// Camera
		{k.OrbitLeft, k.OrbitRight, k.OrbitUp, k.OrbitDown, k.ZoomIn, k.ZoomOut},
		// General
		{k.ToggleLogs, k.CycleTheme, k.Help, k.Quit},
	}
}
