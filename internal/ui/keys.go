package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the panel.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	// Controls
	Modes      []key.Binding // one per device.Modes entry
	HueDown    key.Binding
	HueUp      key.Binding
	ValueUp    key.Binding
	ValueDown  key.Binding
	SatDown    key.Binding
	SatUp      key.Binding
	PartyUp    key.Binding
	PartyDown  key.Binding
	PartyField key.Binding
	Unlock     key.Binding
	Reset      key.Binding

	// Diagnostics
	Logs         key.Binding
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	ToggleFollow key.Binding
	WarnOnly     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "Confirm"),
		),

		Modes: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Remote")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Manual knobs")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Warm/cool mix")),
			key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "Party")),
			key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "Music")),
			key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "Lights off")),
		},
		HueDown: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "Hue down"),
		),
		HueUp: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("right", "Hue up"),
		),
		ValueUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "Brighter"),
		),
		ValueDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "Dimmer"),
		),
		SatDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Less saturation"),
		),
		SatUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "More saturation"),
		),
		PartyUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Faster strobe"),
		),
		PartyDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "Slower strobe"),
		),
		PartyField: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Type strobe Hz"),
		),
		Unlock: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "Unlock full power"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Safe power mode"),
		),

		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Diagnostics log"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		WarnOnly: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "Warnings only"),
		),
	}
}

// modeForKey returns the mode bound to msg, if any.
func (k keyMap) modeForKey(msg string) (int, bool) {
	for i, b := range k.Modes {
		for _, bound := range b.Keys() {
			if bound == msg {
				return i, true
			}
		}
	}
	return 0, false
}
