package controller

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keys handled by the controller itself, before any panel
// sees them.
type KeyMap struct {
	NextPage  key.Binding
	PrevPage  key.Binding
	Pause     key.Binding
	Help      key.Binding
	Redraw    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Esc       key.Binding
	Enter     key.Binding
}

// DefaultKeyMap returns a KeyMap with default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPage: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("right", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "previous page"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "P"),
			key.WithHelp("p", "pause or resume"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "H"),
			key.WithHelp("h", "toggle help"),
		),
		Redraw: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "redraw the screen"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit immediately"),
		),
		// only used to close the help overlay
		Esc: key.NewBinding(
			key.WithKeys("esc"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
		),
	}
}

// FullHelp returns the bindings listed in the help overlay.
func (k KeyMap) FullHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Pause, k.Help, k.Redraw, k.Quit, k.ForceQuit}
}
