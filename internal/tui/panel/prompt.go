package panel

import "dashctl/internal/tui/screen"

// Prompter is a panel that can take over the keyboard, such as while it
// reads a command. While InputActive is true the controller sends it every
// keypress rather than dispatching them as usual.
type Prompter interface {
	InputActive() bool
	HandleInput(k screen.KeyInput)
}
