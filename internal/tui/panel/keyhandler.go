package panel

import (
	"dashctl/internal/tui/screen"

	"github.com/charmbracelet/bubbles/key"
)

// Action is what a KeyHandler runs when its key is pressed. Build one with
// ActionNoArg or ActionWithKey; the zero value does nothing.
type Action struct {
	noArg   func()
	withKey func(screen.KeyInput)
}

// ActionNoArg is an action that doesn't need to know which key triggered it.
func ActionNoArg(fn func()) Action {
	return Action{noArg: fn}
}

// ActionWithKey is an action that receives the triggering keypress.
func ActionWithKey(fn func(screen.KeyInput)) Action {
	return Action{withKey: fn}
}

// IsZero reports whether the action has nothing to run.
func (a Action) IsZero() bool {
	return a.noArg == nil && a.withKey == nil
}

func (a Action) run(k screen.KeyInput) {
	switch {
	case a.withKey != nil:
		a.withKey(k)
	case a.noArg != nil:
		a.noArg()
	}
}

// KeyHandler binds a key to an action, along with the text shown for it in
// the help overlay.
type KeyHandler struct {
	// Key is the key name matched by default, such as "enter" or "s".
	Key string
	// Description is what the key does. Empty if it isn't documented.
	Description string
	// Current is the present value of whatever the key changes, such as the
	// sort order.
	Current string

	action  Action
	keyFunc func(screen.KeyInput) bool
}

// KeyHandlerOption customizes a KeyHandler.
type KeyHandlerOption func(*KeyHandler)

// WithCurrent sets the value shown next to the description.
func WithCurrent(current string) KeyHandlerOption {
	return func(h *KeyHandler) {
		h.Current = current
	}
}

// WithKeyFunc replaces key matching with a custom predicate. When set it is
// the only thing consulted.
func WithKeyFunc(fn func(screen.KeyInput) bool) KeyHandlerOption {
	return func(h *KeyHandler) {
		h.keyFunc = fn
	}
}

// NewKeyHandler creates a handler for the given key.
func NewKeyHandler(keyName, description string, action Action, opts ...KeyHandlerOption) KeyHandler {
	h := KeyHandler{
		Key:         keyName,
		Description: description,
		action:      action,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Matches reports whether the keypress triggers this handler.
func (h KeyHandler) Matches(k screen.KeyInput) bool {
	if h.keyFunc != nil {
		return h.keyFunc(k)
	}
	return k.Match(h.Key)
}

// Handle runs the action if the keypress matches. The action runs
// synchronously on the calling goroutine. Returns true if it ran.
func (h KeyHandler) Handle(k screen.KeyInput) bool {
	if h.action.IsZero() || !h.Matches(k) {
		return false
	}
	h.action.run(k)
	return true
}

// Binding describes the handler for bubbles/help.
func (h KeyHandler) Binding() key.Binding {
	desc := h.Description
	if h.Current != "" {
		desc += " (" + h.Current + ")"
	}
	return key.NewBinding(
		key.WithKeys(h.Key),
		key.WithHelp(h.Key, desc),
	)
}
