package screen

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// namedKeys maps the key names panels match against to bubbletea's key
// strings.
var namedKeys = map[string]string{
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"home":      "home",
	"end":       "end",
	"page_up":   "pgup",
	"page_down": "pgdown",
	"esc":       "esc",
	"enter":     "enter",
	"tab":       "tab",
	"space":     " ",
	"backspace": "backspace",
}

var scrollKeys = map[string]bool{
	"up":     true,
	"down":   true,
	"pgup":   true,
	"pgdown": true,
	"home":   true,
	"end":    true,
}

// keyTypes are bubbletea's key types for the key strings NewKeyInput
// recognises besides single characters.
var keyTypes = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	" ":         tea.KeySpace,
	"backspace": tea.KeyBackspace,
	"delete":    tea.KeyDelete,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"pgup":      tea.KeyPgUp,
	"pgdown":    tea.KeyPgDown,
	"ctrl+c":    tea.KeyCtrlC,
	"ctrl+l":    tea.KeyCtrlL,
}

// KeyInput is a keypress by the user.
type KeyInput struct {
	key string
	msg tea.KeyMsg
}

// NewKeyInput creates a keypress from bubbletea's key string, such as "a",
// "pgup" or "ctrl+l".
func NewKeyInput(key string) KeyInput {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	if keyType, ok := keyTypes[key]; ok {
		msg = tea.KeyMsg{Type: keyType}
		if keyType == tea.KeySpace {
			msg.Runes = []rune{' '}
		}
	}
	return KeyInput{key: key, msg: msg}
}

// FromKeyMsg converts a bubbletea key message.
func FromKeyMsg(msg tea.KeyMsg) KeyInput {
	return KeyInput{key: msg.String(), msg: msg}
}

// Msg is the keypress as a bubbletea message, for components such as text
// inputs that handle keys themselves.
func (k KeyInput) Msg() tea.KeyMsg {
	return k.msg
}

// String returns the bubbletea key string.
func (k KeyInput) String() string {
	return k.key
}

// Match checks if this is any of the given keys. Single characters match case
// insensitively. Named keys are up, down, left, right, home, end, page_up,
// page_down, esc, enter, tab, space and backspace, and modifier combinations
// such as "ctrl+l" match exactly. Anything else never matches.
func (k KeyInput) Match(keys ...string) bool {
	for _, name := range keys {
		if mapped, ok := namedKeys[name]; ok {
			if k.key == mapped {
				return true
			}
			continue
		}

		if utf8.RuneCountInString(name) == 1 {
			if utf8.RuneCountInString(k.key) == 1 && strings.EqualFold(k.key, name) {
				return true
			}
			continue
		}

		if strings.Contains(name, "+") && k.key == name {
			return true
		}
	}
	return false
}

// IsScroll is true if the key is used for scrolling.
func (k KeyInput) IsScroll() bool {
	return scrollKeys[k.key]
}

// IsSelection is true for the enter and space keys.
func (k KeyInput) IsSelection() bool {
	return k.key == "enter" || k.key == " "
}
