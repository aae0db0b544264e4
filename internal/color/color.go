package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Initialize sets up the colour profile everything is rendered with and
// reports whether colours are enabled.
func Initialize(disabled bool) bool {
	if disabled || noColorRequested() {
		lipgloss.SetColorProfile(termenv.Ascii)
		return false
	}
	return lipgloss.ColorProfile() != termenv.Ascii
}

func noColorRequested() bool {
	value, ok := os.LookupEnv("NO_COLOR")
	return ok && value != ""
}
