package design

import (
	"github.com/charmbracelet/lipgloss"
)

// Component dimensions
const (
	// HeaderHeight is the number of rows the sticky header occupies.
	HeaderHeight = 3

	// PopupMinWidth and PopupMinHeight bound overlays such as the help popup.
	PopupMinWidth  = 30
	PopupMinHeight = 5
)

// Color Palette - the eight terminal colors panels draw with, with light and
// dark variants.
var (
	ColorRed = lipgloss.AdaptiveColor{
		Light: "#DC2626",
		Dark:  "#EF4444",
	}
	ColorGreen = lipgloss.AdaptiveColor{
		Light: "#059669",
		Dark:  "#10B981",
	}
	ColorYellow = lipgloss.AdaptiveColor{
		Light: "#D97706",
		Dark:  "#F59E0B",
	}
	ColorBlue = lipgloss.AdaptiveColor{
		Light: "#2563EB",
		Dark:  "#3B82F6",
	}
	ColorCyan = lipgloss.AdaptiveColor{
		Light: "#0891B2",
		Dark:  "#22D3EE",
	}
	ColorMagenta = lipgloss.AdaptiveColor{
		Light: "#5A56E0",
		Dark:  "#7571F9",
	}
	ColorBlack = lipgloss.AdaptiveColor{
		Light: "#111827",
		Dark:  "#0F0F0F",
	}
	ColorWhite = lipgloss.AdaptiveColor{
		Light: "#F9FAFB",
		Dark:  "#F9FAFB",
	}
)

// Base Styles
var (
	// TextStyle is the starting point every drawn run of cells derives from.
	TextStyle = lipgloss.NewStyle()

	// HighlightStyle renders selected rows and scrollbar handles.
	HighlightStyle = lipgloss.NewStyle().
			Reverse(true)
)
