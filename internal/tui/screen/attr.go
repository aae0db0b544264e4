package screen

import (
	"dashctl/internal/tui/design"

	"github.com/charmbracelet/lipgloss"
)

// Attr is a text color or text attribute. Any number of them can be passed
// to the drawing functions; the last color given wins.
type Attr int

const (
	Normal Attr = iota
	Bold
	Underline
	Highlight

	Red
	Green
	Yellow
	Blue
	Cyan
	Magenta
	Black
	White
)

var attrNames = map[Attr]string{
	Normal:    "Normal",
	Bold:      "Bold",
	Underline: "Underline",
	Highlight: "Highlight",
	Red:       "Red",
	Green:     "Green",
	Yellow:    "Yellow",
	Blue:      "Blue",
	Cyan:      "Cyan",
	Magenta:   "Magenta",
	Black:     "Black",
	White:     "White",
}

func (a Attr) String() string {
	if name, ok := attrNames[a]; ok {
		return name
	}
	return "Unknown"
}

// IsColor reports whether the attribute is one of the terminal colors.
func (a Attr) IsColor() bool {
	return a >= Red && a <= White
}

// style is the comparable form of a set of attributes stored in each cell.
type style struct {
	fg        Attr
	bg        Attr
	bold      bool
	underline bool
	highlight bool
}

func (s *style) apply(attrs ...Attr) {
	for _, a := range attrs {
		switch {
		case a == Normal:
		case a == Bold:
			s.bold = true
		case a == Underline:
			s.underline = true
		case a == Highlight:
			s.highlight = true
		case a.IsColor():
			s.fg = a
		}
	}
}

func (s style) isZero() bool {
	return s == style{}
}

func color(a Attr) lipgloss.TerminalColor {
	switch a {
	case Red:
		return design.ColorRed
	case Green:
		return design.ColorGreen
	case Yellow:
		return design.ColorYellow
	case Blue:
		return design.ColorBlue
	case Cyan:
		return design.ColorCyan
	case Magenta:
		return design.ColorMagenta
	case Black:
		return design.ColorBlack
	case White:
		return design.ColorWhite
	default:
		return lipgloss.NoColor{}
	}
}

func (s style) lipgloss() lipgloss.Style {
	ls := design.TextStyle
	if s.fg != Normal {
		ls = ls.Foreground(color(s.fg))
	}
	if s.bg != Normal {
		ls = ls.Background(color(s.bg))
	}
	if s.bold {
		ls = ls.Bold(true)
	}
	if s.underline {
		ls = ls.Underline(true)
	}
	if s.highlight {
		ls = ls.Inherit(design.HighlightStyle)
	}
	return ls
}

func (s style) attrs() []Attr {
	var attrs []Attr
	if s.fg != Normal {
		attrs = append(attrs, s.fg)
	}
	if s.bold {
		attrs = append(attrs, Bold)
	}
	if s.underline {
		attrs = append(attrs, Underline)
	}
	if s.highlight {
		attrs = append(attrs, Highlight)
	}
	return attrs
}
