package panels

import (
	"strings"

	"dashctl/internal/tui/screen"
)

// styledText is a run of text drawn with the same attributes.
type styledText struct {
	text  string
	attrs []screen.Attr
}

func text(s string, attrs ...screen.Attr) styledText {
	return styledText{text: s, attrs: attrs}
}

// styledLine is a line made of differently styled runs.
type styledLine []styledText

// String is the line's text without styling.
func (l styledLine) String() string {
	var b strings.Builder
	for _, t := range l {
		b.WriteString(t.text)
	}
	return b.String()
}

// draw renders the line starting at (x, y) and returns the column after it.
func (l styledLine) draw(sw *screen.Subwindow, x, y int) int {
	for _, t := range l {
		x = sw.AddStr(x, y, t.text, t.attrs...)
	}
	return x
}
