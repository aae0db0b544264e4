package panels

import (
	"strings"

	"dashctl/internal/tui/design"
	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpSection is the input accepted by one panel, or by the application as a
// whole.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// PanelHelp describes a panel's key handlers. Handlers without a description
// are left out.
func PanelHelp(title string, handlers []panel.KeyHandler) HelpSection {
	section := HelpSection{Title: title}
	for _, handler := range handlers {
		if handler.Description != "" {
			section.Bindings = append(section.Bindings, handler.Binding())
		}
	}
	return section
}

// helpModel lays out bindings. Styles are left plain since the result is
// drawn into screen cells rather than written to the terminal.
func helpModel() help.Model {
	plain := lipgloss.NewStyle()

	h := help.New()
	h.ShowAll = true
	h.Styles = help.Styles{
		Ellipsis:       plain,
		ShortKey:       plain,
		ShortDesc:      plain,
		ShortSeparator: plain,
		FullKey:        plain,
		FullDesc:       plain,
		FullSeparator:  plain,
	}
	return h
}

// HelpLines renders the sections as the lines of the help overlay. Sections
// with nothing to show are left out.
func HelpLines(sections []HelpSection) []string {
	h := helpModel()

	var lines []string
	for _, section := range sections {
		var bindings []key.Binding
		for _, binding := range section.Bindings {
			if binding.Enabled() {
				bindings = append(bindings, binding)
			}
		}
		if len(bindings) == 0 {
			continue
		}

		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.Title+":")
		for _, line := range strings.Split(h.FullHelpView([][]key.Binding{bindings}), "\n") {
			lines = append(lines, "  "+strings.TrimRight(line, " "))
		}
	}

	if len(lines) == 0 {
		lines = []string{"No key bindings"}
	}
	return lines
}

// HelpRegion centers a popup sized to fit the lines within a screen of the
// given size.
func HelpRegion(size screen.Dimensions, lines []string) screen.Region {
	contentWidth := 0
	for _, line := range lines {
		contentWidth = max(contentWidth, lipgloss.Width(line))
	}

	// border and a space of padding either side
	width := max(design.PopupMinWidth, contentWidth+4)
	height := max(design.PopupMinHeight, len(lines)+2)
	width = min(width, size.Width)
	height = min(height, max(0, size.Height-design.HeaderHeight))

	return screen.Region{
		Left:   max(0, (size.Width-width)/2),
		Top:    design.HeaderHeight + max(0, (size.Height-design.HeaderHeight-height)/2),
		Width:  width,
		Height: height,
	}
}

// DrawHelp draws the popup content. Lines that don't fit are cut off with a
// note saying so.
func DrawHelp(sw *screen.Subwindow, lines []string) {
	sw.Box(0, 0, sw.Width, sw.Height)
	sw.AddStr(2, 0, " Help ", screen.Bold)

	rows := sw.Height - 2
	for i := 0; i < rows && i < len(lines); i++ {
		if i == rows-1 && len(lines) > rows {
			sw.AddStr(2, 1+i, "...", screen.Bold)
			break
		}
		sw.AddStr(2, 1+i, lines[i])
	}

	sw.AddStr(max(2, sw.Width-26), sw.Height-1, " press any key to close ")
}
