package panels

import (
	"fmt"
	"strconv"
	"strings"

	"dashctl/internal/config"
	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"
)

const configSubsystem = "ConfigPanel"

// ConfigPanel shows the effective configuration, or the files it was loaded
// from. It never changes while we're running, so it has no background
// updates.
type ConfigPanel struct {
	*panel.Panel

	entries []config.Entry
	unused  []string
	sources []config.SourceFile

	showFiles     bool
	stripComments bool
	lineNumbers   bool
	scroller      screen.Scroller
}

// NewConfigPanel creates a panel showing cfg.
func NewConfigPanel(display panel.Display, cfg config.DashctlConfig) *ConfigPanel {
	p := &ConfigPanel{
		entries: cfg.Entries(),
		unused:  cfg.UnusedKeys,
		sources: cfg.Sources,
	}
	p.Panel = panel.New(configSubsystem, display, p)
	return p
}

// KeyHandlers provides scrolling, switching between the settings and their
// files, comment stripping and line numbers.
func (p *ConfigPanel) KeyHandlers() []panel.KeyHandler {
	view := "settings"
	if p.showFiles {
		view = "files"
	}

	return []panel.KeyHandler{
		panel.NewKeyHandler("arrows", "scroll up and down", panel.ActionWithKey(p.scroll),
			panel.WithKeyFunc(screen.KeyInput.IsScroll)),
		panel.NewKeyHandler("v", "settings or files", panel.ActionNoArg(p.toggleView),
			panel.WithCurrent(view)),
		panel.NewKeyHandler("s", "comment stripping", panel.ActionNoArg(p.toggleComments),
			panel.WithCurrent(onOff(p.stripComments))),
		panel.NewKeyHandler("l", "line numbering", panel.ActionNoArg(p.toggleLineNumbers),
			panel.WithCurrent(onOff(p.lineNumbers))),
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (p *ConfigPanel) scroll(k screen.KeyInput) {
	lines := p.lines()
	pageHeight, _ := scrollLayout(len(lines), p.Height())
	p.scroller.HandleKey(k, len(lines), pageHeight)
}

func (p *ConfigPanel) toggleView() {
	p.showFiles = !p.showFiles
	p.scroller = screen.Scroller{}
}

func (p *ConfigPanel) toggleComments() {
	p.stripComments = !p.stripComments
}

func (p *ConfigPanel) toggleLineNumbers() {
	p.lineNumbers = !p.lineNumbers
}

func (p *ConfigPanel) lines() []styledLine {
	if p.showFiles {
		return p.fileLines()
	}
	return p.settingLines()
}

func (p *ConfigPanel) settingLines() []styledLine {
	keyWidth := 0
	for _, entry := range p.entries {
		keyWidth = max(keyWidth, len(entry.Key))
	}

	lines := make([]styledLine, 0, len(p.entries)+len(p.unused)+2)
	for i, entry := range p.entries {
		var line styledLine
		if p.lineNumbers {
			line = append(line, text(fmt.Sprintf("%3d  ", i+1), screen.Yellow, screen.Bold))
		}
		line = append(line,
			text(fmt.Sprintf("%-*s  ", keyWidth, entry.Key), screen.Green, screen.Bold),
			text(entry.Value, screen.Cyan, screen.Bold),
		)
		lines = append(lines, line)
	}

	if len(p.unused) > 0 {
		lines = append(lines,
			nil,
			styledLine{text("Unrecognized settings (ignored):", screen.Yellow, screen.Bold)},
		)
		for _, key := range p.unused {
			lines = append(lines, styledLine{text("  "+key, screen.Yellow)})
		}
	}
	return lines
}

func (p *ConfigPanel) fileLines() []styledLine {
	if len(p.sources) == 0 {
		return []styledLine{{text("No configuration files were loaded, using the defaults.")}}
	}

	var lines []styledLine
	for i, source := range p.sources {
		if i > 0 {
			lines = append(lines, nil)
		}
		if len(p.sources) > 1 {
			lines = append(lines, styledLine{text(source.Path+":", screen.Bold)})
		}

		content := source.Lines()
		numberWidth := len(strconv.Itoa(len(content)))
		for n, raw := range content {
			option, argument, comment := splitConfigLine(raw)
			if p.stripComments {
				comment = ""
				if strings.TrimSpace(option+argument) == "" {
					continue
				}
			}

			var line styledLine
			if p.lineNumbers {
				line = append(line, text(fmt.Sprintf("%*d ", numberWidth, n+1), screen.Yellow, screen.Bold))
			}
			line = append(line,
				text(option, screen.Green, screen.Bold),
				text(argument, screen.Cyan, screen.Bold),
				text(strings.TrimRight(comment, " "), screen.White),
			)
			lines = append(lines, line)
		}
	}
	return lines
}

// splitConfigLine separates a YAML or TOML line into the option being set
// (including its indentation and separator), its value, and a trailing
// comment.
func splitConfigLine(line string) (option, argument, comment string) {
	code := line
	if i := strings.Index(line, "#"); i >= 0 {
		code, comment = line[:i], line[i:]
	}

	trimmed := strings.TrimSpace(code)
	switch {
	case strings.HasPrefix(trimmed, "["):
		return code, "", comment
	case strings.HasPrefix(trimmed, "- "):
		return "", code, comment
	}

	if i := strings.IndexAny(code, ":="); i >= 0 {
		return code[:i+1], code[i+1:], comment
	}
	return "", code, comment
}

func (p *ConfigPanel) title() string {
	if !p.showFiles {
		return fmt.Sprintf("Configuration (%d settings):", len(p.entries))
	}
	switch len(p.sources) {
	case 0:
		return "Configuration Files:"
	case 1:
		return fmt.Sprintf("Configuration File (%s):", p.sources[0].Path)
	default:
		return fmt.Sprintf("Configuration Files (%d loaded):", len(p.sources))
	}
}

// Draw renders the settings or files.
func (p *ConfigPanel) Draw(sw *screen.Subwindow) {
	lines := p.lines()
	sw.AddStr(0, 0, p.title(), screen.Bold)

	pageHeight, x := scrollLayout(len(lines), sw.Height)
	scroll := p.scroller.LocationWithin(len(lines), pageHeight)
	if x > 0 {
		sw.Scrollbar(1, scroll, len(lines))
	}

	for i := 0; i < pageHeight && scroll+i < len(lines); i++ {
		lines[scroll+i].draw(sw, x, 1+i)
	}
}
