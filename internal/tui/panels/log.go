package panels

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"
	"dashctl/pkg/logging"

	"github.com/atotto/clipboard"
)

const (
	logSubsystem = "LogPanel"

	// DefaultLogBacklog is how many entries are kept when no limit is given.
	DefaultLogBacklog = 1000
)

// LogPanel shows our own log entries, newest first.
type LogPanel struct {
	*panel.DaemonPanel

	entries <-chan logging.LogEntry
	backlog int
	dropped func() int64

	// copyText puts text on the system clipboard
	copyText func(string) error

	mu          sync.Mutex
	logs        []logging.LogEntry
	frozen      []logging.LogEntry
	paused      bool
	pausedSince time.Time
	minLevel    logging.LogLevel
	scroller    screen.Scroller
}

// NewLogPanel creates a panel draining entries every interval. At most
// backlog entries are retained.
func NewLogPanel(display panel.Display, interval time.Duration, entries <-chan logging.LogEntry, backlog int) *LogPanel {
	if backlog <= 0 {
		backlog = DefaultLogBacklog
	}

	p := &LogPanel{
		entries:  entries,
		backlog:  backlog,
		dropped:  logging.Dropped,
		copyText: clipboard.WriteAll,
		minLevel: logging.LevelDebug,
	}
	p.DaemonPanel = panel.NewDaemon(logSubsystem, display, p, p, interval)
	return p
}

// Run drains entries even while the application is paused, so the logging
// channel never backs up. Pausing freezes what's shown instead.
func (p *LogPanel) Run(ctx context.Context, _ panel.PauseQuery) {
	p.DaemonPanel.Run(ctx, nil)
}

// Update moves everything waiting on the channel into the backlog.
func (p *LogPanel) Update(ctx context.Context) error {
	var received []logging.LogEntry

drain:
	for {
		select {
		case entry, ok := <-p.entries:
			if !ok {
				// logging shut down, a nil channel is never ready
				p.entries = nil
				break drain
			}
			received = append(received, entry)
		case <-ctx.Done():
			break drain
		default:
			break drain
		}
	}

	if len(received) == 0 {
		return panel.ErrUnchanged
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = append(p.logs, received...)
	if overflow := len(p.logs) - p.backlog; overflow > 0 {
		p.logs = append([]logging.LogEntry(nil), p.logs[overflow:]...)
	}
	return nil
}

// SetPaused freezes the entries shown until resumed.
func (p *LogPanel) SetPaused(paused bool, since time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paused = paused
	p.pausedSince = since
	if paused {
		p.frozen = append([]logging.LogEntry(nil), p.logs...)
	} else {
		p.frozen = nil
	}
}

// Entries are the retained entries at or above the minimum level, oldest
// first. While paused these are the entries we had when paused.
func (p *LogPanel) Entries() []logging.LogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibleEntries()
}

// visibleEntries is Entries without locking. Caller must hold the lock.
func (p *LogPanel) visibleEntries() []logging.LogEntry {
	source := p.logs
	if p.paused {
		source = p.frozen
	}

	var entries []logging.LogEntry
	for _, entry := range source {
		if entry.Level >= p.minLevel {
			entries = append(entries, entry)
		}
	}
	return entries
}

// KeyHandlers provides scrolling, clearing, filtering and copying.
func (p *LogPanel) KeyHandlers() []panel.KeyHandler {
	p.mu.Lock()
	minLevel := p.minLevel
	p.mu.Unlock()

	return []panel.KeyHandler{
		panel.NewKeyHandler("arrows", "scroll up and down", panel.ActionWithKey(p.scroll),
			panel.WithKeyFunc(screen.KeyInput.IsScroll)),
		panel.NewKeyHandler("c", "clear log", panel.ActionNoArg(p.clear)),
		panel.NewKeyHandler("f", "minimum level", panel.ActionNoArg(p.cycleLevel),
			panel.WithCurrent(strings.ToLower(minLevel.String()))),
		panel.NewKeyHandler("y", "copy to clipboard", panel.ActionNoArg(p.copyToClipboard)),
	}
}

func (p *LogPanel) scroll(k screen.KeyInput) {
	height := p.Height()

	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.visibleEntries()
	pageHeight, _ := scrollLayout(len(entries), height)
	p.scroller.HandleKey(k, len(entries), pageHeight)
}

func (p *LogPanel) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logs = nil
	if p.paused {
		p.frozen = nil
	}
	p.scroller = screen.Scroller{}
}

func (p *LogPanel) cycleLevel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.minLevel >= logging.LevelError {
		p.minLevel = logging.LevelDebug
	} else {
		p.minLevel++
	}
	p.scroller = screen.Scroller{}
}

func (p *LogPanel) copyToClipboard() {
	p.mu.Lock()
	entries := p.visibleEntries()
	p.mu.Unlock()

	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.String()
	}

	if err := p.copyText(strings.Join(lines, "\n")); err != nil {
		logging.Error(logSubsystem, err, "Unable to copy the log to the clipboard")
		return
	}
	logging.Info(logSubsystem, "Copied %d log entries to the clipboard", len(entries))
}

// Draw renders the log, newest entry on top.
func (p *LogPanel) Draw(sw *screen.Subwindow) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.visibleEntries()

	title := fmt.Sprintf("Log (%s and above, %d entries", strings.ToLower(p.minLevel.String()), len(entries))
	if dropped := p.dropped(); dropped > 0 {
		title += fmt.Sprintf(", %d dropped", dropped)
	}
	title += ")"
	if p.paused {
		title += " paused at " + p.pausedSince.Format("15:04:05")
	}
	sw.AddStr(0, 0, title+":", screen.Bold)

	if len(entries) == 0 {
		sw.AddStr(0, 1, "No log entries")
		return
	}

	pageHeight, x := scrollLayout(len(entries), sw.Height)
	scroll := p.scroller.LocationWithin(len(entries), pageHeight)
	if x > 0 {
		sw.Scrollbar(1, scroll, len(entries))
	}

	for i := 0; i < pageHeight && scroll+i < len(entries); i++ {
		entry := entries[len(entries)-1-scroll-i]
		sw.AddStr(x, 1+i, entry.String(), levelColor(entry.Level))
	}
}

func levelColor(level logging.LogLevel) screen.Attr {
	switch level {
	case logging.LevelDebug:
		return screen.Cyan
	case logging.LevelWarn:
		return screen.Yellow
	case logging.LevelError:
		return screen.Red
	default:
		return screen.Normal
	}
}
