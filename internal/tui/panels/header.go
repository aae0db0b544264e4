package panels

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dashctl/internal/tui/design"
	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"
)

const headerSubsystem = "HeaderPanel"

// HeaderPanel is the sticky summary at the top of every page: the host
// we're running on, its load, and which page is shown.
type HeaderPanel struct {
	*panel.DaemonPanel

	collect StatsFunc

	mu           sync.Mutex
	stats        SystemStats
	hasStats     bool
	page         int
	pageCount    int
	paused       bool
	pauseTime    time.Time
	message      string
	messageAttrs []screen.Attr
}

// NewHeaderPanel creates the header, refreshing its stats every interval.
func NewHeaderPanel(display panel.Display, interval time.Duration, collect StatsFunc) *HeaderPanel {
	h := &HeaderPanel{collect: collect}
	h.DaemonPanel = panel.NewDaemon(headerSubsystem, display, h, h, interval)
	h.SetMaxHeight(design.HeaderHeight)
	return h
}

// Update refreshes the system stats.
func (h *HeaderPanel) Update(ctx context.Context) error {
	stats, err := h.collect(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = stats
	h.hasStats = true
	return nil
}

// SetPage records the page being shown. Page numbers start at zero.
func (h *HeaderPanel) SetPage(page, pageCount int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.page = page
	h.pageCount = pageCount
}

// SetPaused records whether the interface is paused, and since when.
func (h *HeaderPanel) SetPaused(paused bool, since time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = paused
	h.pauseTime = since
}

// ShowMessage replaces the bottom line with a message until ClearMessage is
// called.
func (h *HeaderPanel) ShowMessage(msg string, attrs ...screen.Attr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.message = msg
	h.messageAttrs = attrs
}

// ClearMessage restores the default bottom line.
func (h *HeaderPanel) ClearMessage() {
	h.ShowMessage("")
}

// Message is the message being shown, if any.
func (h *HeaderPanel) Message() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.message
}

// Draw renders the header.
func (h *HeaderPanel) Draw(sw *screen.Subwindow) {
	h.mu.Lock()
	stats, hasStats := h.stats, h.hasStats
	page, pageCount := h.page, h.pageCount
	paused, pauseTime := h.paused, h.pauseTime
	message, messageAttrs := h.message, h.messageAttrs
	h.mu.Unlock()

	x := sw.AddStr(0, 0, "dashctl", screen.Bold)

	if !hasStats {
		sw.AddStr(x, 0, " - loading system information...")
	} else {
		x = sw.AddStr(x, 0, " - "+stats.Hostname)
		if stats.Platform != "" {
			sw.AddStr(x, 0, fmt.Sprintf(" (%s %s, kernel %s)", stats.Platform, stats.PlatformVersion, stats.Kernel))
		}

		uptime := "up " + formatUptime(stats.Uptime)
		if ux := sw.Width - len(uptime); ux > x+1 {
			sw.AddStr(ux, 0, uptime)
		}

		x = sw.AddStr(0, 1, "cpu: ", screen.Bold)
		x = sw.AddStr(x, 1, fmt.Sprintf("%.1f%%", stats.CPUPercent), usageColor(stats.CPUPercent))
		x = sw.AddStr(x, 1, "  load: ", screen.Bold)
		x = sw.AddStr(x, 1, fmt.Sprintf("%.2f %.2f %.2f", stats.Load1, stats.Load5, stats.Load15))
		x = sw.AddStr(x, 1, "  memory: ", screen.Bold)
		sw.AddStr(x, 1, fmt.Sprintf("%s / %s (%.0f%%)", formatBytes(stats.MemUsed), formatBytes(stats.MemTotal), stats.MemPercent), usageColor(stats.MemPercent))
	}

	switch {
	case message != "":
		sw.AddStr(0, 2, message, messageAttrs...)
	case paused:
		x = sw.AddStr(0, 2, "Paused", screen.Highlight)
		sw.AddStr(x, 2, " since "+pauseTime.Format("15:04:05")+", press p to resume")
	case pageCount > 0:
		sw.AddStr(0, 2, fmt.Sprintf("page %d / %d - right/left: page, p: pause, h: help, q: quit", page+1, pageCount))
	default:
		sw.AddStr(0, 2, "p: pause, h: help, q: quit")
	}
}

func usageColor(percent float64) screen.Attr {
	switch {
	case percent >= 90:
		return screen.Red
	case percent >= 70:
		return screen.Yellow
	default:
		return screen.Green
	}
}
