// Package controller owns the dashboard's pages of panels. It positions and
// redraws them, routes keypresses, pauses the application and drives the
// background loops of daemon panels. Model adapts it to bubbletea.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/panels"
	"dashctl/internal/tui/screen"
	"dashctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
)

const subsystem = "Controller"

// ErrInvalidPage is returned when selecting a page that doesn't exist.
var ErrInvalidPage = errors.New("invalid page")

const quitPrompt = "Are you sure (q again to confirm)?"

// quitPromptTimeout is how long the quit prompt waits for its confirmation.
const quitPromptTimeout = 30 * time.Second

// Header is the panel shown above every page.
type Header interface {
	panel.Interface
	SetPage(page, pageCount int)
	SetPaused(paused bool, since time.Time)
	ShowMessage(msg string, attrs ...screen.Attr)
	ClearMessage()
}

// Options tune the controller.
type Options struct {
	// RedrawRate is how often Model redraws when nothing else prompts it.
	RedrawRate time.Duration
	// RefreshRate forces a full repaint when this much time has passed since
	// the last one. Zero disables it.
	RefreshRate time.Duration
	// ConfirmQuit asks for a second q before quitting.
	ConfirmQuit bool
}

// KeyResult is the outcome of a keypress.
type KeyResult int

const (
	KeyIgnored KeyResult = iota
	KeyHandled
	KeyQuit
)

// Controller arranges the header and pages of panels on the screen. Apart
// from IsPaused, which daemon panels query from their own goroutines, its
// methods must be called from the render goroutine.
type Controller struct {
	screen *screen.Screen
	header Header
	pages  [][]panel.Interface
	opts   Options
	keys   KeyMap
	now    func() time.Time

	page        int
	forceRedraw bool
	lastForced  time.Time
	showHelp    bool
	quitPending bool
	quitAsked   time.Time
	started     bool

	mu        sync.Mutex
	paused    bool
	pauseTime time.Time
	notify    func(tea.Msg)
}

// New creates a controller showing the first page. Empty pages are dropped.
func New(scr *screen.Screen, header Header, pages [][]panel.Interface, opts Options) *Controller {
	c := &Controller{
		screen:      scr,
		header:      header,
		opts:        opts,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		forceRedraw: true,
	}
	for _, page := range pages {
		if len(page) > 0 {
			c.pages = append(c.pages, append([]panel.Interface(nil), page...))
		}
	}
	header.SetPage(0, len(c.pages))
	return c
}

// PageCount is the number of pages available.
func (c *Controller) PageCount() int {
	return len(c.pages)
}

// Page is the page being shown. Page numbers start at zero.
func (c *Controller) Page() int {
	return c.page
}

// SetPage shows the given page.
func (c *Controller) SetPage(page int) error {
	if page < 0 || page >= len(c.pages) {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidPage, page, len(c.pages))
	}

	if page != c.page {
		logging.Debug(subsystem, "Switching to page %d", page)
		c.page = page
		c.forceRedraw = true
		c.header.SetPage(page, len(c.pages))
	}
	return nil
}

// NextPage shows the next page, wrapping around after the last.
func (c *Controller) NextPage() {
	if len(c.pages) > 0 {
		_ = c.SetPage((c.page + 1) % len(c.pages))
	}
}

// PrevPage shows the previous page, wrapping around before the first.
func (c *Controller) PrevPage() {
	if len(c.pages) > 0 {
		_ = c.SetPage((c.page - 1 + len(c.pages)) % len(c.pages))
	}
}

// IsPaused reports whether updates are paused. Safe to call from any
// goroutine.
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// PauseTime is when we were paused. Zero while running.
func (c *Controller) PauseTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pauseTime
}

// SetPaused pauses or resumes updates, telling every Pausable panel.
func (c *Controller) SetPaused(paused bool) {
	c.mu.Lock()
	if paused == c.paused {
		c.mu.Unlock()
		return
	}
	c.paused = paused
	if paused {
		c.pauseTime = c.now()
	} else {
		c.pauseTime = time.Time{}
	}
	since := c.pauseTime
	c.mu.Unlock()

	logging.Info(subsystem, "Paused: %t", paused)
	for _, p := range c.AllPanels() {
		if pausable, ok := p.(panel.Pausable); ok {
			pausable.SetPaused(paused, since)
		}
	}
	c.forceRedraw = true
}

// HeaderPanel is the panel shown above every page.
func (c *Controller) HeaderPanel() Header {
	return c.header
}

// DisplayPanels are the panels shown for a page, top to bottom. An invalid
// page has only the header.
func (c *Controller) DisplayPanels(page int) []panel.Interface {
	display := []panel.Interface{c.header}
	if page >= 0 && page < len(c.pages) {
		display = append(display, c.pages[page]...)
	}
	return display
}

// AllPanels lists every panel once, the header first.
func (c *Controller) AllPanels() []panel.Interface {
	all := []panel.Interface{c.header}
	seen := map[panel.Interface]bool{c.header: true}

	for _, page := range c.pages {
		for _, p := range page {
			if !seen[p] {
				seen[p] = true
				all = append(all, p)
			}
		}
	}
	return all
}

// DaemonPanels are the panels with a background update loop.
func (c *Controller) DaemonPanels() []panel.Daemon {
	var daemons []panel.Daemon
	for _, p := range c.AllPanels() {
		if d, ok := p.(panel.Daemon); ok {
			daemons = append(daemons, d)
		}
	}
	return daemons
}

// Resize changes the screen size, repainting everything on the next redraw.
func (c *Controller) Resize(width, height int) {
	c.screen.Resize(width, height)
	c.forceRedraw = true
}

// Redraw positions and draws the current page. Content is repainted if
// forced, if something asked for it (such as changing pages), or if
// RefreshRate has passed since the last repaint.
func (c *Controller) Redraw(force bool) {
	now := c.now()

	if c.quitPending && now.Sub(c.quitAsked) >= quitPromptTimeout {
		c.cancelQuit()
	}
	if c.forceRedraw {
		force = true
		c.forceRedraw = false
	}
	if c.opts.RefreshRate > 0 && now.Sub(c.lastForced) >= c.opts.RefreshRate {
		force = true
	}
	if force {
		c.lastForced = now
		c.screen.Clear()
	}

	display := c.DisplayPanels(c.page)
	shown := make(map[panel.Interface]bool, len(display))
	for _, p := range display {
		shown[p] = true
	}
	for _, p := range c.AllPanels() {
		p.SetVisible(shown[p])
	}

	top := 0
	for _, p := range display {
		p.SetTop(top)
		p.Redraw(force)
		top += p.Height()
	}

	c.drawHelp()
}

func (c *Controller) cancelQuit() {
	c.quitPending = false
	c.header.ClearMessage()
	c.forceRedraw = true
}

// RedrawPanel repaints a single panel, such as after its data changed.
func (c *Controller) RedrawPanel(p panel.Interface) {
	if !p.IsVisible() {
		return
	}
	p.Redraw(true)
	c.drawHelp()
}

// ShowingHelp reports whether the help overlay is up.
func (c *Controller) ShowingHelp() bool {
	return c.showHelp
}

// HelpLines is the content of the help overlay for the current page.
func (c *Controller) HelpLines() []string {
	sections := []panels.HelpSection{{Title: "Global", Bindings: c.keys.FullHelp()}}
	for _, p := range c.DisplayPanels(c.page) {
		sections = append(sections, panels.PanelHelp(strings.TrimSuffix(p.Name(), "Panel"), p.KeyHandlers()))
	}
	return panels.HelpLines(sections)
}

func (c *Controller) drawHelp() {
	if !c.showHelp {
		return
	}

	lines := c.HelpLines()
	region := panels.HelpRegion(c.screen.Size(), lines)
	c.screen.DrawRegion(func(sw *screen.Subwindow) {
		panels.DrawHelp(sw, lines)
	}, region, nil)
}

// HandleKey processes a keypress. The controller's own keys are tried first,
// anything else goes to every handler of the panels being shown.
func (c *Controller) HandleKey(k screen.KeyInput) KeyResult {
	if key.Matches(k, c.keys.ForceQuit) {
		return KeyQuit
	}

	// a panel reading input gets every key until it's done
	for _, p := range c.DisplayPanels(c.page) {
		if prompter, ok := p.(panel.Prompter); ok && prompter.InputActive() {
			prompter.HandleInput(k)
			return KeyHandled
		}
	}

	if c.showHelp {
		// any key closes help, and only these do nothing else
		c.showHelp = false
		c.forceRedraw = true
		if key.Matches(k, c.keys.Esc, c.keys.Enter, c.keys.Help) {
			return KeyHandled
		}
	}

	if key.Matches(k, c.keys.Quit) {
		if !c.opts.ConfirmQuit || c.quitPending {
			return KeyQuit
		}
		c.quitPending = true
		c.quitAsked = c.now()
		c.header.ShowMessage(quitPrompt, screen.Bold, screen.Red)
		c.forceRedraw = true
		return KeyHandled
	}
	if c.quitPending {
		c.cancelQuit()
	}

	switch {
	case key.Matches(k, c.keys.NextPage):
		c.NextPage()
		return KeyHandled
	case key.Matches(k, c.keys.PrevPage):
		c.PrevPage()
		return KeyHandled
	case key.Matches(k, c.keys.Pause):
		c.SetPaused(!c.IsPaused())
		return KeyHandled
	case key.Matches(k, c.keys.Help):
		c.showHelp = true
		return KeyHandled
	case key.Matches(k, c.keys.Redraw):
		c.forceRedraw = true
		return KeyHandled
	}

	result := KeyIgnored
	for _, p := range c.DisplayPanels(c.page) {
		for _, h := range p.KeyHandlers() {
			if h.Handle(k) {
				result = KeyHandled
			}
		}
	}
	return result
}

// AttachProgram routes daemon panel updates to the program so they're
// redrawn on its goroutine.
func (c *Controller) AttachProgram(p *tea.Program) {
	c.SetNotifier(p.Send)
}

// SetNotifier sets the function daemon panels announce updates through.
func (c *Controller) SetNotifier(notify func(tea.Msg)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = notify
}

func (c *Controller) notifyUpdated(p panel.Interface) {
	c.mu.Lock()
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(panelUpdatedMsg{panel: p})
	}
}

// Start launches the update loop of every daemon panel, paused whenever we
// are. The loops end when ctx is cancelled or on Halt.
func (c *Controller) Start(ctx context.Context) {
	if c.started {
		return
	}
	c.started = true

	for _, d := range c.DaemonPanels() {
		d.SetUpdateHook(func() { c.notifyUpdated(d) })
		go d.Run(ctx, c.IsPaused)
	}
}

// Halt stops drawing and every daemon panel, waiting up to timeout for their
// loops to end. Call once the program has exited, since loops may be blocked
// announcing an update to it.
func (c *Controller) Halt(timeout time.Duration) error {
	c.screen.Halt()

	daemons := c.DaemonPanels()
	for _, d := range daemons {
		d.Stop()
	}
	if !c.started {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var stragglers []string
	expired := false
	for _, d := range daemons {
		if !expired {
			select {
			case <-d.Done():
				continue
			case <-deadline.C:
				expired = true
			}
		}

		// past the deadline, check the rest without waiting
		select {
		case <-d.Done():
		default:
			stragglers = append(stragglers, d.Name())
		}
	}

	if len(stragglers) > 0 {
		err := fmt.Errorf("panels still updating after %s: %s", timeout, strings.Join(stragglers, ", "))
		logging.Warn(subsystem, "%v", err)
		return err
	}
	return nil
}
