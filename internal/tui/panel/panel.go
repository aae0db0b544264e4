// Package panel provides the building blocks of the dashboard: panels that
// own a region of the screen and redraw it on demand, daemon panels that
// refresh their data on a background goroutine, and the key handlers panels
// use to declare the input they accept.
package panel

import (
	"dashctl/internal/tui/screen"
)

// Drawer renders a panel's content into the subwindow it was given.
type Drawer interface {
	Draw(sw *screen.Subwindow)
}

// DrawerFunc adapts a function to the Drawer interface.
type DrawerFunc func(sw *screen.Subwindow)

// Draw calls f(sw).
func (f DrawerFunc) Draw(sw *screen.Subwindow) {
	f(sw)
}

// Display is the drawing service panels render through. *screen.Screen
// satisfies it.
type Display interface {
	Size() screen.Dimensions
	Draw(fn func(*screen.Subwindow), top, height int, drawIfResized *screen.Dimensions) screen.Dimensions
}

// Interface is what the controller manages. Concrete panels embed *Panel or
// *DaemonPanel and override KeyHandlers.
type Interface interface {
	Name() string
	Top() int
	SetTop(top int)
	Height() int
	SetVisible(visible bool)
	IsVisible() bool
	KeyHandlers() []KeyHandler
	Redraw(force bool)
}

// Panel is a region of the screen spanning its full width, from Top down to
// the bottom of the screen (or MaxHeight rows). Geometry is owned by the
// render goroutine; panels sharing data with a background goroutine guard
// that data themselves.
type Panel struct {
	name    string
	display Display
	drawer  Drawer

	top       int
	visible   bool
	maxHeight int

	drawn        bool
	lastDrawTop  int
	lastDrawSize screen.Dimensions
}

// New creates a hidden panel at the top of the display.
func New(name string, display Display, drawer Drawer) *Panel {
	return &Panel{
		name:    name,
		display: display,
		drawer:  drawer,
	}
}

// Name identifies the panel in logs and configuration.
func (p *Panel) Name() string {
	return p.name
}

// Top is the first screen row we render into.
func (p *Panel) Top() int {
	return p.top
}

// SetTop moves the panel. Positions off screen are allowed and leave the
// panel with no height.
func (p *Panel) SetTop(top int) {
	p.top = top
}

// SetMaxHeight limits the panel to n rows. Zero or less removes the limit.
func (p *Panel) SetMaxHeight(n int) {
	p.maxHeight = n
}

// Height is the number of rows the panel occupies, from Top to the bottom of
// the screen. It's recomputed on every call since the terminal can be
// resized at any time.
func (p *Panel) Height() int {
	height := max(0, p.display.Size().Height-p.top)
	if p.maxHeight > 0 {
		height = min(height, p.maxHeight)
	}
	return height
}

// SetVisible shows or hides the panel. Hidden panels never draw.
func (p *Panel) SetVisible(visible bool) {
	p.visible = visible
}

// IsVisible reports whether the panel is shown.
func (p *Panel) IsVisible() bool {
	return p.visible
}

// KeyHandlers provides the input the panel accepts, in the order it is
// documented and tried. Panels accepting input override this.
func (p *Panel) KeyHandlers() []KeyHandler {
	return nil
}

// LastDraw provides the position and dimensions of the most recent redraw.
// ok is false if the panel was never redrawn.
func (p *Panel) LastDraw() (top int, size screen.Dimensions, ok bool) {
	return p.lastDrawTop, p.lastDrawSize, p.drawn
}

// Redraw renders the panel. Unless forced, content is only redrawn if the
// panel moved or its dimensions changed since the last call.
func (p *Panel) Redraw(force bool) {
	if !p.visible {
		return
	}

	var drawIfResized *screen.Dimensions
	if !force && p.drawn && p.lastDrawTop == p.top {
		cached := p.lastDrawSize
		drawIfResized = &cached
	}

	p.drawn = true
	p.lastDrawTop = p.top
	p.lastDrawSize = p.display.Draw(p.drawer.Draw, p.top, p.Height(), drawIfResized)
}
