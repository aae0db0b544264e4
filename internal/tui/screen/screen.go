// Package screen is the terminal drawing service panels render through. It
// keeps an in-memory cell buffer that rectangular subwindows are drawn into,
// and renders that buffer as the frame bubbletea writes to the terminal.
package screen

import (
	"strings"
	"sync"
)

// Dimensions is the size of the screen or of a drawn region.
type Dimensions struct {
	Width  int
	Height int
}

// Region describes where a subwindow is placed. Width and Height are clipped
// to the screen; a Width of zero or less spans the rest of the row.
type Region struct {
	Left       int
	Top        int
	Width      int
	Height     int
	Background Attr
}

type cell struct {
	ch    rune
	style style
	// cont marks the trailing half of a double-width rune.
	cont bool
}

var blank = cell{ch: ' '}

// Screen is a fixed-size grid of cells. All drawing is serialized by its
// lock, so panels may be redrawn from any goroutine, but a draw callback must
// not call back into the same screen, not even for its Size.
type Screen struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]cell
	halted bool
}

// New creates a blank screen of the given size.
func New(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

// Size returns the current dimensions of the whole screen.
func (s *Screen) Size() Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Dimensions{Width: s.width, Height: s.height}
}

// Resize changes the screen size, discarding its content.
func (s *Screen) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width = max(0, width)
	s.height = max(0, height)
	s.cells = make([][]cell, s.height)
	for y := range s.cells {
		s.cells[y] = make([]cell, s.width)
		for x := range s.cells[y] {
			s.cells[y][x] = blank
		}
	}
}

// Clear blanks the whole screen, unless it's halted.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.halted {
		return
	}

	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = blank
		}
	}
}

// Halt prevents any further drawing. Used while shutting down so background
// panels don't paint over the restored terminal.
func (s *Screen) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halted = true
}

// Draw renders a full-width subwindow starting at row top. See DrawRegion.
func (s *Screen) Draw(fn func(*Subwindow), top, height int, drawIfResized *Dimensions) Dimensions {
	return s.DrawRegion(fn, Region{Top: top, Height: height}, drawIfResized)
}

// DrawRegion calls fn with a subwindow covering the region and returns the
// dimensions of the space drawn within. If drawIfResized is set and matches
// those dimensions the content is left untouched and fn is not called.
func (s *Screen) DrawRegion(fn func(*Subwindow), r Region, drawIfResized *Dimensions) Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.halted {
		return Dimensions{}
	}

	width := max(0, s.width-r.Left)
	if r.Width > 0 {
		width = min(r.Width, width)
	}
	height := max(0, min(r.Height, s.height-r.Top))
	dims := Dimensions{Width: width, Height: height}

	if drawIfResized != nil && *drawIfResized == dims {
		return dims
	}
	if width == 0 || height == 0 {
		return dims
	}

	sub := &Subwindow{
		Width:  width,
		Height: height,
		screen: s,
		left:   r.Left,
		top:    r.Top,
		bg:     style{bg: r.Background},
	}
	sub.erase()

	if fn != nil {
		fn(sub)
	}
	return dims
}

// Render returns the styled frame for the terminal.
func (s *Screen) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, len(s.cells))
	for y, row := range s.cells {
		var b strings.Builder
		var run strings.Builder
		runStyle := style{}

		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle.isZero() {
				b.WriteString(run.String())
			} else {
				b.WriteString(runStyle.lipgloss().Render(run.String()))
			}
			run.Reset()
		}

		for _, c := range row {
			if c.cont {
				continue
			}
			if c.style != runStyle {
				flush()
				runStyle = c.style
			}
			run.WriteRune(c.ch)
		}
		flush()
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Content returns the unstyled text on screen with trailing whitespace
// removed, which is what a screenshot of the terminal would show.
func (s *Screen) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, len(s.cells))
	for y, row := range s.cells {
		var b strings.Builder
		for _, c := range row {
			if !c.cont {
				b.WriteRune(c.ch)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// set writes a cell at absolute coordinates, ignoring anything off screen.
// Caller must hold the lock.
func (s *Screen) set(x, y int, c cell) {
	if y < 0 || y >= s.height || x < 0 || x >= s.width {
		return
	}
	s.cells[y][x] = c
}

// AttrsAt returns the attributes of the cell at (x, y): its color first, then
// Bold, Underline and Highlight as set. Nil for plain or off screen cells.
func (s *Screen) AttrsAt(x, y int) []Attr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if y < 0 || y >= s.height || x < 0 || x >= s.width {
		return nil
	}
	return s.cells[y][x].style.attrs()
}
