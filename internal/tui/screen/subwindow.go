package screen

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxLineWrap is the most lines AddStrWrap spreads a single message over.
const maxLineWrap = 8

const (
	hlineRune   = '─'
	vlineRune   = '│'
	ulCorner    = '┌'
	urCorner    = '┐'
	llCorner    = '└'
	lrCorner    = '┘'
	ellipsis    = "..."
	defaultFill = ' '
)

// Subwindow is a rectangular part of the screen handed to draw callbacks.
// Coordinates are relative to its upper left corner and anything drawn
// outside of it is cropped.
type Subwindow struct {
	Width  int
	Height int

	screen *Screen
	left   int
	top    int
	bg     style
}

func (sw *Subwindow) erase() {
	for y := 0; y < sw.Height; y++ {
		for x := 0; x < sw.Width; x++ {
			sw.put(x, y, cell{ch: ' ', style: sw.bg})
		}
	}
}

func (sw *Subwindow) put(x, y int, c cell) {
	s := sw.screen
	ax, ay := sw.left+x, sw.top+y
	if ay < 0 || ay >= s.height || ax < 0 || ax >= s.width {
		return
	}

	// Overwriting half of a wide rune blanks the other half.
	if s.cells[ay][ax].cont && ax > 0 {
		s.set(ax-1, ay, cell{ch: ' ', style: s.cells[ay][ax-1].style})
	}
	if ax+1 < s.width && s.cells[ay][ax+1].cont && !c.cont {
		s.set(ax+1, ay, cell{ch: ' ', style: s.cells[ay][ax+1].style})
	}
	s.set(ax, ay, c)
}

func (sw *Subwindow) styleFor(attrs []Attr) style {
	st := style{bg: sw.bg.bg}
	st.apply(attrs...)
	return st
}

// AddStr draws a string, cropped to the subwindow width, and returns the
// horizontal position it drew to.
func (sw *Subwindow) AddStr(x, y int, msg string, attrs ...Attr) int {
	if x < 0 || y < 0 || x >= sw.Width || y >= sw.Height {
		return x
	}

	st := sw.styleFor(attrs)
	for _, r := range msg {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > sw.Width {
			break
		}
		sw.put(x, y, cell{ch: r, style: st})
		if w == 2 {
			sw.put(x+1, y, cell{ch: ' ', style: st, cont: true})
		}
		x += w
	}
	return x
}

// AddStrWrap draws a string, wrapping on word boundaries when it would pass
// width. Wrapped lines start at minX. Returns the (x, y) position drawn to.
func (sw *Subwindow) AddStrWrap(x, y int, msg string, width, minX int, attrs ...Attr) (int, int) {
	origY := y

	for msg != "" {
		drawMsg, rest := cropWords(msg, width-x)
		if drawMsg == "" {
			// first word is longer than the line
			drawMsg, rest = cropWithEllipsis(msg, width-x), ""
		}

		x = sw.AddStr(x, y, drawMsg, attrs...)
		msg = strings.TrimLeft(rest, " ")

		if y-origY+1 >= maxLineWrap {
			break
		}
		if msg != "" {
			x, y = minX, y+1
		}
	}
	return x, y
}

// Box draws a border. A width or height of zero or less uses all the space
// available to the right or below.
func (sw *Subwindow) Box(left, top, width, height int, attrs ...Attr) {
	maxWidth, maxHeight := sw.Width-left, sw.Height-top
	if width <= 0 {
		width = maxWidth
	} else {
		width = min(width, maxWidth)
	}
	if height <= 0 {
		height = maxHeight
	} else {
		height = min(height, maxHeight)
	}
	if width < 2 || height < 2 {
		return
	}

	sw.HLine(left+1, top, width-2, attrs...)
	sw.HLine(left+1, top+height-1, width-2, attrs...)
	sw.VLine(left, top+1, height-2, attrs...)
	sw.VLine(left+width-1, top+1, height-2, attrs...)

	sw.addCh(left, top, ulCorner, attrs...)
	sw.addCh(left, top+height-1, llCorner, attrs...)
	sw.addCh(left+width-1, top, urCorner, attrs...)
	sw.addCh(left+width-1, top+height-1, lrCorner, attrs...)
}

// HLine draws a horizontal line.
func (sw *Subwindow) HLine(x, y, length int, attrs ...Attr) {
	for i := 0; i < min(length, sw.Width-x); i++ {
		sw.addCh(x+i, y, hlineRune, attrs...)
	}
}

// VLine draws a vertical line.
func (sw *Subwindow) VLine(x, y, length int, attrs ...Attr) {
	for i := 0; i < min(length, sw.Height-y); i++ {
		sw.addCh(x, y+i, vlineRune, attrs...)
	}
}

// Scrollbar draws a left aligned scrollbar reflecting the position within a
// vertical listing, with the bottom squared off:
//
//	 | content we're
//	*| showing in the
//	*| window
//	 |
//	─┘
//
// top is the first row of the scrollbar, topIndex the index of the topmost
// visible entry and size the length of the listing.
func (sw *Subwindow) Scrollbar(top, topIndex, size int) {
	sw.ScrollbarWithFill(top, topIndex, size, defaultFill)
}

// ScrollbarWithFill is Scrollbar with a custom handle rune.
func (sw *Subwindow) ScrollbarWithFill(top, topIndex, size int, fill rune) {
	if sw.Height-top < 2 || size <= 0 {
		return
	}

	barHeight := sw.Height - top - 1
	bottomIndex := topIndex + barHeight
	sliderTop := barHeight * topIndex / size
	sliderSize := barHeight * (bottomIndex - topIndex) / size
	maxSliderTop := barHeight - sliderSize - 1

	// the slider only touches the ends when we're really at them
	if topIndex == 0 {
		sliderTop = 0
	} else {
		sliderTop = max(sliderTop, 1)
	}
	if bottomIndex == size {
		sliderTop = maxSliderTop
	} else {
		sliderTop = min(sliderTop, maxSliderTop-1)
	}

	for i := 0; i < barHeight; i++ {
		if i >= sliderTop && i <= sliderTop+sliderSize {
			sw.AddStr(0, i+top, string(fill), Highlight)
		} else {
			sw.AddStr(0, i+top, " ")
		}
	}

	sw.VLine(1, top, barHeight)
	sw.addCh(1, sw.Height-1, lrCorner)
	sw.addCh(0, sw.Height-1, hlineRune)
}

func (sw *Subwindow) addCh(x, y int, r rune, attrs ...Attr) int {
	if x < 0 || y < 0 || x >= sw.Width || y >= sw.Height {
		return x
	}
	sw.put(x, y, cell{ch: r, style: sw.styleFor(attrs)})
	return x + 1
}

// cropWords returns the longest run of whole words from msg fitting within
// width, and the remainder.
func cropWords(msg string, width int) (string, string) {
	if width <= 0 {
		return "", msg
	}
	if runewidth.StringWidth(msg) <= width {
		return msg, ""
	}

	end := -1
	for i, r := range msg {
		if r != ' ' {
			continue
		}
		if runewidth.StringWidth(strings.TrimRight(msg[:i], " ")) > width {
			break
		}
		end = i
	}
	if end <= 0 {
		return "", msg
	}
	return strings.TrimRight(msg[:end], " "), msg[end:]
}

// cropWithEllipsis truncates msg to width, ending it with "..." when cut.
func cropWithEllipsis(msg string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(msg) <= width {
		return msg
	}
	if width <= len(ellipsis) {
		return runewidth.Truncate(msg, width, "")
	}
	return runewidth.Truncate(msg, width, ellipsis)
}
