package screen

// Scroller tracks a scroll position for keyboard navigation of content.
type Scroller struct {
	location int
}

// Location provides the position we've scrolled to.
func (s *Scroller) Location() int {
	return s.location
}

// LocationWithin clamps the position to the valid range for the given content
// and page heights before returning it. Call it whenever the content changes
// or the panel is resized.
func (s *Scroller) LocationWithin(contentHeight, pageHeight int) int {
	s.location = max(0, min(s.location, contentHeight-pageHeight))
	return s.location
}

// HandleKey moves the position according to the key: up/down by one, page
// up/down by pageHeight, home/end to the ends. Returns true if the position
// changed.
func (s *Scroller) HandleKey(key KeyInput, contentHeight, pageHeight int) bool {
	newLocation := scrollPosition(s.location, key, contentHeight, pageHeight, false)
	if newLocation == s.location {
		return false
	}
	s.location = newLocation
	return true
}

// CursorScroller is a scroller with a cursor selecting an item. The
// selection follows the item rather than the index, so it stays put when
// content shifts around it.
type CursorScroller[T comparable] struct {
	location       int
	cursorLocation int
	selection      T
	hasSelection   bool
}

// Selection returns the selected item and the scroll position keeping it
// visible. ok is false if content is empty. A pageHeight of zero or less skips
// scroll adjustment.
func (c *CursorScroller[T]) Selection(content []T, pageHeight int) (selected T, scroll int, ok bool) {
	var zero T

	if len(content) == 0 {
		c.cursorLocation = 0
		c.selection = zero
		c.hasSelection = false
		return zero, 0, false
	}

	idx := -1
	if c.hasSelection {
		for i, item := range content {
			if item == c.selection {
				idx = i
				break
			}
		}
	}

	if idx >= 0 {
		c.cursorLocation = idx
	} else {
		// select the next closest entry
		c.cursorLocation = max(0, min(c.cursorLocation, len(content)-1))
		c.selection = content[c.cursorLocation]
		c.hasSelection = true
	}

	if pageHeight > 0 {
		if c.cursorLocation < c.location {
			c.location = c.cursorLocation
		} else if c.cursorLocation > c.location+pageHeight-1 {
			c.location = c.cursorLocation - pageHeight + 1
		}
	}

	return c.selection, c.location, true
}

// HandleKey moves the cursor according to the key. Returns true if the
// selection changed.
func (c *CursorScroller[T]) HandleKey(key KeyInput, content []T, pageHeight int) bool {
	c.Selection(content, pageHeight)
	newLocation := scrollPosition(c.cursorLocation, key, len(content), pageHeight, true)

	if newLocation == c.cursorLocation || len(content) == 0 {
		return false
	}
	c.cursorLocation = newLocation
	c.selection = content[newLocation]
	c.hasSelection = true
	return true
}

func scrollPosition(location int, key KeyInput, contentHeight, pageHeight int, isCursor bool) int {
	var shift int

	switch {
	case key.Match("up"):
		shift = -1
	case key.Match("down"):
		shift = 1
	case key.Match("page_up"):
		if isCursor {
			shift = -pageHeight + 1
		} else {
			shift = -pageHeight
		}
	case key.Match("page_down"):
		if isCursor {
			shift = pageHeight - 1
		} else {
			shift = pageHeight
		}
	case key.Match("home"):
		shift = -contentHeight
	case key.Match("end"):
		shift = contentHeight
	default:
		return location
	}

	maxPosition := contentHeight - pageHeight
	if isCursor {
		maxPosition = contentHeight - 1
	}
	return max(0, min(location+shift, maxPosition))
}
