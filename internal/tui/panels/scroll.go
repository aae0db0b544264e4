package panels

// scrollLayout is how many lines of content fit below the title of a panel
// of the given height, and the column they start at. Content that doesn't fit
// gets a scrollbar in the first two columns, and the last row is left for the
// bottom of the scrollbar.
func scrollLayout(contentHeight, height int) (pageHeight, x int) {
	pageHeight = max(1, height-1)
	if contentHeight <= pageHeight {
		return pageHeight, 0
	}
	return max(1, height-2), 2
}
