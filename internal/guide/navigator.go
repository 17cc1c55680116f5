// Package guide pages through the instructional overlay with horizontal swipes.
package guide

import "fmt"

// DefaultSwipeThreshold is the horizontal displacement, in pixels, that turns a page.
const DefaultSwipeThreshold = 50

// Navigator tracks the visible guide page and the swipe in progress.
// The page count is fixed at construction.
type Navigator struct {
	pages     int
	index     int
	visible   bool
	threshold int

	originX  int
	tracking bool
	fired    bool
}

// NewNavigator creates a navigator over pages images. threshold below 1 uses DefaultSwipeThreshold.
func NewNavigator(pages, threshold int) *Navigator {
	if pages < 0 {
		pages = 0
	}
	if threshold < 1 {
		threshold = DefaultSwipeThreshold
	}
	return &Navigator{pages: pages, threshold: threshold}
}

// Pages returns the number of guide pages.
func (n *Navigator) Pages() int { return n.pages }

// Index returns the current page.
func (n *Navigator) Index() int { return n.index }

// Visible reports whether the guide overlay is shown.
func (n *Navigator) Visible() bool { return n.visible }

// Show opens the guide at the first page. It returns false when there are no pages.
func (n *Navigator) Show() bool {
	if n.pages == 0 {
		return false
	}
	n.visible = true
	n.index = 0
	n.Reset()
	return true
}

// Hide closes the guide overlay.
func (n *Navigator) Hide() {
	n.visible = false
	n.Reset()
}

// Toggle flips visibility and reports the new state.
func (n *Navigator) Toggle() bool {
	if n.visible {
		n.Hide()
		return false
	}
	return n.Show()
}

// SetIndex jumps to page i, clamped to the valid range.
func (n *Navigator) SetIndex(i int) {
	n.index = n.clamp(i)
}

// StartSwipe records the origin of a new swipe.
func (n *Navigator) StartSwipe(x int) {
	n.originX = x
	n.tracking = true
	n.fired = false
}

// Update feeds the current fingertip x. At most one page turn happens per
// swipe: moving right of the origin goes back, moving left goes forward.
// It reports whether the page changed.
func (n *Navigator) Update(x int) bool {
	if !n.tracking {
		n.StartSwipe(x)
		return false
	}
	if n.fired {
		return false
	}

	delta := x - n.originX
	if delta <= n.threshold && delta >= -n.threshold {
		return false
	}
	n.fired = true

	next := n.index + 1
	if delta > 0 {
		next = n.index - 1
	}
	next = n.clamp(next)
	if next == n.index {
		return false
	}
	n.index = next
	return true
}

// Reset forgets the swipe origin and the fired flag.
func (n *Navigator) Reset() {
	n.originX = 0
	n.tracking = false
	n.fired = false
}

// Label is the page indicator drawn with the overlay.
func (n *Navigator) Label() string {
	return fmt.Sprintf("Guide %d/%d", n.index+1, n.pages)
}

func (n *Navigator) clamp(i int) int {
	if n.pages == 0 || i < 0 {
		return 0
	}
	if i > n.pages-1 {
		return n.pages - 1
	}
	return i
}
