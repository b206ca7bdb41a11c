package pager

import "sync"

// Controller is a bounds-checked page cursor over the loaded document.
// The renderer collaborator consumes its position; citation buttons drive
// it via GoTo. Out-of-range requests are ignored, and Next/Prev clamp at
// the document edges instead of erroring.
type Controller struct {
	mu      sync.Mutex
	current int
	total   int
}

// Reset points the cursor at page 1 of a document with total pages.
// A non-positive total leaves the controller without a document.
func (c *Controller) Reset(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if total < 1 {
		c.current, c.total = 0, 0
		return
	}
	c.current, c.total = 1, total
}

// Current returns the current page, or 0 when no document is loaded.
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Total returns the page count of the loaded document.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// GoTo jumps to page n. A no-op unless 1 <= n <= total.
func (c *Controller) GoTo(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > c.total {
		return
	}
	c.current = n
}

// Next advances one page, clamping at the last page.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current < c.total {
		c.current++
	}
}

// Prev steps back one page, clamping at page 1.
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current > 1 {
		c.current--
	}
}
