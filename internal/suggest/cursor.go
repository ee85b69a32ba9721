package suggest

// Cursor tracks the highlighted row of a suggestion list.
// Index -1 means nothing is highlighted.
type Cursor struct {
	items []string
	index int
}

// NewCursor returns a cursor over items with nothing highlighted.
func NewCursor(items []string) *Cursor {
	return &Cursor{items: items, index: -1}
}

// Items returns the list the cursor moves over.
func (c *Cursor) Items() []string {
	return c.items
}

// Index returns the highlighted position, or -1.
func (c *Cursor) Index() int {
	return c.index
}

// Len returns the number of suggestions.
func (c *Cursor) Len() int {
	return len(c.items)
}

// Next moves the highlight down, stopping at the last row.
func (c *Cursor) Next() {
	if c.index < len(c.items)-1 {
		c.index++
	}
}

// Prev moves the highlight up. Moving above the first row clears it.
func (c *Cursor) Prev() {
	if c.index >= 0 {
		c.index--
	}
}

// Set highlights row i if it exists.
func (c *Cursor) Set(i int) bool {
	if i < 0 || i >= len(c.items) {
		return false
	}
	c.index = i
	return true
}

// Selected returns the highlighted suggestion.
func (c *Cursor) Selected() (string, bool) {
	if c.index < 0 || c.index >= len(c.items) {
		return "", false
	}
	return c.items[c.index], true
}

// Reset replaces the list and clears the highlight.
func (c *Cursor) Reset(items []string) {
	c.items = items
	c.index = -1
}
