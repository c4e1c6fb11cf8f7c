package session

// Cursor is a row index into a list whose length is supplied on each call.
// The index is always valid for that length, or 0 when the list is empty.
type Cursor struct {
	Index int
}

// Home moves the cursor to the first row.
func (c *Cursor) Home() bool {
	old := c.Index
	c.Index = 0
	return old != c.Index
}

// End moves the cursor to the last row.
func (c *Cursor) End(n int) bool {
	if n == 0 {
		c.Index = 0
		return false
	}
	old := c.Index
	c.Index = n - 1
	return old != c.Index
}

// Move shifts the cursor by delta rows, clamping at both ends.
func (c *Cursor) Move(delta, n int) bool {
	if n == 0 {
		c.Index = 0
		return false
	}
	old := c.Index
	c.Index += delta
	c.Clamp(n)
	return c.Index != old
}

// PageUp moves the cursor up by one page of the given size.
func (c *Cursor) PageUp(size, n int) bool {
	return c.Move(-pageSize(size, n), n)
}

// PageDown moves the cursor down by one page of the given size.
func (c *Cursor) PageDown(size, n int) bool {
	return c.Move(pageSize(size, n), n)
}

// Clamp forces the index into range for a list of length n.
func (c *Cursor) Clamp(n int) {
	if n == 0 || c.Index < 0 {
		c.Index = 0
		return
	}
	if c.Index >= n {
		c.Index = n - 1
	}
}

func pageSize(size, n int) int {
	if n == 0 {
		return 0
	}
	if size <= 0 || size > n {
		size = n
	}
	return size
}
