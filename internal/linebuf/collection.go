package linebuf

// Collection is an ordered set of Lines with optional string aliases.
// Line 0 is the "primary" line by convention: Primary()/PrimaryAt() delegate
// to it, matching the sugar the source gives LineSeries/LineBuffer (spec.md
// §3.2).
type Collection struct {
	lines   []*Line
	byName  map[string]int
	names   []string // names[i] is the alias of lines[i], "" if unnamed
}

// NewCollection builds an empty collection.
func NewCollection() *Collection {
	return &Collection{byName: make(map[string]int)}
}

// Add appends a new unnamed line and returns it.
func (c *Collection) Add() *Line {
	return c.AddNamed("")
}

// AddNamed appends a new line under the given alias (pass "" for none) and
// returns it. Re-using a name rebinds the alias to the new index.
func (c *Collection) AddNamed(name string) *Line {
	l := New()
	c.lines = append(c.lines, l)
	c.names = append(c.names, name)
	if name != "" {
		c.byName[name] = len(c.lines) - 1
	}
	return l
}

// Bound behaves like AddNamed but creates a q-buffer-bounded line (spec.md
// §4.1 savemem mode).
func (c *Collection) Bound(name string, savemem int) *Line {
	l := NewBounded(savemem)
	c.lines = append(c.lines, l)
	c.names = append(c.names, name)
	if name != "" {
		c.byName[name] = len(c.lines) - 1
	}
	return l
}

// Len returns the number of lines registered.
func (c *Collection) Len() int { return len(c.lines) }

// LineAt returns the line at index i, or nil if i is out of range.
func (c *Collection) LineAt(i int) *Line {
	if i < 0 || i >= len(c.lines) {
		return nil
	}
	return c.lines[i]
}

// Line looks up a line by its alias.
func (c *Collection) Line(name string) (*Line, error) {
	i, ok := c.byName[name]
	if !ok {
		return nil, ErrUnknownLine
	}
	return c.lines[i], nil
}

// Name returns the alias registered for index i, or "" if none.
func (c *Collection) Name(i int) string {
	if i < 0 || i >= len(c.names) {
		return ""
	}
	return c.names[i]
}

// Names returns every alias registered for lookup, in no particular order.
func (c *Collection) Names() []string {
	out := make([]string, 0, len(c.byName))
	for n := range c.byName {
		out = append(out, n)
	}
	return out
}

// Primary returns line 0, the collection's conventional default line.
func (c *Collection) Primary() *Line {
	return c.LineAt(0)
}

// PrimaryAt is sugar for Primary().Get(ago).
func (c *Collection) PrimaryAt(ago int) float64 {
	p := c.Primary()
	if p == nil {
		return NaN
	}
	return p.Get(ago)
}
