package syntax

// CaptureMap describes the capturing groups of a pattern. Groups are numbered from 1 in the
// order of their opening parentheses; each group may have a unique name.
// A nil *CaptureMap describes a pattern without groups.
type CaptureMap struct {
	names []string // names[i] is the name of group i+1, or ""
	index map[string]int
}

// newCaptureMap returns a capture map for the group names. An empty string denotes an unnamed
// group. Duplicate names are reported with the index of the second occurrence.
func newCaptureMap(names []string) (*CaptureMap, int) {
	c := &CaptureMap{
		names: names,
		index: make(map[string]int),
	}

	for i, name := range names {
		if name == "" {
			continue
		}
		if _, dup := c.index[name]; dup {
			return nil, i
		}

		c.index[name] = i + 1
	}

	return c, -1
}

// Len returns the number of groups.
func (c *CaptureMap) Len() int {
	if c == nil {
		return 0
	}

	return len(c.names)
}

// Name returns the name of group i, or "" if the group is unnamed or does not exist.
func (c *CaptureMap) Name(i int) string {
	if c == nil || i < 1 || i > len(c.names) {
		return ""
	}

	return c.names[i-1]
}

// Index returns the number of the group with the name.
func (c *CaptureMap) Index(name string) (int, bool) {
	if c == nil {
		return 0, false
	}

	i, ok := c.index[name]
	return i, ok
}

// Names returns the group names like regexp.Regexp.SubexpNames:
// Names()[0] is the name of the whole match and always empty.
func (c *CaptureMap) Names() []string {
	if c == nil {
		return []string{""}
	}

	return append([]string{""}, c.names...)
}

// HasNames reports whether at least one group is named.
func (c *CaptureMap) HasNames() bool {
	return c != nil && len(c.index) > 0
}

