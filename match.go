package xre

import (
	"strings"

	"github.com/magnetde/xre/syntax"
)

// Group is a captured group of a match.
type Group struct {
	Name    string // "" for unnamed groups and the whole match
	Value   string
	Start   int  // byte offset; -1 if the group did not participate
	End     int  // byte offset; -1 if the group did not participate
	Matched bool // whether the group participated in the match
}

// Match is the result of a successful match. Index 0 is the whole match.
type Match struct {
	pattern *Pattern
	input   string
	groups  []Group
}

// resolve converts byte offset pairs of a native match into a Match.
// The number of pairs must agree with the capture map.
func resolve(p *Pattern, text string, loc []int) (*Match, error) {
	if n := len(loc)/2 - 1; n != p.captures.Len() {
		return nil, &InvariantViolation{
			Pattern: p.Native(),
			Want:    p.captures.Len(),
			Got:     n,
		}
	}

	groups := make([]Group, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]

		g := Group{
			Name:  p.captures.Name(i),
			Start: start,
			End:   end,
		}

		if start >= 0 {
			g.Value = text[start:end]
			g.Matched = true
		}

		groups[i] = g
	}

	m := &Match{
		pattern: p,
		input:   text,
		groups:  groups,
	}

	return m, nil
}

// String returns the matched text.
func (m *Match) String() string {
	return m.groups[0].Value
}

// Value returns the matched text.
func (m *Match) Value() string {
	return m.groups[0].Value
}

// Index returns the byte offset of the match.
func (m *Match) Index() int {
	return m.groups[0].Start
}

// End returns the byte offset of the end of the match.
func (m *Match) End() int {
	return m.groups[0].End
}

// Input returns the searched text.
func (m *Match) Input() string {
	return m.input
}

// Pattern returns the pattern, that produced the match.
func (m *Match) Pattern() *Pattern {
	return m.pattern
}

// NumGroups returns the number of groups without the whole match.
func (m *Match) NumGroups() int {
	return len(m.groups) - 1
}

// Group returns the value of group i. The boolean result is false if the group does not
// exist or did not participate in the match.
func (m *Match) Group(i int) (string, bool) {
	if i < 0 || i >= len(m.groups) {
		return "", false
	}

	g := &m.groups[i]
	return g.Value, g.Matched
}

// Named returns the value of the named group.
func (m *Match) Named(name string) (string, bool) {
	i, ok := m.pattern.captures.Index(name)
	if !ok {
		return "", false
	}

	return m.Group(i)
}

// Groups returns the values of all named groups. Groups, that did not participate, are "".
func (m *Match) Groups() map[string]string {
	res := make(map[string]string)

	for _, g := range m.groups[1:] {
		if g.Name != "" {
			res[g.Name] = g.Value
		}
	}

	return res
}

// Captures returns all groups. The first element is the whole match.
func (m *Match) Captures() []Group {
	return append([]Group(nil), m.groups...)
}

// Expand substitutes the references of the template with the groups of the match.
// See syntax.ParseTemplate for the template syntax.
func (m *Match) Expand(template string) (string, error) {
	rules, err := syntax.ParseTemplate(m.pattern.captures, template)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	m.expand(&b, rules)

	return b.String(), nil
}

func (m *Match) expand(b *strings.Builder, rules []syntax.TemplateRule) {
	for _, t := range rules {
		switch t.Index {
		case syntax.IndexLiteral:
			b.WriteString(t.Literal)
		case syntax.IndexPrefix:
			b.WriteString(m.input[:m.Index()])
		case syntax.IndexSuffix:
			b.WriteString(m.input[m.End():])
		default:
			b.WriteString(m.groups[t.Index].Value)
		}
	}
}
