package starlarkre

import (
	"errors"
	"fmt"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/magnetde/xre"
	"github.com/magnetde/xre/util"
)

var zeroInt = starlark.MakeInt(0)

// Match is a Starlark representation of a match.
type Match struct {
	pattern *Pattern
	m       *xre.Match
	groups  []xre.Group
}

func newMatch(p *Pattern, m *xre.Match) *Match {
	return &Match{
		pattern: p,
		m:       m,
		groups:  m.Captures(),
	}
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value      = (*Match)(nil)
	_ starlark.HasAttrs   = (*Match)(nil)
	_ starlark.Mapping    = (*Match)(nil)
	_ starlark.Comparable = (*Match)(nil)
)

func (m *Match) String() string {
	return fmt.Sprintf("<xre.match object; span=(%d, %d), match=%s>", m.m.Index(), m.m.End(), util.Repr(m.m.Value()))
}

func (m *Match) Type() string         { return "match" }
func (m *Match) Freeze()              {}
func (m *Match) Truth() starlark.Bool { return true }

func (m *Match) Hash() (uint32, error) {
	var tmp uint32

	h, _ := m.pattern.Hash() // string type; no error possible

	for _, g := range m.groups {
		if !g.Matched {
			tmp = 0
		} else {
			tmp, _ = starlark.String(g.Value).Hash() // string type; no error possible
			tmp ^= uint32(g.Start) ^ uint32(g.End)
		}

		h ^= tmp
		h *= 16777619
	}

	return h, nil
}

// matchMethods contains methods of the match object.
var matchMethods = map[string]*starlark.Builtin{
	"expand":    starlark.NewBuiltin("expand", matchExpand),
	"group":     starlark.NewBuiltin("group", matchGroup),
	"groups":    starlark.NewBuiltin("groups", matchGroups),
	"groupdict": starlark.NewBuiltin("groupdict", matchGroupDict),
	"start":     starlark.NewBuiltin("start", matchStart),
	"end":       starlark.NewBuiltin("end", matchEnd),
	"span":      starlark.NewBuiltin("span", matchSpan),
}

// matchMembers contains members of the match object.
var matchMembers = map[string]func(m *Match) starlark.Value{
	"index": func(m *Match) starlark.Value { return starlark.MakeInt(m.m.Index()) },
	"input": func(m *Match) starlark.Value { return starlark.String(m.m.Input()) },
	"value": func(m *Match) starlark.Value { return starlark.String(m.m.Value()) },
	"re":    func(m *Match) starlark.Value { return m.pattern },
}

// Attr gets a value for a string attribute.
func (m *Match) Attr(name string) (starlark.Value, error) {
	if o, ok := matchMethods[name]; ok {
		return o.BindReceiver(m), nil
	}

	if o, ok := matchMembers[name]; ok {
		return o(m), nil
	}

	return nil, nil
}

// AttrNames lists available dot expression strings.
func (m *Match) AttrNames() []string {
	names := make([]string, 0, len(matchMethods)+len(matchMembers))

	for name := range matchMethods {
		names = append(names, name)
	}
	for name := range matchMembers {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

// Get returns the value corresponding to the specified key.
// For the match object, this is equals with calling the `group` function.
func (m *Match) Get(v starlark.Value) (starlark.Value, bool, error) {
	g, err := m.group(v)
	if err != nil {
		return nil, false, err
	}

	return g, true, nil
}

func (m *Match) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Match)

	eq := m.m.Input() == o.m.Input() && slices.Equal(m.groups, o.groups)
	if eq {
		var err error
		if eq, err = m.pattern.CompareSameType(syntax.EQL, o.pattern, 0); err != nil {
			return false, err
		}
	}

	switch op {
	case syntax.EQL:
		return eq, nil
	case syntax.NEQ:
		return !eq, nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", m.Type(), op, o.Type())
	}
}

func (m *Match) group(v starlark.Value) (starlark.Value, error) {
	if i, ok := m.getIndex(v); ok {
		g := &m.groups[i]
		if !g.Matched {
			return starlark.None, nil
		}

		return starlark.String(g.Value), nil
	}

	return nil, errors.New("IndexError: no such group")
}

func (m *Match) getIndex(v starlark.Value) (int, bool) {
	switch t := v.(type) {
	case starlark.Int:
		i, ok := t.Int64()
		if ok && i >= 0 && i < int64(len(m.groups)) {
			return int(i), true
		}
	case starlark.String:
		if i := m.pattern.p.SubexpIndex(string(t)); i >= 0 {
			return i, true
		}
	}

	return 0, false
}

func matchExpand(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var template string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "template", &template); err != nil {
		return nil, err
	}

	s, err := b.Receiver().(*Match).m.Expand(template)
	if err != nil {
		return nil, err
	}

	return starlark.String(s), nil
}

func matchGroup(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), nil, kwargs); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)
	size := len(args)

	switch size {
	case 0:
		return m.group(zeroInt)
	case 1:
		return m.group(args[0])
	default:
		result := make(starlark.Tuple, size)

		for i := range result {
			g, err := m.group(args[i])
			if err != nil {
				return nil, err
			}

			result[i] = g
		}

		return result, nil
	}
}

func matchGroups(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var defaultValue starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &defaultValue); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)

	result := make(starlark.Tuple, 0, len(m.groups)-1)

	for _, group := range m.groups[1:] {
		var g starlark.Value
		if !group.Matched {
			g = defaultValue
		} else {
			g = starlark.String(group.Value)
		}

		result = append(result, g)
	}

	return result, nil
}

func matchGroupDict(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var defaultValue starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &defaultValue); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)
	result := starlark.NewDict(len(m.groups))

	for _, g := range m.groups[1:] {
		if g.Name == "" {
			continue
		}

		var v starlark.Value = starlark.String(g.Value)
		if !g.Matched {
			v = defaultValue
		}

		if err := result.SetKey(starlark.String(g.Name), v); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// groupSpan returns the byte offsets of a group, or -1 for groups, that do not exist or
// did not participate.
func groupSpan(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (int, int, error) {
	var group starlark.Value = zeroInt
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "group?", &group); err != nil {
		return 0, 0, err
	}

	m := b.Receiver().(*Match)

	i, ok := m.getIndex(group)
	if !ok {
		return -1, -1, nil
	}

	return m.groups[i].Start, m.groups[i].End, nil
}

func matchStart(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	s, _, err := groupSpan(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.MakeInt(s), nil
}

func matchEnd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	_, e, err := groupSpan(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.MakeInt(e), nil
}

func matchSpan(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	s, e, err := groupSpan(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.Tuple{starlark.MakeInt(s), starlark.MakeInt(e)}, nil
}
