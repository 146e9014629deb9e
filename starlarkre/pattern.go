package starlarkre

import (
	"fmt"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/magnetde/xre"
	"github.com/magnetde/xre/util"
)

// Pattern is a Starlark representation of a compiled pattern.
type Pattern struct {
	p *xre.Pattern
}

func newPattern(p *xre.Pattern) *Pattern {
	return &Pattern{p: p}
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value      = (*Pattern)(nil)
	_ starlark.HasAttrs   = (*Pattern)(nil)
	_ starlark.Comparable = (*Pattern)(nil)
)

// Unwrap returns the compiled pattern.
func (p *Pattern) Unwrap() *xre.Pattern { return p.p }

func (p *Pattern) String() string {
	r := util.Repr(p.p.Source())
	if len(r) > 200 {
		r = r[:200]
	}

	if f := p.p.Flags().String(); f != "" {
		return fmt.Sprintf("xre.compile(%s, %q)", r, f)
	}

	return fmt.Sprintf("xre.compile(%s)", r)
}

func (p *Pattern) Type() string          { return "pattern" }
func (p *Pattern) Freeze()               {}
func (p *Pattern) Truth() starlark.Bool  { return p.p.Source() != "" }
func (p *Pattern) Hash() (uint32, error) { return starlark.String(p.p.Source()).Hash() }

// Methods of the pattern object.
var patternMethods = map[string]*starlark.Builtin{
	"exec":     starlark.NewBuiltin("exec", patternExec),
	"test":     starlark.NewBuiltin("test", patternTest),
	"replace":  starlark.NewBuiltin("replace", patternReplace),
	"find_all": starlark.NewBuiltin("find_all", patternFindAll),
}

// patternMembers contains members of the pattern object.
var patternMembers = map[string]func(p *Pattern) starlark.Value{
	"source": func(p *Pattern) starlark.Value { return starlark.String(p.p.Source()) },
	"native": func(p *Pattern) starlark.Value { return starlark.String(p.p.Native()) },
	"flags":  func(p *Pattern) starlark.Value { return starlark.String(p.p.Flags().String()) },
	"groups": func(p *Pattern) starlark.Value { return starlark.MakeInt(p.p.NumSubexp()) },
	"groupindex": func(p *Pattern) starlark.Value {
		names := p.p.SubexpNames()

		gi := starlark.NewDict(len(names))
		for i, name := range names {
			if len(name) > 0 {
				_ = gi.SetKey(starlark.String(name), starlark.MakeInt(i))
			}
		}

		gi.Freeze()
		return gi
	},
}

// Attr gets a value for a string attribute.
func (p *Pattern) Attr(name string) (starlark.Value, error) {
	if o, ok := patternMethods[name]; ok {
		return o.BindReceiver(p), nil
	}

	if o, ok := patternMembers[name]; ok {
		return o(p), nil
	}

	return nil, nil
}

// AttrNames lists available dot expression strings.
func (p *Pattern) AttrNames() []string {
	names := make([]string, 0, len(patternMethods)+len(patternMembers))

	for name := range patternMethods {
		names = append(names, name)
	}
	for name := range patternMembers {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

func (p *Pattern) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Pattern)

	eq := p.p.Source() == o.p.Source() && p.p.Flags() == o.p.Flags()

	switch op {
	case syntax.EQL:
		return eq, nil
	case syntax.NEQ:
		return !eq, nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", p.Type(), op, o.Type())
	}
}

// patternExec - see `xreExec`.
func patternExec(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    string
		pos    int
		sticky starlark.Value = starlark.None
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "sticky?", &sticky); err != nil {
		return nil, err
	}

	return patternExecAt(b.Receiver().(*Pattern), str, pos, sticky)
}

// patternTest - see `xreTest`.
func patternTest(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var str string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str); err != nil {
		return nil, err
	}

	ok, err := b.Receiver().(*Pattern).p.Test(str)
	return starlark.Bool(ok), err
}

// patternReplace - see `xreReplace`.
func patternReplace(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str  string
		repl starlark.Value
		all  bool
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "repl", &repl, "all?", &all); err != nil {
		return nil, err
	}

	return patternReplaceWith(thread, b.Receiver().(*Pattern), str, repl, all)
}

// patternFindAll - see `xreFindAll`.
func patternFindAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var str string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str); err != nil {
		return nil, err
	}

	return patternFindAllIn(b.Receiver().(*Pattern), str)
}

// patternExecAt searches for the first match starting at pos. If sticky is None, the
// flag y of the pattern decides.
func patternExecAt(p *Pattern, str string, pos int, sticky starlark.Value) (starlark.Value, error) {
	y := p.p.Flags()&xre.FlagSticky != 0
	if sticky != starlark.None {
		y = bool(sticky.Truth())
	}

	m, err := p.p.ExecAt(str, pos, y)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return starlark.None, nil
	}

	return newMatch(p, m), nil
}

func patternReplaceWith(thread *starlark.Thread, p *Pattern, str string, repl starlark.Value, all bool) (starlark.Value, error) {
	var r xre.Replacement

	switch t := repl.(type) {
	case starlark.String:
		r = xre.Template(string(t))
	case starlark.Callable:
		r = xre.Func(func(m *xre.Match) (string, error) {
			v, err := starlark.Call(thread, t, starlark.Tuple{newMatch(p, m)}, nil)
			if err != nil {
				return "", err
			}

			s, ok := starlark.AsString(v)
			if !ok {
				return "", fmt.Errorf("replacement function returned %s, want str", v.Type())
			}

			return s, nil
		})
	default:
		return nil, fmt.Errorf("got %s, want str or callable", repl.Type())
	}

	replace := xre.Replace
	if all {
		replace = xre.ReplaceAll
	}

	res, err := replace(str, p.p, r)
	if err != nil {
		return nil, err
	}

	return starlark.String(res), nil
}

func patternFindAllIn(p *Pattern, str string) (starlark.Value, error) {
	matches, err := xre.FindAll(str, p.p)
	if err != nil {
		return nil, err
	}

	l := make([]starlark.Value, len(matches))
	for i, m := range matches {
		l[i] = newMatch(p, m)
	}

	return starlark.NewList(l), nil
}
