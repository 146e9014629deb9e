package starlarkre

import (
	"fmt"
	"unicode/utf8"

	"go.starlark.net/starlark"

	"github.com/magnetde/xre"
)

// xreCompile compiles a pattern string into a pattern object, which can be used for
// matching using its `exec`, `test` and other methods.
func xreCompile(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		flags   flagsParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "flags?", &flags); err != nil {
		return nil, err
	}

	return compilePattern(b, pattern, flags)
}

// xrePurge clears the pattern cache.
func xrePurge(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	b.Receiver().(*Module).purge()
	return starlark.None, nil
}

// xreExec searches the string for the first match starting at `pos` and returns a
// corresponding `Match`, or `None`. If `sticky` is set, the match must start at `pos`.
func xreExec(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str     string
		pattern patternParam
		pos     int
		sticky  starlark.Value = starlark.None
		flags   flagsParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pattern", &pattern, "pos?", &pos, "sticky?", &sticky, "flags?", &flags); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}

	return patternExecAt(p, str, pos, sticky)
}

// xreTest reports whether the pattern matches the string.
func xreTest(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str     string
		pattern patternParam
		flags   flagsParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pattern", &pattern, "flags?", &flags); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}

	ok, err := p.p.Test(str)
	if err != nil {
		return nil, err
	}

	return starlark.Bool(ok), nil
}

// xreReplace replaces the first match, or all matches if the pattern has the flag g or
// `all` is set. The replacement is a template string or a function, that is called with
// the match and returns the replacement string.
func xreReplace(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str     string
		pattern patternParam
		repl    starlark.Value
		all     bool
		flags   flagsParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pattern", &pattern, "repl", &repl, "all?", &all, "flags?", &flags); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}

	return patternReplaceWith(thread, p, str, repl, all)
}

// xreForEach calls `fn(match, i)` for every match in the string.
func xreForEach(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str     string
		pattern patternParam
		fn      starlark.Callable
		flags   flagsParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pattern", &pattern, "fn", &fn, "flags?", &flags); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}

	err = xre.ForEach(str, p.p, func(m *xre.Match, i int) error {
		_, err := starlark.Call(thread, fn, starlark.Tuple{newMatch(p, m), starlark.MakeInt(i)}, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return starlark.None, nil
}

// xreFindAll returns a list of all matches in the string.
func xreFindAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str     string
		pattern patternParam
		flags   flagsParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pattern", &pattern, "flags?", &flags); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}

	return patternFindAllIn(p, str)
}

// xreMatchChain matches a chain of patterns. Every element of the chain is a pattern or
// a dict with the keys `regex` and `backref`, where `backref` is a group number or name.
func xreMatchChain(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str   string
		chain *starlark.List
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "chain", &chain); err != nil {
		return nil, err
	}

	stages := make([]xre.ChainStage, chain.Len())
	for i := range stages {
		stage, err := chainStage(b, chain.Index(i))
		if err != nil {
			return nil, fmt.Errorf("%s: element %d: %w", b.Name(), i, err)
		}

		stages[i] = stage
	}

	values, err := xre.MatchChain(str, stages)
	if err != nil {
		return nil, err
	}

	return stringList(values), nil
}

func chainStage(b *starlark.Builtin, v starlark.Value) (xre.ChainStage, error) {
	var stage xre.ChainStage

	regex, backref := v, starlark.Value(starlark.None)

	if d, ok := v.(*starlark.Dict); ok {
		r, found, err := d.Get(starlark.String("regex"))
		if err != nil {
			return stage, err
		}
		if !found {
			return stage, fmt.Errorf("missing key %q", "regex")
		}

		regex = r

		if br, found, err := d.Get(starlark.String("backref")); err != nil {
			return stage, err
		} else if found {
			backref = br
		}
	}

	var pattern patternParam
	if err := pattern.Unpack(regex); err != nil {
		return stage, err
	}

	p, err := compilePattern(b, pattern, flagsParam{})
	if err != nil {
		return stage, err
	}

	stage.Pattern = p.p

	switch t := backref.(type) {
	case starlark.NoneType:
	case starlark.Int:
		i, ok := t.Int64()
		if !ok {
			return stage, fmt.Errorf("backref %s out of range", t)
		}
		stage.Selector = xre.SelectGroup(int(i))
	case starlark.String:
		stage.Selector = xre.SelectName(string(t))
	default:
		return stage, fmt.Errorf("got backref of type %s, want int or str", backref.Type())
	}

	return stage, nil
}

var unbalancedPolicies = map[string]xre.Unbalanced{
	"error":     xre.UnbalancedError,
	"skip":      xre.UnbalancedSkip,
	"skip-lazy": xre.UnbalancedSkipLazy,
}

// xreMatchRecursive returns the text between the outermost balanced delimiters. If
// `value_names` is a list of four names (between, left, match, right), a list of dicts
// with the keys `name`, `value`, `start` and `end` is returned instead; a `None` name
// omits that kind of segment.
func xreMatchRecursive(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str, left, right string
		flags            flagsParam
		valueNames       starlark.Value = starlark.None
		escapeChar       string
		unbalanced       = "error"
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"string", &str, "left", &left, "right", &right, "flags?", &flags,
		"value_names?", &valueNames, "escape_char?", &escapeChar, "unbalanced?", &unbalanced,
	); err != nil {
		return nil, err
	}

	opts := &xre.RecursiveOptions{}

	policy, ok := unbalancedPolicies[unbalanced]
	if !ok {
		return nil, fmt.Errorf("%s: unknown unbalanced policy %q", b.Name(), unbalanced)
	}
	opts.Unbalanced = policy

	if escapeChar != "" {
		r, size := utf8.DecodeRuneInString(escapeChar)
		if size != len(escapeChar) {
			return nil, xre.ErrEscapeChar
		}
		opts.EscapeChar = r
	}

	c := b.Receiver().(*Module).Config()

	if valueNames == starlark.None {
		values, err := c.MatchRecursive(str, left, right, flags.flags, opts)
		if err != nil {
			return nil, err
		}

		return stringList(values), nil
	}

	names, err := unpackValueNames(valueNames)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	segs, err := c.MatchRecursiveSegments(str, left, right, flags.flags, opts, names)
	if err != nil {
		return nil, err
	}

	l := make([]starlark.Value, len(segs))
	for i, s := range segs {
		d := starlark.NewDict(4)
		_ = d.SetKey(starlark.String("name"), starlark.String(s.Name))
		_ = d.SetKey(starlark.String("value"), starlark.String(s.Value))
		_ = d.SetKey(starlark.String("start"), starlark.MakeInt(s.Start))
		_ = d.SetKey(starlark.String("end"), starlark.MakeInt(s.End))
		l[i] = d
	}

	return starlark.NewList(l), nil
}

func unpackValueNames(v starlark.Value) (xre.ValueNames, error) {
	var names xre.ValueNames

	seq, ok := v.(starlark.Indexable)
	if !ok || seq.Len() != 4 {
		return names, fmt.Errorf("value_names must be a list of 4 names, got %s", v.Type())
	}

	fields := []*string{&names.Between, &names.Left, &names.Match, &names.Right}
	for i, f := range fields {
		switch t := seq.Index(i).(type) {
		case starlark.NoneType:
		case starlark.String:
			*f = string(t)
		default:
			return names, fmt.Errorf("value name %d must be str or None, got %s", i, t.Type())
		}
	}

	return names, nil
}

// xreBuild builds a pattern from a template with `{{name}}` placeholders. The values of
// `subs` are pattern strings, compiled patterns or dicts with the keys `template` and
// `subs` for nested templates.
func xreBuild(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		template string
		subs     *starlark.Dict
		flags    flagsParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "template", &template, "subs", &subs, "flags?", &flags); err != nil {
		return nil, err
	}

	s, err := unpackSubpatterns(subs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	p, err := b.Receiver().(*Module).Config().Build(template, s, flags.flags)
	if err != nil {
		return nil, err
	}

	return newPattern(p), nil
}

func unpackSubpatterns(d *starlark.Dict) (xre.Subpatterns, error) {
	subs := make(xre.Subpatterns, d.Len())

	for _, item := range d.Items() {
		name, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("subpattern name must be str, got %s", item[0].Type())
		}

		switch t := item[1].(type) {
		case starlark.String:
			subs[name] = xre.Fragment(string(t))
		case *Pattern:
			subs[name] = xre.Compiled(t.p)
		case *starlark.Dict:
			sub, err := unpackNested(t)
			if err != nil {
				return nil, fmt.Errorf("subpattern %s: %w", name, err)
			}
			subs[name] = sub
		default:
			return nil, fmt.Errorf("subpattern %s: got %s, want str, pattern or dict", name, t.Type())
		}
	}

	return subs, nil
}

func unpackNested(d *starlark.Dict) (xre.Subpattern, error) {
	var zero xre.Subpattern

	v, found, err := d.Get(starlark.String("template"))
	if err != nil {
		return zero, err
	}

	template, ok := starlark.AsString(v)
	if !found || !ok {
		return zero, fmt.Errorf("nested subpattern needs a str value for %q", "template")
	}

	subs := xre.Subpatterns{}

	if v, found, err := d.Get(starlark.String("subs")); err != nil {
		return zero, err
	} else if found {
		sd, ok := v.(*starlark.Dict)
		if !ok {
			return zero, fmt.Errorf("got subs of type %s, want dict", v.Type())
		}

		subs, err = unpackSubpatterns(sd)
		if err != nil {
			return zero, err
		}
	}

	return xre.Nested(template, subs), nil
}

// xreUnion combines strings and patterns into one pattern. Strings are matched literally.
// The conjunction is "or" or "none", which concatenates the members.
func xreUnion(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		patterns    *starlark.List
		flags       flagsParam
		conjunction = "or"
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "patterns", &patterns, "flags?", &flags, "conjunction?", &conjunction); err != nil {
		return nil, err
	}

	var conj xre.Conjunction
	switch conjunction {
	case "or":
		conj = xre.Or
	case "none":
		conj = xre.And
	default:
		return nil, fmt.Errorf("%s: unknown conjunction %q", b.Name(), conjunction)
	}

	parts := make([]xre.Part, patterns.Len())
	for i := range parts {
		switch t := patterns.Index(i).(type) {
		case starlark.String:
			parts[i] = xre.LiteralPart(string(t))
		case *Pattern:
			parts[i] = xre.PatternPart(t.p)
		default:
			return nil, fmt.Errorf("%s: element %d: got %s, want str or pattern", b.Name(), i, t.Type())
		}
	}

	p, err := b.Receiver().(*Module).Config().Union(parts, flags.flags, conj)
	if err != nil {
		return nil, err
	}

	return newPattern(p), nil
}

// xreEscape escapes the characters of the string, that have a special meaning in patterns.
func xreEscape(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var str string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str); err != nil {
		return nil, err
	}

	return starlark.String(xre.Escape(str)), nil
}

// xreInstall enables (`install`) or disables (`uninstall`) options of the module.
// The only option is "astral".
func xreInstall(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}

	m := b.Receiver().(*Module)
	on := b.Name() == "install"

	for _, v := range args {
		option, ok := starlark.AsString(v)
		if !ok {
			return nil, fmt.Errorf("%s: got %s, want str", b.Name(), v.Type())
		}

		if err := m.setOption(option, on); err != nil {
			return nil, err
		}
	}

	return starlark.None, nil
}

// xreIsInstalled reports whether an option of the module is enabled.
func xreIsInstalled(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var option string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "option", &option); err != nil {
		return nil, err
	}

	c := b.Receiver().(*Module).Config()
	return starlark.Bool(option == "astral" && c.Astral), nil
}

func stringList(values []string) *starlark.List {
	l := make([]starlark.Value, len(values))
	for i, v := range values {
		l[i] = starlark.String(v)
	}

	return starlark.NewList(l)
}
