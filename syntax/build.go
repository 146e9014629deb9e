package syntax

// SubKind is the kind of a subpattern.
type SubKind uint8

const (
	SubFragment SubKind = iota // a dialect fragment
	SubCompiled                // the native source of a compiled pattern
	SubTemplate                // a nested template with its own subpatterns
)

// Subpattern is a value for a {{name}} placeholder.
type Subpattern struct {
	Kind     SubKind
	Source   string                // fragment, native source or template
	Flags    Flags                 // flags of a compiled pattern
	Captures *CaptureMap           // groups of a compiled pattern
	Subs     map[string]Subpattern // subpatterns of a nested template
}

// scope resolves placeholder names. Nested templates see the subpatterns of their enclosing
// templates.
type scope struct {
	subs   map[string]Subpattern
	parent *scope
}

func (s *scope) lookup(name string) (*scope, Subpattern, bool) {
	for ; s != nil; s = s.parent {
		if sub, ok := s.subs[name]; ok {
			return s, sub, true
		}
	}

	return nil, Subpattern{}, false
}

type expansionKey struct {
	s    *scope
	name string
}

type expander struct {
	flags     Flags
	expanding map[expansionKey]bool
}

// Expand replaces the {{name}} placeholders of a template with their subpatterns.
// It returns the expanded dialect source and the flags including the letters of a leading
// mode modifier of the template.
//
// Every subpattern is wrapped in a non-capturing group; ({{name}}) becomes a group named
// after the subpattern. Leading ^ and trailing $ of a subpattern are removed, if both exist.
// Numbered backreferences of the template and of every subpattern are renumbered to refer to
// the same groups in the expanded pattern.
func Expand(template string, subs map[string]Subpattern, flags Flags) (string, Flags, error) {
	flags, offset, err := leadingModifier(template, flags)
	if err != nil {
		return "", 0, err
	}

	e := expander{
		flags:     flags,
		expanding: make(map[expansionKey]bool),
	}

	src, _, err := e.template(&scope{subs: subs}, template, offset, false)
	if err != nil {
		return "", 0, err
	}

	return src, flags, nil
}

// template expands a template. Backreferences in the result are numbered relative to the
// start of the template.
func (e *expander) template(sc *scope, template string, offset int, nested bool) (string, int, error) {
	toks, err := lex(template, offset, e.freeSpacing(), true)
	if err != nil {
		return "", 0, err
	}

	if nested {
		toks = deanchor(toks)
	}

	type expansion struct {
		src  string
		caps int
	}

	var (
		expanded = make(map[int]expansion) // token index -> expanded subpattern
		groups   []int                     // groups[i] is the new number of group i+1
		count    int
	)

	for i := range toks {
		t := &toks[i]

		switch {
		case e.opensCapture(toks, i):
			count++
			groups = append(groups, count)
		case t.kind == tokPlaceholder:
			subScope, sub, ok := sc.lookup(t.name)
			if !ok {
				return "", 0, errorf(template, t.pos, "unknown subpattern %q", t.name)
			}

			key := expansionKey{subScope, t.name}
			if e.expanding[key] {
				return "", 0, errorf(template, t.pos, "cyclic subpattern %q", t.name)
			}

			e.expanding[key] = true
			src, caps, err := e.sub(subScope, sub)
			delete(e.expanding, key)

			if err != nil {
				return "", 0, err
			}

			expanded[i] = expansion{src, caps}
			count += caps
		}
	}

	var w writer

	count = 0
	for i := 0; i < len(toks); i++ {
		t := &toks[i]

		switch {
		case e.opensCapture(toks, i) && t.group == groupCapture && namedPlaceholder(toks, i):
			// ({{name}}) is named after the subpattern
			w.write("(?<" + toks[i+1].name + ">")
			count++
		case e.opensCapture(toks, i):
			w.write(t.text)
			count++
		case t.kind == tokBackref:
			if t.num > len(groups) {
				return "", 0, errorf(template, t.pos, `backreference to undefined group \%d`, t.num)
			}
			w.writeRef(groups[t.num-1])
		case t.kind == tokPlaceholder:
			x := expanded[i]

			src, err := e.shift(x.src, count)
			if err != nil {
				return "", 0, err
			}

			w.write("(?:" + src + ")")
			count += x.caps
		default:
			w.write(t.text)
		}
	}

	return w.String(), count, nil
}

// namedPlaceholder reports whether the group opened at toks[i] has the form ({{name}})
// and the name is a valid group name.
func namedPlaceholder(toks []token, i int) bool {
	return i+2 < len(toks) &&
		toks[i+1].kind == tokPlaceholder &&
		toks[i+2].kind == tokGroupClose &&
		isValidName(toks[i+1].name)
}

// sub expands a subpattern. Backreferences are numbered relative to the start of the subpattern.
func (e *expander) sub(sc *scope, sub Subpattern) (string, int, error) {
	switch sub.Kind {
	case SubTemplate:
		return e.template(&scope{subs: sub.Subs, parent: sc}, sub.Source, 0, true)
	case SubCompiled:
		if (sub.Flags^e.flags)&FlagCodePoints != 0 {
			return "", 0, errorf(sub.Source, -1, "subpattern and template differ in code point mode")
		}

		toks, err := lex(sub.Source, 0, false, false)
		if err != nil {
			return "", 0, err
		}

		src, caps, err := embed(sub.Source, deanchor(toks), sub.Captures, e.flags)
		if err != nil {
			return "", 0, err
		}

		if prefix := scopedModifier(sub.Flags, e.flags); prefix != "" {
			src = prefix + src + ")"
		}

		return src, caps, nil
	default:
		toks, err := lex(sub.Source, 0, e.freeSpacing(), false)
		if err != nil {
			return "", 0, err
		}

		return fragment(sub.Source, deanchor(toks), e.flags)
	}
}

func (e *expander) freeSpacing() bool {
	return e.flags&FlagFreeSpacing != 0
}

// opensCapture reports whether toks[i] opens a group, that captures in the expanded pattern.
// ({{name}}) captures even in explicit capture mode.
func (e *expander) opensCapture(toks []token, i int) bool {
	t := &toks[i]
	if t.kind != tokGroupOpen {
		return false
	}

	switch t.group {
	case groupNamed:
		return true
	case groupCapture:
		return e.flags&FlagExplicitCapture == 0 || namedPlaceholder(toks, i)
	default:
		return false
	}
}

// shift adds offset to all numbered backreferences.
func (e *expander) shift(src string, offset int) (string, error) {
	if offset == 0 {
		return src, nil
	}

	toks, err := lex(src, 0, e.freeSpacing(), false)
	if err != nil {
		return "", err
	}

	var w writer

	for i := range toks {
		t := &toks[i]

		if t.kind == tokBackref {
			w.writeRef(t.num + offset)
		} else {
			w.write(t.text)
		}
	}

	return w.String(), nil
}

// fragment validates the backreferences of a dialect fragment and counts its groups.
func fragment(src string, toks []token, flags Flags) (string, int, error) {
	var w writer

	count := 0
	for i := range toks {
		t := &toks[i]

		if t.kind == tokGroupOpen {
			if t.group == groupNamed || (t.group == groupCapture && flags&FlagExplicitCapture == 0) {
				count++
			}
		}
	}

	for i := range toks {
		t := &toks[i]

		if t.kind == tokBackref && t.num > count {
			return "", 0, errorf(src, t.pos, `backreference to undefined group \%d`, t.num)
		}

		if t.kind == tokBackref {
			w.writeRef(t.num)
		} else {
			w.write(t.text)
		}
	}

	return w.String(), count, nil
}

// Embed prepares the native source of a compiled pattern for splicing into a pattern with
// the host flags. Group names are restored and numbered backreferences are shifted by offset.
// The host flags apply to the embedded source: in a free-spacing host its whitespace is
// insignificant, but # is escaped so it cannot start a comment. It returns the new source
// and the number of groups it contributes.
func Embed(native string, caps *CaptureMap, host Flags, offset int) (string, int, error) {
	toks, err := lex(native, 0, false, false)
	if err != nil {
		return "", 0, err
	}

	src, n, err := embed(native, toks, caps, host)
	if err != nil {
		return "", 0, err
	}

	if offset > 0 {
		e := expander{flags: host}
		if src, err = e.shift(src, offset); err != nil {
			return "", 0, err
		}
	}

	return src, n, nil
}

func embed(native string, toks []token, caps *CaptureMap, host Flags) (string, int, error) {
	explicit := host&FlagExplicitCapture != 0
	freeSpacing := host&FlagFreeSpacing != 0

	// numbers of the groups in the host; 0 if the group does not capture there
	var groups []int

	count := 0
	for i := range toks {
		t := &toks[i]

		if t.kind == tokGroupOpen && t.group == groupCapture {
			if explicit && caps.Name(len(groups)+1) == "" {
				groups = append(groups, 0)
			} else {
				count++
				groups = append(groups, count)
			}
		}
	}

	var w writer

	group := 0
	for i := range toks {
		t := &toks[i]

		switch {
		case t.kind == tokGroupOpen && t.group == groupCapture:
			group++

			switch name := caps.Name(group); {
			case name != "":
				w.write("(?<" + name + ">")
			case groups[group-1] == 0:
				w.write("(?:")
			default:
				w.write("(")
			}
		case t.kind == tokBackref:
			if t.num > len(groups) {
				return "", 0, errorf(native, t.pos, `backreference to undefined group \%d`, t.num)
			}
			if groups[t.num-1] == 0 {
				return "", 0, errorf(native, t.pos, `backreference \%d refers to an unnamed group in explicit capture mode`, t.num)
			}
			w.writeRef(groups[t.num-1])
		case t.kind == tokLiteral && freeSpacing && t.r == '#':
			w.write(`\#`)
		default:
			w.write(t.text)
		}
	}

	return w.String(), count, nil
}

// scopedModifier returns an opening modifier group for the inline flags in which sub differs
// from host, or "" if they agree.
func scopedModifier(sub, host Flags) string {
	on := sub &^ host & inlineFlags
	off := host &^ sub & inlineFlags

	if on == 0 && off == 0 {
		return ""
	}

	s := "(?" + on.String()
	if off != 0 {
		s += "-" + off.String()
	}

	return s + ":"
}

// deanchor removes a leading ^ and a trailing $, if both exist.
func deanchor(toks []token) []token {
	first := -1
	last := -1

	for i := range toks {
		if !toks[i].ignorable() {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	if first < 0 || first == last {
		return toks
	}
	if toks[first].kind != tokAnchor || toks[first].text != "^" {
		return toks
	}
	if toks[last].kind != tokAnchor || toks[last].text != "$" {
		return toks
	}

	res := make([]token, 0, len(toks)-2)
	res = append(res, toks[:first]...)
	res = append(res, toks[first+1:last]...)
	res = append(res, toks[last+1:]...)

	return res
}
