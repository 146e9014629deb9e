package syntax

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/magnetde/xre/util"
)

// Result is a dialect pattern rewritten into the syntax of the engine.
type Result struct {
	Source   string      // native pattern
	Flags    Flags       // effective flags, including the letters of a leading mode modifier
	Captures *CaptureMap // capturing groups of the native pattern
}

// Preprocess rewrites the dialect pattern into a native pattern.
func Preprocess(pattern string, flags Flags) (*Result, error) {
	flags, offset, err := leadingModifier(pattern, flags)
	if err != nil {
		return nil, err
	}

	toks, err := lex(pattern, offset, flags&FlagFreeSpacing != 0, false)
	if err != nil {
		return nil, err
	}

	p := preprocessor{
		pattern: pattern,
		flags:   flags,
		mode:    modeOf(flags),
		toks:    toks,
	}

	if err := p.collect(); err != nil {
		return nil, err
	}

	src, err := p.emit()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Source:   src,
		Flags:    flags,
		Captures: p.caps,
	}

	return res, nil
}

// leadingModifier folds a mode modifier like (?ix) at the start of the pattern into the flags.
// It returns the new flags and the offset of the rest of the pattern.
func leadingModifier(pattern string, flags Flags) (Flags, int, error) {
	if !strings.HasPrefix(pattern, "(?") {
		return flags, 0, nil
	}

	end := 2
	for end < len(pattern) && util.IsASCIILetter(pattern[end]) {
		end++
	}

	if end == 2 || end == len(pattern) || pattern[end] != ')' {
		return flags, 0, nil
	}

	for i, c := range pattern[2:end] {
		f, ok := flagFromLetter(c)
		if !ok || f&leadingFlags == 0 {
			return 0, 0, errorf(pattern, 2+i, "unknown inline modifier %q", c)
		}

		flags |= f
	}

	return flags, end + 1, nil
}

type preprocessor struct {
	pattern string
	flags   Flags
	mode    textMode
	toks    []token
	caps    *CaptureMap
}

func (p *preprocessor) errorf(pos int, format string, args ...any) error {
	return errorf(p.pattern, pos, format, args...)
}

// collect numbers the capturing groups and checks, that all groups are closed.
// Names are collected before emitting, so backreferences may refer to later groups.
func (p *preprocessor) collect() error {
	var (
		names []string
		seen  = make(map[string]bool)
		open  []int // positions of unclosed groups
	)

	for i := range p.toks {
		t := &p.toks[i]

		switch t.kind {
		case tokGroupOpen:
			open = append(open, t.pos)

			switch t.group {
			case groupCapture:
				if p.flags&FlagExplicitCapture == 0 {
					names = append(names, "")
				}
			case groupNamed:
				if seen[t.name] {
					return p.errorf(t.pos, "duplicate capture name %q", t.name)
				}

				seen[t.name] = true
				names = append(names, t.name)
			}
		case tokGroupClose:
			if len(open) == 0 {
				return p.errorf(t.pos, "unbalanced parenthesis")
			}
			open = open[:len(open)-1]
		}
	}

	if len(open) > 0 {
		return p.errorf(open[len(open)-1], "missing ), unterminated subpattern")
	}

	p.caps, _ = newCaptureMap(names)
	return nil
}

func (p *preprocessor) emit() (string, error) {
	var w writer

	for i := 0; i < len(p.toks); i++ {
		t := &p.toks[i]

		if t.ignorable() {
			j := i
			for j < len(p.toks) && p.toks[j].ignorable() {
				j++
			}

			if p.needsSeparator(i-1, j) {
				w.write("(?:)")
			}

			i = j - 1
			continue
		}

		if err := p.emitToken(&w, t); err != nil {
			return "", err
		}
	}

	return w.String(), nil
}

// needsSeparator reports whether the tokens prev and next, which were separated by removed
// whitespace or comments, must be kept apart by an empty group.
func (p *preprocessor) needsSeparator(prev, next int) bool {
	if prev < 0 || next >= len(p.toks) {
		return false
	}

	switch p.toks[prev].kind {
	case tokGroupOpen, tokGroupClose, tokAlternation, tokModifier:
		return false
	}

	n := &p.toks[next]
	switch n.kind {
	case tokGroupOpen, tokGroupClose, tokAlternation, tokModifier, tokQuantifier:
		return false
	case tokNamedBackref:
		return !strings.HasPrefix(n.text, "(")
	}

	return true
}

func (p *preprocessor) emitToken(w *writer, t *token) error {
	switch t.kind {
	case tokLiteral:
		if p.mode != modeCodePoints && t.r > 0xffff {
			w.write(pairGroup(t.r))
		} else {
			w.write(t.text)
		}
	case tokEscape:
		if p.mode == modeAstral && t.negatedShorthand() {
			w.write("(?:" + surrogatePair + "|" + t.text + ")")
		} else {
			w.write(t.text)
		}
	case tokCodePoint:
		w.write(p.codePoint(t.r))
	case tokBackref:
		if t.num > p.caps.Len() {
			return p.errorf(t.pos, `backreference to undefined group \%d`, t.num)
		}
		w.writeRef(t.num)
	case tokNamedBackref:
		n, ok := p.caps.Index(t.name)
		if !ok {
			return p.errorf(t.pos, "backreference to undefined group name %q", t.name)
		}
		w.writeRef(n)
	case tokProperty:
		set, err := p.property(t.pos, t.name, t.negate)
		if err != nil {
			return err
		}
		w.write(encodeSet(set, p.mode))
	case tokClass:
		s, err := p.class(t)
		if err != nil {
			return err
		}
		w.write(s)
	case tokDot:
		if p.mode == modeAstral {
			w.write("(?:" + surrogatePair + "|.)")
		} else {
			w.write(".")
		}
	case tokGroupOpen:
		switch {
		case t.group == groupNamed:
			w.write("(")
		case t.group == groupCapture && p.flags&FlagExplicitCapture != 0:
			w.write("(?:")
		default:
			if err := p.checkModifier(t); err != nil {
				return err
			}
			w.write(t.text)
		}
	case tokModifier:
		if err := p.checkModifier(t); err != nil {
			return err
		}
		w.write(t.text)
	case tokPlaceholder:
		return p.errorf(t.pos, "unexpected placeholder %s", t.text)
	default:
		w.write(t.text)
	}

	return nil
}

// checkModifier checks the letters of an inline modifier. The engine only understands i, m and s.
func (p *preprocessor) checkModifier(t *token) error {
	for _, c := range t.name {
		if c == '-' {
			continue
		}

		if f, ok := flagFromLetter(c); !ok || f&inlineFlags == 0 {
			return p.errorf(t.pos, "unknown inline modifier %q", c)
		}
	}

	return nil
}

// codePoint returns the native representation of a single code point.
func (p *preprocessor) codePoint(r rune) string {
	if r > 0xffff {
		if p.mode == modeCodePoints {
			return string(r)
		}
		return pairGroup(r)
	}

	return unitEscape(r)
}

// property returns the characters of a property escape within the domain of the mode.
func (p *preprocessor) property(pos int, name string, negate bool) (runeSet, error) {
	set, ok := lookupProperty(name)
	if !ok {
		return nil, p.errorf(pos, "invalid Unicode property %q", name)
	}

	domain := p.mode.domain()
	if negate {
		return domain.minus(set), nil
	}

	res := set.intersect(domain)
	if len(res) == 0 && len(set) > 0 {
		return nil, p.errorf(pos, "astral mode is required for Unicode property %q", name)
	}

	return res, nil
}

// class rewrites a character class.
func (p *preprocessor) class(t *token) (string, error) {
	if len(t.items) == 0 {
		switch {
		case !t.negate:
			return "(?!)", nil
		case p.mode == modeAstral:
			return "(?:" + surrogatePair + `|[\s\S])`, nil
		default:
			return `[\s\S]`, nil
		}
	}

	if p.mode == modeAstral {
		switch {
		case classNeedsSet(t):
			set, err := p.classSet(t)
			if err != nil {
				return "", err
			}
			return encodeSet(set, p.mode), nil
		case t.negate:
			s, err := p.nativeClass(t)
			if err != nil {
				return "", err
			}
			return "(?:" + surrogatePair + "|" + s + ")", nil
		}
	}

	return p.nativeClass(t)
}

// classNeedsSet reports whether an astral mode class contains characters outside the basic
// multilingual plane and must therefore be expanded into explicit ranges.
func classNeedsSet(t *token) bool {
	for _, item := range t.items {
		switch item.kind {
		case itemChar, itemRange:
			if item.hi > 0xffff {
				return true
			}
		case itemShorthand:
			if item.negate {
				return true
			}
		case itemProperty:
			return true
		case itemSubtract:
			if classNeedsSet(item.sub) {
				return true
			}
		}
	}

	return false
}

// classSet computes the characters of a class within the domain of the mode.
func (p *preprocessor) classSet(t *token) (runeSet, error) {
	domain := p.mode.domain()

	var (
		set runeSet
		sub runeSet
	)

	for _, item := range t.items {
		switch item.kind {
		case itemChar, itemRange:
			set = append(set, runeRange{item.lo, item.hi})
		case itemShorthand:
			s := shorthandSet(item.name)
			if item.negate {
				s = domain.minus(s)
			}
			set = append(set, s...)
		case itemProperty:
			s, err := p.property(t.pos, item.name, item.negate)
			if err != nil {
				return nil, err
			}
			set = append(set, s...)
		case itemSubtract:
			s, err := p.classSet(item.sub)
			if err != nil {
				return nil, err
			}
			sub = s
		}
	}

	set = set.normalize().intersect(domain)
	if t.negate {
		set = domain.minus(set)
	}
	if sub != nil {
		set = set.minus(sub)
	}

	return set, nil
}

// nativeClass writes a class in the syntax of the engine. Property escapes are expanded.
func (p *preprocessor) nativeClass(t *token) (string, error) {
	var b strings.Builder

	b.WriteByte('[')
	if t.negate {
		b.WriteByte('^')
	}

	body := b.Len()

	for _, item := range t.items {
		switch item.kind {
		case itemChar:
			writeClassRune(&b, item.lo, p.mode)
		case itemRange:
			if item.hi > 0xffff && p.mode != modeCodePoints {
				return "", p.errorf(t.pos, "range %s requires astral or code point mode", item.text)
			}
			writeClassRanges(&b, runeSet{{item.lo, item.hi}}, p.mode)
		case itemShorthand:
			b.WriteString(item.text)
		case itemProperty:
			set, err := p.property(t.pos, item.name, item.negate)
			if err != nil {
				return "", err
			}
			writeClassRanges(&b, set, p.mode)
		case itemSubtract:
			s, err := p.nativeClass(item.sub)
			if err != nil {
				return "", err
			}
			b.WriteByte('-')
			b.WriteString(s)
		}
	}

	if b.Len() == body {
		// only empty properties
		if t.negate {
			return `[\s\S]`, nil
		}
		return "(?!)", nil
	}

	b.WriteByte(']')
	return b.String(), nil
}

// writer builds the native pattern. A digit following a backreference is separated by
// an empty group, so that \1 followed by 0 does not become \10.
type writer struct {
	strings.Builder
	afterRef bool
}

func (w *writer) write(s string) {
	if w.afterRef && s != "" && util.IsDigit(s[0]) {
		w.WriteString("(?:)")
	}

	w.afterRef = false
	w.WriteString(s)
}

func (w *writer) writeRef(n int) {
	w.write(`\` + strconv.Itoa(n))
	w.afterRef = true
}

func unitEscape(r rune) string {
	const hex = "0123456789ABCDEF"
	return `\u` + string([]byte{hex[r>>12&0xf], hex[r>>8&0xf], hex[r>>4&0xf], hex[r&0xf]})
}

// pairGroup returns the surrogate pair of an astral code point as a group.
func pairGroup(r rune) string {
	hi, lo := utf16.EncodeRune(r)
	return "(?:" + unitEscape(hi) + unitEscape(lo) + ")"
}
