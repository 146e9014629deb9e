package syntax

import (
	"unicode"
	"unicode/utf16"

	"github.com/magnetde/xre/util"
)

// lexer splits a dialect pattern into tokens.
type lexer struct {
	s            source
	freeSpacing  bool // whitespace and # comments are tokens of their own
	placeholders bool // {{name}} is a token
}

// lex tokenizes pattern[offset:]. Token positions are relative to the whole pattern.
func lex(pattern string, offset int, freeSpacing, placeholders bool) ([]token, error) {
	l := lexer{
		freeSpacing:  freeSpacing,
		placeholders: placeholders,
	}
	l.s.init(pattern)
	l.s.cur = pattern[offset:]

	var toks []token

	for !l.s.eof() {
		t, err := l.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, t)
	}

	return toks, nil
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return errorf(l.s.orig, pos, format, args...)
}

func (l *lexer) next() (token, error) {
	pos := l.s.tell()
	c, _ := l.s.read()

	t := token{pos: pos, r: -1}

	var err error

	switch c {
	case '\\':
		err = l.lexEscape(&t)
	case '[':
		err = l.lexClass(&t)
	case '(':
		err = l.lexGroup(&t)
	case ')':
		t.kind = tokGroupClose
	case '|':
		t.kind = tokAlternation
	case '.':
		t.kind = tokDot
	case '^', '$':
		t.kind = tokAnchor
	case '*', '+', '?':
		t.kind = tokQuantifier
		l.s.match('?')
	case '{':
		switch {
		case l.placeholders && l.lexPlaceholder(&t):
		case l.lexInterval():
			t.kind = tokQuantifier
			l.s.match('?')
		default:
			t.kind = tokLiteral
			t.r = c
		}
	default:
		switch {
		case l.freeSpacing && c == '#':
			t.kind = tokComment
			for {
				if next, ok := l.s.peek(); !ok || next == '\n' {
					break
				}
				l.s.read()
			}
		case l.freeSpacing && unicode.IsSpace(c):
			t.kind = tokSpace
			for {
				if next, ok := l.s.peek(); !ok || !unicode.IsSpace(next) {
					break
				}
				l.s.read()
			}
		default:
			t.kind = tokLiteral
			t.r = c
		}
	}

	if err != nil {
		return token{}, err
	}

	t.text = l.s.since(pos)
	return t, nil
}

// lexInterval checks, if the cursor is at the rest of an interval quantifier {n}, {n,} or {n,m}.
// If not, the cursor is not moved.
func (l *lexer) lexInterval() bool {
	save := l.s.cur

	if _, ok := l.s.nextInt(maxGroupRef); ok {
		if l.s.match(',') {
			l.s.nextInt(maxGroupRef)
		}
		if l.s.match('}') {
			return true
		}
	}

	l.s.cur = save
	return false
}

// lexPlaceholder checks, if the cursor is at the rest of a placeholder {{name}}.
// If not, the cursor is not moved.
func (l *lexer) lexPlaceholder(t *token) bool {
	save := l.s.cur

	if l.s.match('{') {
		start := l.s.tell()
		for {
			c, ok := l.s.peek()
			if !ok || !util.IsWordChar(c) {
				break
			}
			l.s.read()
		}

		name := l.s.since(start)
		if name != "" && l.s.matchString("}}") {
			t.kind = tokPlaceholder
			t.name = name
			return true
		}
	}

	l.s.cur = save
	return false
}

func (l *lexer) lexEscape(t *token) error {
	pos := t.pos

	c, ok := l.s.read()
	if !ok {
		return l.errorf(pos, "trailing backslash")
	}

	switch {
	case '1' <= c && c <= '9':
		l.s.cur = l.s.orig[pos+1:]
		t.kind = tokBackref
		t.num, _ = l.s.nextInt(maxGroupRef)
	case c == '0':
		t.kind = tokEscape
		t.r, _ = l.s.nextOct(2)
	case c == 'k':
		var name string

		switch {
		case l.s.match('<'):
			name, ok = l.s.getUntil('>')
		case l.s.match('\''):
			name, ok = l.s.getUntil('\'')
		default:
			ok = false
		}

		if !ok || name == "" {
			return l.errorf(pos, "invalid named backreference")
		}

		t.kind = tokNamedBackref
		t.name = name
	case c == 'p' || c == 'P':
		name, negate, err := l.lexPropertyName(pos, c == 'P')
		if err != nil {
			return err
		}

		t.kind = tokProperty
		t.name = name
		t.negate = negate
	case c == 'u':
		r, pair, err := l.lexUnicodeEscape(pos)
		if err != nil {
			return err
		}

		t.r = r
		if pair {
			t.kind = tokCodePoint
		} else {
			t.kind = tokEscape
		}
	default:
		r, err := l.lexCharEscape(pos, c, false)
		if err != nil {
			return err
		}

		t.kind = tokEscape
		t.r = r
	}

	return nil
}

// lexCharEscape returns the character value of the escape \c.
// Escapes like \d or \b (outside a class) have the value -1.
func (l *lexer) lexCharEscape(pos int, c rune, inClass bool) (rune, error) {
	switch c {
	case 'x':
		r, n := l.s.nextHex(2)
		if n < 2 {
			return 0, l.errorf(pos, `invalid \x escape`)
		}
		return r, nil
	case 'c':
		letter, ok := l.s.read()
		if !ok || !(('a' <= letter && letter <= 'z') || ('A' <= letter && letter <= 'Z')) {
			return 0, l.errorf(pos, "invalid control escape")
		}
		return letter % 32, nil
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case 'a':
		return '\a', nil
	case 'e':
		return 0x1b, nil
	case 'b':
		if inClass {
			return '\b', nil
		}
		return -1, nil
	case 'd', 'D', 'w', 'W', 's', 'S':
		return -1, nil
	case 'B', 'A', 'Z', 'z', 'G':
		if inClass {
			return 0, l.errorf(pos, `invalid escape \%c in character class`, c)
		}
		return -1, nil
	}

	if c < unicode.MaxASCII && unicode.IsLetter(c) {
		return 0, l.errorf(pos, `unknown escape \%c`, c)
	}

	return c, nil
}

// lexUnicodeEscape lexes the rest of \uhhhh or \u{h...}.
// The boolean result is true, if the escape is a code point escape or a pair of escaped surrogates.
func (l *lexer) lexUnicodeEscape(pos int) (rune, bool, error) {
	if l.s.match('{') {
		r, n := l.s.nextHex(6)
		if n == 0 || !l.s.match('}') || r > unicode.MaxRune {
			return 0, false, l.errorf(pos, `invalid \u{...} escape`)
		}

		return r, true, nil
	}

	r, n := l.s.nextHex(4)
	if n < 4 {
		return 0, false, l.errorf(pos, `invalid \u escape`)
	}

	if isHighSurrogate(r) && l.s.hasPrefix(`\u`) {
		save := l.s.cur
		l.s.matchString(`\u`)

		lo, n := l.s.nextHex(4)
		if n == 4 && isLowSurrogate(lo) {
			return utf16.DecodeRune(r, lo), true, nil
		}

		l.s.cur = save
	}

	return r, false, nil
}

// lexPropertyName lexes the rest of \p{name}, \p{^name} or \pL.
func (l *lexer) lexPropertyName(pos int, negate bool) (string, bool, error) {
	if l.s.match('{') {
		name, ok := l.s.getUntil('}')
		if !ok {
			return "", false, l.errorf(pos, "unterminated Unicode property")
		}

		if len(name) > 0 && name[0] == '^' {
			negate = !negate
			name = name[1:]
		}
		if name == "" {
			return "", false, l.errorf(pos, "missing Unicode property name")
		}

		return name, negate, nil
	}

	c, ok := l.s.read()
	if !ok || c >= unicode.MaxASCII || !unicode.IsLetter(c) {
		return "", false, l.errorf(pos, "invalid Unicode property escape")
	}

	return string(c), negate, nil
}

func (l *lexer) lexGroup(t *token) error {
	t.kind = tokGroupOpen

	if !l.s.match('?') {
		t.group = groupCapture
		return nil
	}

	t.group = groupNonCapture

	switch {
	case l.s.match('#'):
		if _, ok := l.s.getUntil(')'); !ok {
			return l.errorf(t.pos, "unterminated comment")
		}
		t.kind = tokComment
	case l.s.match(':'), l.s.match('='), l.s.match('!'), l.s.match('>'),
		l.s.matchString("<="), l.s.matchString("<!"):
		// non-capturing group or lookaround
	case l.s.match('<'):
		return l.lexGroupName(t, '>')
	case l.s.match('\''):
		return l.lexGroupName(t, '\'')
	case l.s.matchString("P<"):
		return l.lexGroupName(t, '>')
	case l.s.matchString("P="):
		name, ok := l.s.getUntil(')')
		if !ok || name == "" {
			return l.errorf(t.pos, "invalid named backreference")
		}
		t.kind = tokNamedBackref
		t.name = name
	case l.s.hasPrefix("("):
		return l.errorf(t.pos, "conditional groups are not supported")
	default:
		start := l.s.tell()
		for {
			c, ok := l.s.peek()
			if !ok || !(c == '-' || (c < unicode.MaxASCII && unicode.IsLetter(c))) {
				break
			}
			l.s.read()
		}
		t.name = l.s.since(start)

		switch {
		case t.name != "" && l.s.match(')'):
			t.kind = tokModifier
		case l.s.match(':'):
			// scoped modifier group (?i:...)
		default:
			return l.errorf(t.pos, "unknown group construct")
		}
	}

	return nil
}

func (l *lexer) lexGroupName(t *token, term byte) error {
	name, ok := l.s.getUntil(term)
	if !ok {
		return l.errorf(t.pos, "unterminated capture name")
	}
	if !isValidName(name) {
		return l.errorf(t.pos, "invalid capture name %q", name)
	}

	t.group = groupNamed
	t.name = name
	return nil
}

// isValidName reports whether name is an identifier; it must not be an integer.
func isValidName(name string) bool {
	if name == "" {
		return false
	}

	for i, c := range name {
		switch {
		case c == '_' || c == '$' || unicode.IsLetter(c):
		case i > 0 && unicode.IsDigit(c):
		default:
			return false
		}
	}

	return true
}

func (l *lexer) lexClass(t *token) error {
	t.kind = tokClass
	t.negate = l.s.match('^')

	if l.s.match(']') {
		// empty class; never matches, or matches everything if negated
		return nil
	}

	for {
		if l.s.eof() {
			return l.errorf(t.pos, "unterminated character class")
		}
		if l.s.match(']') {
			return nil
		}

		if l.s.hasPrefix("-[") {
			l.s.read()
			pos := l.s.tell()
			l.s.read()

			sub := &token{pos: pos, r: -1}
			if err := l.lexClass(sub); err != nil {
				return err
			}
			sub.text = l.s.since(pos)

			t.items = append(t.items, classItem{
				kind: itemSubtract,
				text: "-" + sub.text,
				sub:  sub,
			})

			if !l.s.hasPrefix("]") {
				return l.errorf(pos, "a subtraction must be the last element in a character class")
			}
			continue
		}

		item, err := l.lexClassAtom()
		if err != nil {
			return err
		}

		if item.kind == itemChar && l.s.hasPrefix("-") && !l.s.hasPrefix("-]") && !l.s.hasPrefix("-[") {
			pos := l.s.tell()
			l.s.read()

			hi, err := l.lexClassAtom()
			if err != nil {
				return err
			}
			if hi.kind != itemChar {
				return l.errorf(pos, "bad character range")
			}
			if hi.lo < item.lo {
				return l.errorf(pos, "character range out of order")
			}

			item = classItem{
				kind: itemRange,
				text: item.text + "-" + hi.text,
				lo:   item.lo,
				hi:   hi.lo,
			}
		}

		t.items = append(t.items, item)
	}
}

func (l *lexer) lexClassAtom() (classItem, error) {
	pos := l.s.tell()
	c, _ := l.s.read()

	if c != '\\' {
		return classItem{kind: itemChar, text: l.s.since(pos), lo: c, hi: c}, nil
	}

	c, ok := l.s.read()
	if !ok {
		return classItem{}, l.errorf(pos, "trailing backslash")
	}

	var r rune

	switch {
	case c == 'd' || c == 'w' || c == 's' || c == 'D' || c == 'W' || c == 'S':
		return classItem{
			kind:   itemShorthand,
			text:   l.s.since(pos),
			name:   string(unicode.ToLower(c)),
			negate: unicode.IsUpper(c),
		}, nil
	case c == 'p' || c == 'P':
		name, negate, err := l.lexPropertyName(pos, c == 'P')
		if err != nil {
			return classItem{}, err
		}

		return classItem{
			kind:   itemProperty,
			text:   l.s.since(pos),
			name:   name,
			negate: negate,
		}, nil
	case c == 'u':
		u, _, err := l.lexUnicodeEscape(pos)
		if err != nil {
			return classItem{}, err
		}
		r = u
	case util.IsOctDigit(c):
		l.s.cur = l.s.orig[pos+1:]
		r, _ = l.s.nextOct(3)
	default:
		e, err := l.lexCharEscape(pos, c, true)
		if err != nil {
			return classItem{}, err
		}
		r = e
	}

	return classItem{kind: itemChar, text: l.s.since(pos), lo: r, hi: r}, nil
}

func isHighSurrogate(r rune) bool {
	return 0xd800 <= r && r <= 0xdbff
}

func isLowSurrogate(r rune) bool {
	return 0xdc00 <= r && r <= 0xdfff
}
