package syntax

type tokenKind uint8

const (
	tokLiteral      tokenKind = iota // a single source character
	tokEscape                        // an escape passed to the engine unchanged
	tokCodePoint                     // \u{...} or an escaped surrogate pair
	tokBackref                       // \N
	tokNamedBackref                  // \k<name>, \k'name', (?P=name)
	tokProperty                      // \p{...}, \P{...}, \pL
	tokClass                         // [...]
	tokDot                           // .
	tokGroupOpen                     // (, (?:, (?<name>, lookarounds, ...
	tokGroupClose                    // )
	tokModifier                      // (?i), (?-s) in the middle of a pattern
	tokAlternation                   // |
	tokQuantifier                    // *, +, ?, {n,m} with an optional lazy suffix
	tokAnchor                        // ^, $
	tokComment                       // (?#...), # in free-spacing mode
	tokSpace                         // whitespace in free-spacing mode
	tokPlaceholder                   // {{name}}; only lexed for templates
)

type groupKind uint8

const (
	groupCapture    groupKind = iota // (
	groupNamed                       // (?<name>, (?'name', (?P<name>
	groupNonCapture                  // every other group opener
)

// token is one lexical element of a dialect pattern.
type token struct {
	kind   tokenKind
	text   string // raw source text
	pos    int    // byte offset into the source
	r      rune   // character value of literals, code points and character escapes; -1 otherwise
	num    int    // backreference number
	name   string // group, backreference, property, placeholder name or modifier letters
	negate bool   // \P or [^
	group  groupKind
	items  []classItem
}

// ignorable reports whether the token is removed from the output.
func (t *token) ignorable() bool {
	return t.kind == tokComment || t.kind == tokSpace
}

// negatedShorthand reports whether the token is one of \D, \W or \S.
func (t *token) negatedShorthand() bool {
	return t.kind == tokEscape && (t.text == `\D` || t.text == `\W` || t.text == `\S`)
}

type itemKind uint8

const (
	itemChar      itemKind = iota // a single character
	itemRange                     // a-z
	itemShorthand                 // \d, \w, \s and their negations
	itemProperty                  // \p{...}
	itemSubtract                  // -[...]; .NET class subtraction
)

// classItem is one element of a character class.
type classItem struct {
	kind   itemKind
	text   string // raw source text
	lo, hi rune   // character value or range bounds
	name   string // property name or shorthand letter
	negate bool
	sub    *token // subtracted class
}
