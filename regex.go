package xre

import (
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/magnetde/xre/syntax"
	"github.com/magnetde/xre/util"
)

// engine is a compiled native pattern.
type engine struct {
	re      *regexp2.Regexp
	native  string
	source  string // native with tagged surrogates, as compiled
	options regexp2.RegexOptions
	timeout time.Duration

	stickyOnce sync.Once
	sticky     *regexp2.Regexp // \G anchored variant, built on first use
	stickyErr  error
}

// compileEngine compiles a native pattern. The flags i, m and s are passed as regexp2 options.
func compileEngine(native string, flags syntax.Flags, timeout time.Duration) (*engine, error) {
	options := regexp2.None

	if flags&syntax.FlagIgnoreCase != 0 {
		options |= regexp2.IgnoreCase
	}
	if flags&syntax.FlagMultiline != 0 {
		options |= regexp2.Multiline
	}
	if flags&syntax.FlagDotAll != 0 {
		options |= regexp2.Singleline
	}

	source, err := syntax.TagSurrogates(native, flags)
	if err != nil {
		return nil, err
	}

	re, err := compileNative(source, options, timeout)
	if err != nil {
		return nil, err
	}

	e := &engine{
		re:      re,
		native:  native,
		source:  source,
		options: options,
		timeout: timeout,
	}

	return e, nil
}

func compileNative(native string, options regexp2.RegexOptions, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(native, options)
	if err != nil {
		return nil, &syntax.Error{
			Msg:     err.Error(),
			Pattern: native,
			Pos:     -1,
		}
	}

	if timeout > 0 {
		re.MatchTimeout = timeout
	}

	return re, nil
}

// numGroups returns the number of groups the engine reports, without the whole match.
func (e *engine) numGroups() int {
	return len(e.re.GetGroupNumbers()) - 1
}

func (e *engine) stickyProgram() (*regexp2.Regexp, error) {
	e.stickyOnce.Do(func() {
		e.sticky, e.stickyErr = compileNative(`\G(?:`+e.source+`)`, e.options, e.timeout)
	})

	return e.sticky, e.stickyErr
}

// find searches the input starting at the character index pos. If sticky is set, the match
// must start exactly at pos. The result contains character index pairs for the whole match
// and all groups; unset groups are -1. The result is nil if there is no match.
func (e *engine) find(in *input, pos int, sticky bool) ([]int, error) {
	re := e.re
	if sticky {
		var err error
		if re, err = e.stickyProgram(); err != nil {
			return nil, err
		}
	}

	m, err := re.FindRunesMatchStartingAt(in.chars, pos)
	if err != nil {
		return nil, fmt.Errorf("xre: match %s: %w", util.Repr(e.native), err)
	}

	if m == nil {
		return nil, nil
	}

	groups := m.Groups()
	a := make([]int, 0, 2*len(groups))

	for _, g := range groups {
		if len(g.Captures) != 0 {
			a = append(a, g.Index, g.Index+g.Length)
		} else {
			a = append(a, -1, -1)
		}
	}

	return a, nil
}

// input is a text prepared for the engine. Depending on the mode, the characters are either
// UTF-16 code units or code points.
type input struct {
	text   string
	chars  []rune
	starts []int // byte offset of each character and of the end; nil if the text is ASCII
}

func newInput(text string, codePoints bool) *input {
	in := &input{text: text}

	if util.IsASCIIString(text) { // if the string has only ASCII characters, offsets are not necessary
		in.chars = []rune(text)
		return in
	}

	in.chars = make([]rune, 0, len(text))
	in.starts = make([]int, 0, len(text)+1)

	for i := 0; i < len(text); {
		ch, size := utf8.DecodeRuneInString(text[i:])
		if ch == utf8.RuneError && size == 1 {
			ch = rune(text[i])
		}

		if !codePoints && ch > 0xffff {
			hi, lo := utf16.EncodeRune(ch)
			in.chars = append(in.chars, hi, lo)
			// the low surrogate starts in the middle of the UTF-8 sequence
			in.starts = append(in.starts, i, i+2)
		} else {
			in.chars = append(in.chars, ch)
			in.starts = append(in.starts, i)
		}

		i += size
	}

	in.starts = append(in.starts, len(text))

	return in
}

// charIndex converts a byte offset into a character index. Offsets inside a character are
// rounded up to the next character.
func (in *input) charIndex(pos int) int {
	pos = min(max(pos, 0), len(in.text))
	if in.starts == nil {
		return pos
	}

	return sort.SearchInts(in.starts, pos)
}

// byteOffset converts a character index into a byte offset.
func (in *input) byteOffset(i int) int {
	if i < 0 || in.starts == nil {
		return i
	}

	return in.starts[i]
}

// slice returns the text between two character indices.
func (in *input) slice(start, end int) string {
	return in.text[in.byteOffset(start):in.byteOffset(end)]
}

// len returns the number of characters.
func (in *input) len() int {
	return len(in.chars)
}
