package syntax

import (
	"strings"
	"unicode/utf8"

	"github.com/magnetde/xre/util"
)

// source is a read cursor over a pattern.
type source struct {
	orig string // original source
	cur  string // current cursor
}

func (s *source) init(src string) {
	s.orig = src
	s.cur = src
}

func (s *source) tell() int {
	return len(s.orig) - len(s.cur)
}

func (s *source) eof() bool {
	return len(s.cur) == 0
}

// since returns the source text between the position pos and the cursor.
func (s *source) since(pos int) string {
	return s.orig[pos:s.tell()]
}

func (s *source) read() (rune, bool) {
	if len(s.cur) == 0 {
		return 0, false
	}

	c, size := utf8.DecodeRuneInString(s.cur)
	s.cur = s.cur[size:]

	return c, true
}

func (s *source) peek() (rune, bool) {
	if len(s.cur) == 0 {
		return 0, false
	}

	c, _ := utf8.DecodeRuneInString(s.cur)
	return c, true
}

func (s *source) match(c rune) bool {
	if len(s.cur) == 0 {
		return false
	}

	ch, width := utf8.DecodeRuneInString(s.cur)
	if ch == c {
		s.cur = s.cur[width:]
		return true
	}

	return false
}

func (s *source) matchString(prefix string) bool {
	if rest, ok := strings.CutPrefix(s.cur, prefix); ok {
		s.cur = rest
		return true
	}

	return false
}

func (s *source) hasPrefix(prefix string) bool {
	return strings.HasPrefix(s.cur, prefix)
}

// getUntil returns the text until the terminator c and skips the terminator.
func (s *source) getUntil(c byte) (string, bool) {
	i := strings.IndexByte(s.cur, c)
	if i < 0 {
		return "", false
	}

	pre := s.cur[:i]
	s.cur = s.cur[i+1:]

	return pre, true
}

// nextInt reads a decimal number. The boolean result is false if no digit was found.
// Numbers larger than limit are clamped to limit.
func (s *source) nextInt(limit int) (int, bool) {
	n := 0
	found := false

	for len(s.cur) > 0 && util.IsDigit(s.cur[0]) {
		n = min(10*n+util.Digit(s.cur[0]), limit)
		found = true

		s.cur = s.cur[1:]
	}

	return n, found
}

// nextHex reads up to width hex digits and returns their value and count.
func (s *source) nextHex(width int) (rune, int) {
	var v rune
	n := 0

	for n < width && len(s.cur) > 0 {
		d := util.HexValue(s.cur[0])
		if d < 0 {
			break
		}

		v = v<<4 | rune(d)
		n++

		s.cur = s.cur[1:]
	}

	return v, n
}

// nextOct reads up to width octal digits and returns their value and count.
func (s *source) nextOct(width int) (rune, int) {
	var v rune
	n := 0

	for n < width && len(s.cur) > 0 && util.IsOctDigit(s.cur[0]) {
		v = v<<3 | rune(util.Digit(s.cur[0]))
		n++

		s.cur = s.cur[1:]
	}

	return v, n
}
