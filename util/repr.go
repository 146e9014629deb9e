package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Digits of hex strings.
var hexDigits = "0123456789abcdef"

// Repr returns a quoted representation of a pattern or text for error messages.
// Single quotes are used, unless the string contains a single quote but no double quote.
func Repr(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)

	var quote byte
	if strings.IndexByte(s, '\'') < 0 || strings.IndexByte(s, '"') >= 0 {
		quote = '\''
	} else {
		quote = '"'
	}

	b.WriteByte(quote)

	for len(s) > 0 {
		ch, size := utf8.DecodeRuneInString(s)

		switch {
		case ch == utf8.RuneError && size == 1:
			b.WriteString(`\x`)
			b.WriteByte(hexDigits[s[0]>>4])
			b.WriteByte(hexDigits[s[0]&0xf])
		case ch == rune(quote) || ch == '\\':
			b.WriteByte('\\')
			b.WriteRune(ch)
		case ch == '\n':
			b.WriteString(`\n`)
		case ch == '\r':
			b.WriteString(`\r`)
		case ch == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(ch):
			b.WriteRune(ch)
		default:
			hexEscape(&b, ch)
		}

		s = s[size:]
	}

	b.WriteByte(quote)

	return b.String()
}

// hexEscape writes the shortest of the escapes \xhh, \uhhhh or \Uhhhhhhhh.
func hexEscape(w *strings.Builder, ch rune) {
	var n int

	switch {
	case ch <= 0xff:
		w.WriteString(`\x`)
		n = 2
	case ch <= 0xffff:
		w.WriteString(`\u`)
		n = 4
	default:
		w.WriteString(`\U`)
		n = 8
	}

	for i := n - 1; i >= 0; i-- {
		w.WriteByte(hexDigits[(ch>>(4*i))&0xf])
	}
}
