package xre

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// specialBytes contains 16 * 8 = 128 bits, where each bit represents one byte value.
// If the i-th it is 1, the i-th byte character represents a special character, that
// needs to be escaped.
// This array represents the following bytes: "-[]{}()*+?.,\\^$|# \t\n\r\v\f".
var specialBytes = [16]byte{
	0x04, 0x00, 0x00, 0x04, 0x04, 0x00, 0x00, 0x00,
	0x04, 0x05, 0x05, 0xa5, 0xa5, 0xa5, 0x24, 0x08,
}

// special reports whether byte b needs to be escaped by Escape.
func special(b byte) bool {
	return b < utf8.RuneSelf && specialBytes[b%16]&(1<<(b/16)) != 0
}

// Escape returns a pattern, that matches the literal text. The characters
// "-[]{}()*+?.,\\^$|#" and whitespace are escaped with a backslash, so the result
// is also safe to use in free-spacing mode and inside character classes.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, c := range s {
		if (c < utf8.RuneSelf && special(byte(c))) || (c >= utf8.RuneSelf && unicode.IsSpace(c)) {
			b.WriteByte('\\')
		}

		b.WriteRune(c)
	}

	return b.String()
}
