package util

import "unicode/utf8"

// IsASCIIString reports whether s only contains ASCII characters.
func IsASCIIString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

// IsDigit reports whether c is a decimal digit.
func IsDigit[T byte | rune](c T) bool {
	return '0' <= c && c <= '9'
}

// Digit returns the value of the decimal digit c.
// precondition: c must be in set "0123456789"
func Digit[T byte | rune](c T) int {
	return int(c - '0')
}

// IsOctDigit reports whether c is an octal digit.
func IsOctDigit[T byte | rune](c T) bool {
	return '0' <= c && c <= '7'
}

// HexValue returns the value of the hex digit c or -1.
func HexValue[T byte | rune](c T) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// IsWordChar reports whether c is an ASCII letter, digit, underscore or dollar sign.
func IsWordChar(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || IsDigit(c) || c == '_' || c == '$'
}

// IsASCIILetter reports whether c is an ASCII letter.
func IsASCIILetter[T byte | rune](c T) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
