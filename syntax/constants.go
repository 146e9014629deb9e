package syntax

import (
	"fmt"
	"strings"
)

// Flags is a set of pattern flags.
type Flags uint16

// Possible pattern flags. The letter in the comment is the one accepted by ParseFlags
// and inside a leading mode modifier.
const (
	FlagIgnoreCase      Flags = 1 << iota // i
	FlagMultiline                         // m
	FlagDotAll                            // s
	FlagGlobal                            // g
	FlagSticky                            // y
	FlagFreeSpacing                       // x
	FlagExplicitCapture                   // n
	FlagAstral                            // A
	FlagCodePoints                        // u
)

// flagLetters must be in sync with the flag constants.
const flagLetters = "imsgyxnAu"

const (
	// flags, that can be set by a leading mode modifier
	leadingFlags = FlagIgnoreCase | FlagMultiline | FlagDotAll | FlagFreeSpacing |
		FlagExplicitCapture | FlagAstral | FlagCodePoints

	// flags, that regexp2 understands inside the pattern
	inlineFlags = FlagIgnoreCase | FlagMultiline | FlagDotAll

	// flags, that change the compiled program instead of only the iteration helpers
	programFlags = FlagIgnoreCase | FlagMultiline | FlagDotAll | FlagCodePoints
)

// maxGroupRef is the largest accepted backreference number.
const maxGroupRef = 1 << 20

// flagFromLetter returns the flag for a flag letter.
func flagFromLetter(c rune) (Flags, bool) {
	i := strings.IndexRune(flagLetters, c)
	if i < 0 {
		return 0, false
	}

	return 1 << i, true
}

// ParseFlags parses a flag string like "gix".
// Unknown and repeated flags are a syntax error.
func ParseFlags(s string) (Flags, error) {
	var f Flags

	for i, c := range s {
		flag, ok := flagFromLetter(c)
		if !ok {
			return 0, &Error{Msg: fmt.Sprintf("unknown flag %q", c), Pattern: s, Pos: i}
		}
		if f&flag != 0 {
			return 0, &Error{Msg: fmt.Sprintf("repeated flag %q", c), Pattern: s, Pos: i}
		}

		f |= flag
	}

	return f, nil
}

// MustParseFlags is like ParseFlags but panics if the flag string is invalid.
func MustParseFlags(s string) Flags {
	f, err := ParseFlags(s)
	if err != nil {
		panic(err)
	}

	return f
}

// String returns the flag letters in canonical order.
func (f Flags) String() string {
	var b strings.Builder

	for i, c := range flagLetters {
		if f&(1<<i) != 0 {
			b.WriteRune(c)
		}
	}

	return b.String()
}

// Program returns only the flags that influence the compiled program.
func (f Flags) Program() Flags {
	return f & programFlags
}
