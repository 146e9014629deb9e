package syntax

import (
	"errors"
	"fmt"

	"github.com/magnetde/xre/util"
)

// ErrSyntax is matched by every *Error using errors.Is.
var ErrSyntax = errors.New("invalid pattern")

// Error describes malformed dialect syntax: a bad pattern, flag string, replacement template,
// placeholder or capture selector.
type Error struct {
	Msg     string
	Pattern string // the offending pattern or template
	Pos     int    // byte offset into Pattern; -1 if the error has no position
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%s in pattern %s", e.Msg, util.Repr(e.Pattern))
	}

	return fmt.Sprintf("%s at position %d in pattern %s", e.Msg, e.Pos, util.Repr(e.Pattern))
}

func (e *Error) Is(target error) bool {
	return target == ErrSyntax
}

// errorf returns a new syntax error for the pattern.
func errorf(pattern string, pos int, format string, args ...any) *Error {
	return &Error{
		Msg:     fmt.Sprintf(format, args...),
		Pattern: pattern,
		Pos:     pos,
	}
}
