package xre

import (
	"errors"
	"fmt"

	"github.com/magnetde/xre/syntax"
	"github.com/magnetde/xre/util"
)

// SyntaxError describes malformed dialect input: a bad pattern, flag string,
// replacement template, placeholder or capture selector.
type SyntaxError = syntax.Error

var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = syntax.ErrSyntax

	// ErrNoPatterns is returned by Union for an empty list of parts.
	ErrNoPatterns = errors.New("xre: no patterns to combine")

	// ErrUnknownOption is returned by Install and Uninstall for unknown option names.
	ErrUnknownOption = errors.New("xre: unknown option")

	// ErrEscapeChar is returned by the recursive matcher for an escape character, that
	// is not a single valid character.
	ErrEscapeChar = errors.New("xre: invalid escape character")
)

// UnbalancedDelimiterError is returned by the recursive matcher, if a delimiter has no
// counterpart.
type UnbalancedDelimiterError struct {
	Side string // "left" or "right"
	Pos  int    // byte offset of the delimiter
	Text string
}

func (e *UnbalancedDelimiterError) Error() string {
	return fmt.Sprintf("xre: unbalanced %s delimiter at position %d in %s", e.Side, e.Pos, util.Repr(e.Text))
}

// InvariantViolation reports a disagreement between the capture map of a pattern and the
// groups of the engine. It indicates a bug in the preprocessor.
type InvariantViolation struct {
	Pattern string // native pattern
	Want    int    // number of groups in the capture map
	Got     int    // number of groups reported by the engine
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("xre: capture map of %s has %d groups, but the engine reports %d",
		util.Repr(e.Pattern), e.Want, e.Got)
}

func syntaxErrorf(pattern string, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Msg:     fmt.Sprintf(format, args...),
		Pattern: pattern,
		Pos:     -1,
	}
}
