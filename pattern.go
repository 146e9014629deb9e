package xre

import "github.com/magnetde/xre/syntax"

// Flags is a set of pattern flags.
type Flags = syntax.Flags

// Pattern flags.
const (
	FlagIgnoreCase      = syntax.FlagIgnoreCase      // i
	FlagMultiline       = syntax.FlagMultiline       // m
	FlagDotAll          = syntax.FlagDotAll          // s
	FlagGlobal          = syntax.FlagGlobal          // g
	FlagSticky          = syntax.FlagSticky          // y
	FlagFreeSpacing     = syntax.FlagFreeSpacing     // x
	FlagExplicitCapture = syntax.FlagExplicitCapture // n
	FlagAstral          = syntax.FlagAstral          // A
	FlagCodePoints      = syntax.FlagCodePoints      // u
)

// ParseFlags parses a flag string like "gix".
func ParseFlags(s string) (Flags, error) {
	return syntax.ParseFlags(s)
}

// Pattern is a compiled dialect pattern. It is immutable and safe for concurrent use.
type Pattern struct {
	source   string
	flags    Flags
	captures *syntax.CaptureMap
	eng      *engine
}

// Compile compiles a dialect pattern with the default configuration.
func Compile(pattern string, flags Flags) (*Pattern, error) {
	return Defaults().Compile(pattern, flags)
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(pattern string, flags Flags) *Pattern {
	return Defaults().MustCompile(pattern, flags)
}

// String returns the dialect source of the pattern.
func (p *Pattern) String() string {
	return p.source
}

// Source returns the dialect source of the pattern.
func (p *Pattern) Source() string {
	return p.source
}

// Native returns the pattern passed to the engine.
func (p *Pattern) Native() string {
	return p.eng.native
}

// Flags returns the effective flags, including the flags of a leading mode modifier.
func (p *Pattern) Flags() Flags {
	return p.flags
}

// Captures returns the capture map of the pattern.
func (p *Pattern) Captures() *syntax.CaptureMap {
	return p.captures
}

// NumSubexp returns the number of groups.
func (p *Pattern) NumSubexp() int {
	return p.captures.Len()
}

// SubexpNames returns the names of the groups; the first element belongs to the whole match
// and is always empty.
func (p *Pattern) SubexpNames() []string {
	return p.captures.Names()
}

// SubexpIndex returns the number of the group with the name, or -1.
func (p *Pattern) SubexpIndex(name string) int {
	if i, ok := p.captures.Index(name); ok {
		return i
	}

	return -1
}

// codePoints reports whether the engine scans code points instead of code units.
func (p *Pattern) codePoints() bool {
	return p.flags&FlagCodePoints != 0
}
