package xre

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/magnetde/xre/syntax"
	"github.com/magnetde/xre/util"
)

// Config holds the options used to compile patterns.
// The zero value compiles patterns without astral mode, timeout and logging.
type Config struct {
	Astral       bool          // compile patterns in astral mode, unless code point mode is set
	MatchTimeout time.Duration // maximum duration of a single match; 0 means no timeout
	Logger       *log.Logger   // if set, every compiled pattern is logged with its native source
}

var (
	defaultsMu sync.RWMutex
	defaults   Config
)

// Defaults returns a copy of the process-wide default configuration.
func Defaults() Config {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()

	return defaults
}

// SetDefaults replaces the process-wide default configuration.
// It should not be called concurrently with compiles, that rely on the old defaults.
func SetDefaults(c Config) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	defaults = c
}

// Install enables options of the default configuration. The only option is "astral",
// which makes astral mode the default for all following compiles.
func Install(options ...string) error {
	return setOptions(options, true)
}

// Uninstall disables options of the default configuration.
func Uninstall(options ...string) error {
	return setOptions(options, false)
}

func setOptions(options []string, on bool) error {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	for _, o := range options {
		switch o {
		case "astral":
			defaults.Astral = on
		default:
			return fmt.Errorf("%w %s", ErrUnknownOption, util.Repr(o))
		}
	}

	return nil
}

// IsInstalled reports whether an option of the default configuration is enabled.
func IsInstalled(option string) bool {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()

	switch option {
	case "astral":
		return defaults.Astral
	default:
		return false
	}
}

// Compile compiles a dialect pattern with the configuration.
func (c Config) Compile(pattern string, flags Flags) (*Pattern, error) {
	if c.Astral && flags&FlagCodePoints == 0 {
		flags |= FlagAstral
	}

	res, err := syntax.Preprocess(pattern, flags)
	if err != nil {
		return nil, err
	}

	eng, err := compileEngine(res.Source, res.Flags, c.MatchTimeout)
	if err != nil {
		return nil, err
	}

	if got := eng.numGroups(); got != res.Captures.Len() {
		return nil, &InvariantViolation{
			Pattern: res.Source,
			Want:    res.Captures.Len(),
			Got:     got,
		}
	}

	if c.Logger != nil {
		c.Logger.Printf("compiled %s (flags %q) to %s", util.Repr(pattern), res.Flags.String(), util.Repr(res.Source))
	}

	p := &Pattern{
		source:   pattern,
		flags:    res.Flags,
		captures: res.Captures,
		eng:      eng,
	}

	return p, nil
}

// MustCompile is like Config.Compile but panics if the pattern cannot be compiled.
func (c Config) MustCompile(pattern string, flags Flags) *Pattern {
	p, err := c.Compile(pattern, flags)
	if err != nil {
		panic(err)
	}

	return p
}
