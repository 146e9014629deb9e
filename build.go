package xre

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magnetde/xre/syntax"
)

// Subpattern is a value for a {{name}} placeholder of Build.
type Subpattern = syntax.Subpattern

// Subpatterns maps placeholder names to subpatterns.
type Subpatterns = map[string]Subpattern

// Fragment returns a subpattern for a dialect fragment.
func Fragment(s string) Subpattern {
	return Subpattern{Kind: syntax.SubFragment, Source: s}
}

// Compiled returns a subpattern for a compiled pattern. Its group names are kept and
// differing flags i, m and s are applied to the subpattern only.
func Compiled(p *Pattern) Subpattern {
	return Subpattern{
		Kind:     syntax.SubCompiled,
		Source:   p.Native(),
		Flags:    p.flags,
		Captures: p.captures,
	}
}

// Nested returns a subpattern for a nested template. Placeholders of the template are
// looked up in subs first and then in the subpatterns of the enclosing templates.
func Nested(template string, subs Subpatterns) Subpattern {
	return Subpattern{Kind: syntax.SubTemplate, Source: template, Subs: subs}
}

// Build compiles a template, whose {{name}} placeholders are replaced with subpatterns.
// A leading mode modifier of the template is added to the flags.
func Build(template string, subs Subpatterns, flags Flags) (*Pattern, error) {
	return Defaults().Build(template, subs, flags)
}

// Build is like the package function Build, but compiles with the configuration.
func (c Config) Build(template string, subs Subpatterns, flags Flags) (*Pattern, error) {
	src, flags, err := syntax.Expand(template, subs, flags)
	if err != nil {
		return nil, err
	}

	return c.Compile(src, flags)
}

// Composer composes patterns from literal parts and interpolated values.
type Composer struct {
	flags  Flags
	config Config
}

// Tag returns a composer, that compiles with the flags and the default configuration.
func Tag(flags Flags) Composer {
	return Defaults().Tag(flags)
}

// Tag returns a composer, that compiles with the flags and the configuration.
func (c Config) Tag(flags Flags) Composer {
	return Composer{flags: flags, config: c}
}

// Compose joins the literal parts with the values in between; there must be exactly one
// value less than literal parts. The literal parts are dialect source. A *Pattern value is
// inlined like a compiled subpattern of Build, with its numbered backreferences renumbered;
// a string value is inlined as escaped literal text.
func (c Composer) Compose(literals []string, values ...any) (*Pattern, error) {
	if len(literals) != len(values)+1 {
		return nil, fmt.Errorf("xre: %d literal parts need %d values, got %d", len(literals), len(literals)-1, len(values))
	}

	var b strings.Builder
	subs := make(Subpatterns, len(values))

	b.WriteString(literals[0])

	for i, v := range values {
		name := strconv.Itoa(i)

		switch v := v.(type) {
		case *Pattern:
			subs[name] = Compiled(v)
		case string:
			subs[name] = Fragment(Escape(v))
		default:
			return nil, fmt.Errorf("xre: cannot interpolate value %d of type %T", i, v)
		}

		b.WriteString("{{" + name + "}}")
		b.WriteString(literals[i+1])
	}

	return c.config.Build(b.String(), subs, c.flags)
}

// Compile is a convenience for composing without values.
func (c Composer) Compile(source string) (*Pattern, error) {
	return c.Compose([]string{source})
}
