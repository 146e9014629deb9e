package xre

import (
	"strings"

	"github.com/magnetde/xre/syntax"
)

// Part is a member of a union: a literal string or a compiled pattern.
type Part struct {
	literal string
	pattern *Pattern
}

// LiteralPart returns a union member, that matches the literal text.
func LiteralPart(s string) Part {
	return Part{literal: s}
}

// PatternPart returns a union member for a compiled pattern.
func PatternPart(p *Pattern) Part {
	return Part{pattern: p}
}

// Conjunction determines how union members are combined.
type Conjunction uint8

const (
	Or  Conjunction = iota // members are alternatives
	And                    // members must match in sequence
)

// flags of a member, that must agree with the union flags
const unionFlags = FlagIgnoreCase | FlagMultiline | FlagDotAll | FlagCodePoints

// Union combines the parts into one pattern. Numbered backreferences of every member are
// renumbered to refer to the same groups in the combined pattern. Group names must be unique
// across all members. A member, whose flags i, m, s or u disagree with the union flags, is
// rejected; ignore case requested by the union applies to all members.
func Union(parts []Part, flags Flags, conj Conjunction) (*Pattern, error) {
	return Defaults().Union(parts, flags, conj)
}

// Union is like the package function Union, but compiles with the configuration.
func (c Config) Union(parts []Part, flags Flags, conj Conjunction) (*Pattern, error) {
	src, err := unionSource(parts, flags, conj)
	if err != nil {
		return nil, err
	}

	return c.Compile(src, flags)
}

// unionSource returns the dialect source of the union.
func unionSource(parts []Part, flags Flags, conj Conjunction) (string, error) {
	if len(parts) == 0 {
		return "", ErrNoPatterns
	}

	var (
		members = make([]string, 0, len(parts))
		names   = make(map[string]bool)
		offset  int
	)

	for i, part := range parts {
		p := part.pattern
		if p == nil {
			members = append(members, Escape(part.literal))
			continue
		}

		diff := (p.flags ^ flags) & unionFlags
		if flags&FlagIgnoreCase != 0 {
			diff &^= FlagIgnoreCase
		}
		if diff != 0 {
			return "", syntaxErrorf(p.source, "pattern %d: flags %q disagree with the union flags %q",
				i, (p.flags & unionFlags).String(), (flags & unionFlags).String())
		}

		for _, name := range p.captures.Names()[1:] {
			if name == "" {
				continue
			}
			if names[name] {
				return "", syntaxErrorf(p.source, "pattern %d: duplicate capture name %q", i, name)
			}
			names[name] = true
		}

		src, n, err := syntax.Embed(p.Native(), p.captures, flags, offset)
		if err != nil {
			return "", err
		}

		members = append(members, src)
		offset += n
	}

	if conj == And {
		var b strings.Builder
		for _, m := range members {
			b.WriteString("(?:")
			b.WriteString(m)
			b.WriteByte(')')
		}

		return b.String(), nil
	}

	return strings.Join(members, "|"), nil
}
