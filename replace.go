package xre

import (
	"strings"

	"github.com/magnetde/xre/syntax"
)

// Replacement is either a Template or a ReplaceFunc.
type Replacement interface {
	replacer(p *Pattern) (replacer, error)
}

// Template is a replacement template; see syntax.ParseTemplate for its syntax.
type Template string

// ReplaceFunc returns the replacement for a match. The match exposes the whole match,
// the numbered groups and the named groups.
type ReplaceFunc func(m *Match) (string, error)

// Func returns a replacement, that calls fn for every match.
func Func(fn func(m *Match) (string, error)) Replacement {
	return ReplaceFunc(fn)
}

type replacer interface {
	replace(b *strings.Builder, m *Match) error
}

// Replacer for templates.
// If the template does not contain any references, the rule slice contains a single item,
// representing a literal.
type templateReplacer struct {
	rules []syntax.TemplateRule
}

// Replacer for functions
type functionReplacer ReplaceFunc

// Check if the types satisfy the interfaces.
var (
	_ Replacement = Template("")
	_ Replacement = ReplaceFunc(nil)
	_ replacer    = (*templateReplacer)(nil)
	_ replacer    = functionReplacer(nil)
)

func (t Template) replacer(p *Pattern) (replacer, error) {
	s := string(t)

	if !strings.ContainsRune(s, '$') { // check, if the template should be parsed
		return &templateReplacer{rules: []syntax.TemplateRule{{Literal: s, Index: syntax.IndexLiteral}}}, nil
	}

	rules, err := syntax.ParseTemplate(p.captures, s)
	if err != nil {
		return nil, err
	}

	return &templateReplacer{rules: rules}, nil
}

func (f ReplaceFunc) replacer(*Pattern) (replacer, error) {
	return functionReplacer(f), nil
}

func (r *templateReplacer) replace(b *strings.Builder, m *Match) error {
	m.expand(b, r.rules)
	return nil
}

func (r functionReplacer) replace(b *strings.Builder, m *Match) error {
	s, err := r(m)
	if err != nil {
		return err
	}

	b.WriteString(s)
	return nil
}

// Replace replaces matches of the pattern in the text. All matches are replaced if the
// pattern has the flag g, otherwise only the first. With the flag y, matches must follow
// each other without gaps, starting at the beginning of the text.
//
// A template referring to a group, that does not exist, is a syntax error.
func Replace(text string, p *Pattern, r Replacement) (string, error) {
	return replace(text, p, r, p.flags&FlagGlobal != 0)
}

// ReplaceAll is like Replace, but always replaces all matches.
func ReplaceAll(text string, p *Pattern, r Replacement) (string, error) {
	return replace(text, p, r, true)
}

func replace(text string, p *Pattern, r Replacement, global bool) (string, error) {
	rep, err := r.replacer(p)
	if err != nil {
		return "", err
	}

	s := p.scanner(text)

	var b strings.Builder
	last := 0

	err = s.each(0, p.flags&FlagSticky != 0, func(loc []int) (bool, error) {
		m, err := s.match(loc)
		if err != nil {
			return false, err
		}

		b.WriteString(text[last:m.Index()])
		if err := rep.replace(&b, m); err != nil {
			return false, err
		}

		last = m.End()
		return global, nil
	})
	if err != nil {
		return "", err
	}

	b.WriteString(text[last:])

	return b.String(), nil
}
