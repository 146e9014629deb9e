package syntax

import (
	"strconv"
	"strings"

	"github.com/magnetde/xre/util"
)

// Special indices of template rules.
const (
	IndexLiteral = -1 // the rule is a literal
	IndexPrefix  = -2 // $`, the text before the match
	IndexSuffix  = -3 // $', the text after the match
)

// TemplateRule is one part of a parsed replacement template.
type TemplateRule struct {
	Literal string
	Index   int // group number, or one of the special indices
}

func (t *TemplateRule) IsLiteral() bool {
	return t.Index == IndexLiteral
}

// ParseTemplate parses a replacement template. The following tokens are substituted:
//
//	$$          a literal $
//	$& or $0    the whole match
//	$`          the text before the match
//	$'          the text after the match
//	$n, $nn     group n; two digits are used if they name an existing group
//	$<name>     the named (or numbered) group
//	${name}     the named (or numbered) group
//
// A reference to a group, that does not exist, is a syntax error.
func ParseTemplate(c *CaptureMap, template string) ([]TemplateRule, error) {
	var rules []TemplateRule

	addLiteral := func(s string) {
		if s == "" {
			return
		}

		if len(rules) > 0 {
			lastRule := &rules[len(rules)-1]

			if lastRule.IsLiteral() { // if last rule is also a literal, then concat the strings
				lastRule.Literal += s
				return
			}
		}

		rules = append(rules, TemplateRule{Literal: s, Index: IndexLiteral})
	}

	s := template
	for len(s) > 0 {
		before, rest, ok := strings.Cut(s, "$")
		if !ok {
			break
		}

		addLiteral(before)

		pos := len(template) - len(rest) - 1
		s = rest

		if s == "" {
			addLiteral("$")
			break
		}

		switch c0 := s[0]; {
		case c0 == '$':
			addLiteral("$")
			s = s[1:]
		case c0 == '&':
			rules = append(rules, TemplateRule{Index: 0})
			s = s[1:]
		case c0 == '`':
			rules = append(rules, TemplateRule{Index: IndexPrefix})
			s = s[1:]
		case c0 == '\'':
			rules = append(rules, TemplateRule{Index: IndexSuffix})
			s = s[1:]
		case util.IsDigit(c0):
			index := util.Digit(c0)
			s = s[1:]

			if len(s) > 0 && util.IsDigit(s[0]) {
				if two := 10*index + util.Digit(s[0]); two >= 1 && two <= c.Len() {
					index = two
					s = s[1:]
				}
			}

			if index > c.Len() {
				return nil, errorf(template, pos, "invalid group reference %d", index)
			}

			rules = append(rules, TemplateRule{Index: index})
		case c0 == '<' || c0 == '{':
			term := byte('>')
			if c0 == '{' {
				term = '}'
			}

			name, after, ok := strings.Cut(s[1:], string(term))
			if !ok {
				addLiteral("$")
				break
			}

			index, err := templateGroup(c, template, pos, name)
			if err != nil {
				return nil, err
			}

			rules = append(rules, TemplateRule{Index: index})
			s = after
		default:
			addLiteral("$")
		}
	}

	addLiteral(s)

	return rules, nil
}

// templateGroup returns the group number of a $<name> or ${name} reference.
func templateGroup(c *CaptureMap, template string, pos int, name string) (int, error) {
	if name == "" {
		return 0, errorf(template, pos, "missing group name")
	}

	if n, err := strconv.ParseUint(name, 10, 32); err == nil {
		if n > uint64(c.Len()) {
			return 0, errorf(template, pos, "invalid group reference %d", n)
		}

		return int(n), nil
	}

	index, ok := c.Index(name)
	if !ok {
		return 0, errorf(template, pos, "unknown group name %s", util.Repr(name))
	}

	return index, nil
}
