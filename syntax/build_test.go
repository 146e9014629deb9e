package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compiled(t *testing.T, pattern string, flags Flags) Subpattern {
	t.Helper()

	res := preprocess(t, pattern, flags)
	return Subpattern{
		Kind:     SubCompiled,
		Source:   res.Source,
		Flags:    res.Flags,
		Captures: res.Captures,
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		template string
		subs     map[string]Subpattern
		flags    Flags
		want     string
	}{
		{
			`{{a}}{{b}}`,
			map[string]Subpattern{
				"a": {Kind: SubFragment, Source: `(x)\1`},
				"b": {Kind: SubFragment, Source: `(y)\1`},
			},
			0,
			`(?:(x)\1)(?:(y)\2)`,
		},
		{
			`^{{a}}$`,
			map[string]Subpattern{"a": {Kind: SubFragment, Source: `^a$`}},
			0,
			`^(?:a)$`,
		},
		{
			`{{a}}`,
			map[string]Subpattern{"a": {Kind: SubFragment, Source: `^a`}},
			0,
			`(?:^a)`,
		},
		{
			`({{a}})\1`,
			map[string]Subpattern{"a": {Kind: SubFragment, Source: `a`}},
			0,
			`(?<a>(?:a))\1`,
		},
		{
			`({{a}})(b)`,
			map[string]Subpattern{"a": {Kind: SubFragment, Source: `(c)`}},
			FlagExplicitCapture,
			`(?<a>(?:(c)))(b)`,
		},
		{
			`(?x) (z) {{a}} \1`,
			map[string]Subpattern{"a": {Kind: SubFragment, Source: `( b )`}},
			0,
			` (z) (?:( b )) \1`,
		},
	}

	for _, test := range tests {
		src, _, err := Expand(test.template, test.subs, test.flags)
		require.NoError(t, err, test.template)
		assert.Equal(t, test.want, src, test.template)
	}
}

func TestExpandLeadingModifier(t *testing.T) {
	_, flags, err := Expand(`(?ix){{a}}`, map[string]Subpattern{"a": {Kind: SubFragment, Source: "a"}}, FlagGlobal)
	require.NoError(t, err)
	assert.Equal(t, FlagIgnoreCase|FlagGlobal|FlagFreeSpacing, flags)
}

func TestExpandCompiled(t *testing.T) {
	subs := map[string]Subpattern{
		"named": compiled(t, `(?<n>a)\k<n>`, 0),
		"icase": compiled(t, `(b)`, FlagIgnoreCase),
		"hash":  compiled(t, `c#`, 0),
	}

	src, _, err := Expand(`{{named}}{{icase}}`, subs, 0)
	require.NoError(t, err)
	assert.Equal(t, `(?:(?<n>a)\1)(?:(?i:(b)))`, src)

	src, _, err = Expand(`{{named}}`, subs, FlagIgnoreCase|FlagDotAll)
	require.NoError(t, err)
	assert.Equal(t, `(?:(?-is:(?<n>a)\1))`, src)

	src, _, err = Expand(`{{hash}}`, subs, FlagFreeSpacing)
	require.NoError(t, err)
	assert.Equal(t, `(?:c\#)`, src)

	_, _, err = Expand(`{{a}}`, map[string]Subpattern{"a": compiled(t, `(a)\1`, 0)}, FlagExplicitCapture)
	assert.ErrorIs(t, err, ErrSyntax)

	src, _, err = Expand(`{{a}}`, map[string]Subpattern{"a": compiled(t, `(a)(?<b>b)\2`, 0)}, FlagExplicitCapture)
	require.NoError(t, err)
	assert.Equal(t, `(?:(?:a)(?<b>b)\1)`, src)
}

func TestExpandNested(t *testing.T) {
	subs := map[string]Subpattern{
		"x": {Kind: SubFragment, Source: `x`},
		"outer": {Kind: SubTemplate, Source: `^{{inner}}{{x}}$`, Subs: map[string]Subpattern{
			"inner": {Kind: SubTemplate, Source: `(i){{x}}\1`},
		}},
	}

	src, _, err := Expand(`(a){{outer}}\1`, subs, 0)
	require.NoError(t, err)
	assert.Equal(t, `(a)(?:(?:(i)(?:x)\2)(?:x))\1`, src)
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		template string
		subs     map[string]Subpattern
		flags    Flags
	}{
		{`{{a}}`, nil, 0},
		{`{{a}}`, map[string]Subpattern{"a": {Kind: SubTemplate, Source: `{{b}}`, Subs: map[string]Subpattern{
			"b": {Kind: SubTemplate, Source: `{{a}}`},
		}}}, 0},
		{`{{a}}`, map[string]Subpattern{"a": {Kind: SubFragment, Source: `\1`}}, 0},
		{`\1{{a}}`, map[string]Subpattern{"a": {Kind: SubFragment, Source: `(a)`}}, 0},
		{`{{a}}`, map[string]Subpattern{"a": {Kind: SubFragment, Source: `[a`}}, 0},
		{`(?z){{a}}`, nil, 0},
	}

	for _, test := range tests {
		_, _, err := Expand(test.template, test.subs, test.flags)
		assert.ErrorIs(t, err, ErrSyntax, test.template)
	}

	_, _, err := Expand(`{{a}}`, map[string]Subpattern{"a": compiled(t, `a`, FlagCodePoints)}, 0)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestEmbed(t *testing.T) {
	res := preprocess(t, `(?<x>a)(b)\2`, 0)

	src, n, err := Embed(res.Source, res.Captures, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, `(?<x>a)(b)\5`, src)
	assert.Equal(t, 2, n)

	src, n, err = Embed(res.Source, res.Captures, FlagExplicitCapture, 0)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Empty(t, src)
	assert.Zero(t, n)
}

func TestScopedModifier(t *testing.T) {
	assert.Equal(t, "", scopedModifier(FlagIgnoreCase|FlagGlobal, FlagIgnoreCase))
	assert.Equal(t, "(?i:", scopedModifier(FlagIgnoreCase, 0))
	assert.Equal(t, "(?m-s:", scopedModifier(FlagMultiline, FlagDotAll))
}

func TestDeanchor(t *testing.T) {
	for pattern, want := range map[string]string{
		`^a$`:   `a`,
		`^a`:    `^a`,
		`a$`:    `a$`,
		`^`:     `^`,
		`^$`:    ``,
		`^a|b$`: `a|b`,
	} {
		toks, err := lex(pattern, 0, false, false)
		require.NoError(t, err)

		var s string
		for _, tok := range deanchor(toks) {
			s += tok.text
		}
		assert.Equal(t, want, s, pattern)
	}
}
