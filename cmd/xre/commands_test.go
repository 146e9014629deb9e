package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnetde/xre"
	"github.com/magnetde/xre/config"
)

func newTestContext(t *testing.T, quiet bool) (*Context, *bytes.Buffer) {
	t.Helper()

	color.NoColor = true

	var out bytes.Buffer
	ctx := &Context{
		Config: config.DefaultConfig(),
		Quiet:  quiet,
		Out:    &out,
	}

	return ctx, &out
}

func TestCompileCmd(t *testing.T) {
	ctx, out := newTestContext(t, true)

	cmd := &CompileCmd{Pattern: `(?<year>\d{4}) - (?<month>\d{2})`, Flags: "x"}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, `(\d{4})-(\d{2})`+"\n", out.String())

	ctx, out = newTestContext(t, false)
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, out.String(), "group 1: year\n")
	assert.Contains(t, out.String(), "group 2: month\n")
	assert.Contains(t, out.String(), `flags:   "x"`)

	err := (&CompileCmd{Pattern: `(`}).Run(ctx)
	assert.ErrorIs(t, err, xre.ErrSyntax)

	err = (&CompileCmd{Pattern: `a`, Flags: "q"}).Run(ctx)
	assert.ErrorIs(t, err, xre.ErrSyntax)
}

func TestExecCmd(t *testing.T) {
	ctx, out := newTestContext(t, false)

	cmd := &ExecCmd{Pattern: `(?<d>\d)(x)?`, Text: "a1b2"}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "match 0 at 1-2: '1'\n  1 d: '1'\n  2: unmatched\n", out.String())

	ctx, out = newTestContext(t, true)
	cmd = &ExecCmd{Pattern: `\d`, Text: "a1b2c3", All: true}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "1\n2\n3\n", out.String())

	ctx, out = newTestContext(t, true)
	cmd = &ExecCmd{Pattern: `\d`, Text: "a1b2c3", Pos: 2}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "2\n", out.String())

	err := (&ExecCmd{Pattern: `z`, Text: "abc"}).Run(ctx)
	assert.ErrorIs(t, err, ErrNoMatch)

	err = (&ExecCmd{Pattern: `z`, Text: "abc", All: true}).Run(ctx)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestReplaceCmd(t *testing.T) {
	ctx, out := newTestContext(t, true)

	cmd := &ReplaceCmd{
		Pattern:     `(?<year>\d{4})-(?<month>\d{2})-(?<day>\d{2})`,
		Text:        "2021-02-22",
		Replacement: "$<month>/$<day>/$<year>",
	}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "02/22/2021\n", out.String())

	ctx, out = newTestContext(t, true)
	require.NoError(t, (&ReplaceCmd{Pattern: `a`, Text: "aaa", Replacement: "b"}).Run(ctx))
	require.NoError(t, (&ReplaceCmd{Pattern: `a`, Text: "aaa", Replacement: "b", All: true}).Run(ctx))
	require.NoError(t, (&ReplaceCmd{Pattern: `a`, Text: "aaa", Replacement: "b", Flags: "g"}).Run(ctx))
	assert.Equal(t, "baa\nbbb\nbbb\n", out.String())

	err := (&ReplaceCmd{Pattern: `a`, Text: "a", Replacement: "$<x>"}).Run(ctx)
	assert.ErrorIs(t, err, xre.ErrSyntax)
}

func TestRecursiveCmd(t *testing.T) {
	ctx, out := newTestContext(t, true)

	cmd := &RecursiveCmd{Text: "(t((e))s)t()(ing)", Left: `\(`, Right: `\)`, Flags: "g", Unbalanced: "error"}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "t((e))s\n\ning\n", out.String())

	ctx, out = newTestContext(t, false)
	cmd = &RecursiveCmd{Text: "Here is <div>a</div> test", Left: `<div\s*>`, Right: `</div>`, Flags: "gi", Unbalanced: "error", Segments: true}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t,
		"between 0-8: 'Here is '\n"+
			"left    8-13: '<div>'\n"+
			"match   13-14: 'a'\n"+
			"right   14-20: '</div>'\n"+
			"between 20-25: ' test'\n",
		out.String())

	err := (&RecursiveCmd{Text: "a(b", Left: `\(`, Right: `\)`, Unbalanced: "error"}).Run(ctx)

	var ue *xre.UnbalancedDelimiterError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "left", ue.Side)

	ctx, out = newTestContext(t, true)
	cmd = &RecursiveCmd{Text: "a(b", Left: `\(`, Right: `\)`, Unbalanced: "skip"}
	require.NoError(t, cmd.Run(ctx))
	assert.Empty(t, out.String())

	err = (&RecursiveCmd{Text: "a", Left: `\(`, Right: `\)`, Escape: "ab", Unbalanced: "error"}).Run(ctx)
	assert.ErrorIs(t, err, ErrInvalidEscapeChar)
}

func TestChainCmd(t *testing.T) {
	ctx, out := newTestContext(t, true)

	cmd := &ChainCmd{
		Text: `<a href="http://xregexp.com/api/">XRegExp</a> <a href="http://www.google.com/">Google</a>`,
		Stages: []string{
			`<a href="([^"]+)">(?:.*?)</a>::1`,
			`(?i)^https?://(?<domain>[^/?#]+)::domain`,
		},
	}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "xregexp.com\nwww.google.com\n", out.String())

	err := (&ChainCmd{Text: "a", Stages: []string{`a::9`}}).Run(ctx)
	assert.ErrorIs(t, err, xre.ErrSyntax)

	err = (&ChainCmd{Text: "a", Stages: []string{`a::1x`}}).Run(ctx)
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestParseStage(t *testing.T) {
	ctx, _ := newTestContext(t, true)

	stage, err := parseStage(ctx, `a::b::(?<c>c)::c`, "")
	require.NoError(t, err)
	assert.Equal(t, `a::b::(?<c>c)`, stage.Pattern.Source())
	assert.Equal(t, xre.SelectName("c"), stage.Selector)

	stage, err = parseStage(ctx, `(x)::1`, "")
	require.NoError(t, err)
	assert.Equal(t, xre.SelectGroup(1), stage.Selector)

	stage, err = parseStage(ctx, `x`, "")
	require.NoError(t, err)
	assert.Equal(t, xre.Selector{}, stage.Selector)
}

func TestUnionCmd(t *testing.T) {
	ctx, out := newTestContext(t, true)

	require.NoError(t, (&UnionCmd{Parts: []string{"a+b", "c"}, Literal: true}).Run(ctx))
	require.NoError(t, (&UnionCmd{Parts: []string{`(a)\1`, `(b)\1`}, And: true}).Run(ctx))
	assert.Equal(t, "a\\+b|c\n(?:(a)\\1)(?:(b)\\2)\n", out.String())

	err := (&UnionCmd{Parts: []string{`(?<x>a)`, `(?<x>b)`}}).Run(ctx)
	assert.ErrorIs(t, err, xre.ErrSyntax)
}

func TestBuildCmd(t *testing.T) {
	ctx, out := newTestContext(t, true)
	ctx.Config.Subpatterns = map[string]config.Subpattern{
		"year": {Pattern: `\d{4}`},
	}

	cmd := &BuildCmd{
		Template: `^({{year}})-({{month}})$`,
		Sub:      []string{`month=\d{2}`},
		Test:     "2024-05",
	}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, `^((?:\d{4}))-((?:\d{2}))$`+"\n2024-05\n", out.String())

	err := (&BuildCmd{Template: `{{a}}`, Sub: []string{"=x"}}).Run(ctx)
	assert.ErrorIs(t, err, ErrInvalidSubpattern)

	err = (&BuildCmd{Template: `{{a}}`}).Run(ctx)
	assert.ErrorIs(t, err, xre.ErrSyntax)

	err = (&BuildCmd{Template: `{{year}}`, Test: "no"}).Run(ctx)
	assert.ErrorIs(t, err, ErrNoMatch)
}
