package xre

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRecursive(t *testing.T) {
	res, err := MatchRecursive("(t((e))s)t()(ing)", `\(`, `\)`, FlagGlobal, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t((e))s", "", "ing"}, res)

	res, err = MatchRecursive("(t((e))s)t()(ing)", `\(`, `\)`, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t((e))s"}, res)
}

func TestMatchRecursiveSegments(t *testing.T) {
	text := "Here is <div> <div>an</div></div> example"

	segs, err := MatchRecursiveSegments(text, `<div\s*>`, `</div>`, FlagGlobal|FlagIgnoreCase, nil, ValueNames{
		Between: "between",
		Left:    "left",
		Match:   "match",
		Right:   "right",
	})
	require.NoError(t, err)

	want := []Segment{
		{SegmentBetween, "between", "Here is ", 0, 8},
		{SegmentLeft, "left", "<div>", 8, 13},
		{SegmentMatch, "match", " <div>an</div>", 13, 27},
		{SegmentRight, "right", "</div>", 27, 33},
		{SegmentBetween, "between", " example", 33, 41},
	}
	assert.Equal(t, want, segs)

	var b strings.Builder
	for _, s := range segs {
		assert.Equal(t, text[s.Start:s.End], s.Value)
		b.WriteString(s.Value)
	}
	assert.Equal(t, text, b.String())
}

func TestMatchRecursiveEscapeChar(t *testing.T) {
	text := `...{1}.\{{function(x,y){return {y:x}}}`

	segs, err := MatchRecursiveSegments(text, `{`, `}`, FlagGlobal, &RecursiveOptions{EscapeChar: '\\'}, ValueNames{
		Between: "literal",
		Match:   "value",
	})
	require.NoError(t, err)

	want := []Segment{
		{SegmentBetween, "literal", "...", 0, 3},
		{SegmentMatch, "value", "1", 4, 5},
		{SegmentBetween, "literal", `.\{`, 6, 9},
		{SegmentMatch, "value", "function(x,y){return {y:x}}", 10, 37},
	}
	assert.Equal(t, want, segs)
}

func TestMatchRecursiveNoDelimiters(t *testing.T) {
	names := ValueNames{Between: "b", Left: "l", Match: "m", Right: "r"}

	segs, err := MatchRecursiveSegments("plain text", `\(`, `\)`, FlagGlobal, nil, names)
	require.NoError(t, err)
	assert.Equal(t, []Segment{{SegmentBetween, "b", "plain text", 0, 10}}, segs)

	segs, err = MatchRecursiveSegments("plain text", `\(`, `\)`, 0, nil, names)
	require.NoError(t, err)
	assert.Empty(t, segs)

	res, err := MatchRecursive("plain text", `\(`, `\)`, FlagGlobal, nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestMatchRecursiveSticky(t *testing.T) {
	res, err := MatchRecursive("<1><<<2>>><3>4<5>", `<`, `>`, FlagGlobal|FlagSticky, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "<<2>>", "3"}, res)
}

func TestMatchRecursiveUnbalanced(t *testing.T) {
	text := "Here is <div> <div>an</div> unbalanced example"

	res, err := MatchRecursive(text, `<div\s*>`, `</div>`, FlagGlobal|FlagIgnoreCase, &RecursiveOptions{Unbalanced: UnbalancedSkip})
	require.NoError(t, err)
	assert.Equal(t, []string{"an"}, res)

	res, err = MatchRecursive(text, `<div\s*>`, `</div>`, FlagGlobal|FlagIgnoreCase, &RecursiveOptions{Unbalanced: UnbalancedSkipLazy})
	require.NoError(t, err)
	assert.Equal(t, []string{"an"}, res)

	_, err = MatchRecursive(text, `<div\s*>`, `</div>`, FlagGlobal|FlagIgnoreCase, nil)

	var ue *UnbalancedDelimiterError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "left", ue.Side)
	assert.Equal(t, 8, ue.Pos)

	_, err = MatchRecursive("a)b", `\(`, `\)`, FlagGlobal, nil)
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "right", ue.Side)
	assert.Equal(t, 1, ue.Pos)
}

func TestMatchRecursiveNonASCII(t *testing.T) {
	segs, err := MatchRecursiveSegments("ä[ö[💩]]ü", `\[`, `\]`, FlagGlobal, nil, ValueNames{Between: "b", Match: "m"})
	require.NoError(t, err)

	require.Len(t, segs, 3)
	assert.Equal(t, Segment{SegmentBetween, "b", "ä", 0, 2}, segs[0])
	assert.Equal(t, Segment{SegmentMatch, "m", "ö[💩]", 3, 11}, segs[1])
	assert.Equal(t, Segment{SegmentBetween, "b", "ü", 12, 14}, segs[2])
}

func TestMatchRecursiveErrors(t *testing.T) {
	_, err := MatchRecursive("x", `(`, `\)`, 0, nil)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = MatchRecursive("x", `\(`, `\)`, 0, &RecursiveOptions{EscapeChar: -1})
	assert.ErrorIs(t, err, ErrEscapeChar)
}
