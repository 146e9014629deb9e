package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/magnetde/xre"
	"github.com/magnetde/xre/util"
)

var unbalancedPolicies = map[string]xre.Unbalanced{
	"error":     xre.UnbalancedError,
	"skip":      xre.UnbalancedSkip,
	"skip-lazy": xre.UnbalancedSkipLazy,
}

// RecursiveCmd represents the recursive command
type RecursiveCmd struct {
	Text       string `arg:"" help:"Text, - for standard input"`
	Left       string `arg:"" help:"Left delimiter pattern"`
	Right      string `arg:"" help:"Right delimiter pattern"`
	Flags      string `short:"f" help:"Pattern flags, e.g. gi"`
	Escape     string `short:"e" help:"Character, that escapes delimiters"`
	Unbalanced string `help:"Policy for unbalanced delimiters" enum:"error,skip,skip-lazy" default:"error"`
	Segments   bool   `short:"s" help:"Show all segments with their positions"`
}

// Run executes the recursive command
func (c *RecursiveCmd) Run(ctx *Context) error {
	flags, err := patternFlags(ctx, c.Flags)
	if err != nil {
		return err
	}

	text, err := readText(c.Text)
	if err != nil {
		return err
	}

	opts := &xre.RecursiveOptions{
		Unbalanced: unbalancedPolicies[c.Unbalanced],
	}

	if c.Escape != "" {
		r, size := utf8.DecodeRuneInString(c.Escape)
		if size != len(c.Escape) || r == utf8.RuneError {
			return fmt.Errorf("%w: %s", ErrInvalidEscapeChar, util.Repr(c.Escape))
		}
		opts.EscapeChar = r
	}

	if !c.Segments {
		values, err := xre.MatchRecursive(text, c.Left, c.Right, flags, opts)
		if err != nil {
			return err
		}

		for _, v := range values {
			fmt.Fprintln(ctx.Out, v)
		}
		return nil
	}

	names := xre.ValueNames{Between: "between", Left: "left", Match: "match", Right: "right"}

	segs, err := xre.MatchRecursiveSegments(text, c.Left, c.Right, flags, opts, names)
	if err != nil {
		return err
	}

	for _, s := range segs {
		if ctx.Quiet {
			fmt.Fprintln(ctx.Out, s.Value)
			continue
		}

		segmentColor.Fprintf(ctx.Out, "%-7s %d-%d: ", s.Name, s.Start, s.End)
		fmt.Fprintln(ctx.Out, util.Repr(s.Value))
	}

	return nil
}
