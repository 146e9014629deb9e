package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magnetde/xre"
	"github.com/magnetde/xre/util"
)

// ChainCmd represents the chain command
type ChainCmd struct {
	Text   string   `arg:"" help:"Text, - for standard input"`
	Stages []string `arg:"" help:"Stages of the form pattern or pattern::selector, where the selector is a group number or name"`
	Flags  string   `short:"f" help:"Flags of all stage patterns"`
}

// Run executes the chain command
func (c *ChainCmd) Run(ctx *Context) error {
	text, err := readText(c.Text)
	if err != nil {
		return err
	}

	stages := make([]xre.ChainStage, len(c.Stages))
	for i, s := range c.Stages {
		stages[i], err = parseStage(ctx, s, c.Flags)
		if err != nil {
			return fmt.Errorf("stage %d: %w", i+1, err)
		}
	}

	values, err := xre.MatchChain(text, stages)
	if err != nil {
		return err
	}

	for _, v := range values {
		fmt.Fprintln(ctx.Out, v)
	}

	return nil
}

// parseStage parses a chain stage. The selector follows the last "::".
func parseStage(ctx *Context, s, flags string) (xre.ChainStage, error) {
	pattern, selector := s, ""
	if i := strings.LastIndex(s, "::"); i >= 0 {
		pattern, selector = s[:i], s[i+2:]
	}

	p, err := compile(ctx, pattern, flags)
	if err != nil {
		return xre.ChainStage{}, err
	}

	stage := xre.ChainStage{Pattern: p}

	switch {
	case selector == "":
	case util.IsDigit(selector[0]):
		n, err := strconv.Atoi(selector)
		if err != nil {
			return xre.ChainStage{}, fmt.Errorf("%w: %s", ErrInvalidSelector, util.Repr(selector))
		}
		stage.Selector = xre.SelectGroup(n)
	default:
		stage.Selector = xre.SelectName(selector)
	}

	return stage, nil
}

// UnionCmd represents the union command
type UnionCmd struct {
	Parts   []string `arg:"" help:"Patterns to combine"`
	Flags   string   `short:"f" help:"Flags of the combined pattern"`
	Literal bool     `short:"l" help:"Treat the parts as literal strings"`
	And     bool     `help:"Concatenate the parts instead of alternating them"`
}

// Run executes the union command
func (c *UnionCmd) Run(ctx *Context) error {
	flags, err := patternFlags(ctx, c.Flags)
	if err != nil {
		return err
	}

	parts := make([]xre.Part, len(c.Parts))
	for i, s := range c.Parts {
		if c.Literal {
			parts[i] = xre.LiteralPart(s)
			continue
		}

		p, err := xre.Compile(s, flags.Program())
		if err != nil {
			return fmt.Errorf("part %d: %w", i+1, err)
		}
		parts[i] = xre.PatternPart(p)
	}

	conj := xre.Or
	if c.And {
		conj = xre.And
	}

	p, err := xre.Union(parts, flags, conj)
	if err != nil {
		return err
	}

	printPattern(ctx, p)
	return nil
}

// BuildCmd represents the build command
type BuildCmd struct {
	Template string   `arg:"" help:"Template with {{name}} placeholders"`
	Sub      []string `short:"s" help:"Additional subpatterns of the form name=pattern"`
	Flags    string   `short:"f" help:"Pattern flags, e.g. gix"`
	Test     string   `short:"t" help:"Search the text with the built pattern"`
}

// Run executes the build command
func (c *BuildCmd) Run(ctx *Context) error {
	flags, err := patternFlags(ctx, c.Flags)
	if err != nil {
		return err
	}

	subs, err := ctx.Config.Resolve()
	if err != nil {
		return err
	}

	for _, s := range c.Sub {
		name, pattern, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return fmt.Errorf("%w: %s", ErrInvalidSubpattern, util.Repr(s))
		}
		subs[name] = xre.Fragment(pattern)
	}

	p, err := xre.Build(c.Template, subs, flags)
	if err != nil {
		return err
	}

	printPattern(ctx, p)

	if c.Test == "" {
		return nil
	}

	m, err := p.Exec(c.Test)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNoMatch
	}

	printMatch(ctx, m, 0)
	return nil
}
