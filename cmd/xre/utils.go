package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/magnetde/xre"
	"github.com/magnetde/xre/util"
)

var (
	headerColor  = color.New(color.FgBlue)
	valueColor   = color.New(color.FgGreen)
	unsetColor   = color.New(color.FgYellow)
	segmentColor = color.New(color.FgCyan)
)

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readText returns the text argument; "-" reads the standard input.
func readText(text string) (string, error) {
	if text != "-" {
		return text, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read standard input: %w", err)
	}

	return string(data), nil
}

// patternFlags parses the flags of a command and adds the configured flags.
func patternFlags(ctx *Context, s string) (xre.Flags, error) {
	flags, err := xre.ParseFlags(s)
	if err != nil {
		return 0, err
	}

	return flags | ctx.Config.PatternFlags(), nil
}

// compile compiles a pattern with the command flags.
func compile(ctx *Context, pattern, flags string) (*xre.Pattern, error) {
	f, err := patternFlags(ctx, flags)
	if err != nil {
		return nil, err
	}

	return xre.Compile(pattern, f)
}

// printPattern prints the native source and the groups of a pattern.
func printPattern(ctx *Context, p *xre.Pattern) {
	if ctx.Quiet {
		fmt.Fprintln(ctx.Out, p.Native())
		return
	}

	headerColor.Fprintf(ctx.Out, "pattern: ")
	fmt.Fprintln(ctx.Out, util.Repr(p.Source()))
	headerColor.Fprintf(ctx.Out, "flags:   ")
	fmt.Fprintf(ctx.Out, "%q\n", p.Flags().String())
	headerColor.Fprintf(ctx.Out, "native:  ")
	fmt.Fprintln(ctx.Out, util.Repr(p.Native()))

	for i, name := range p.SubexpNames()[1:] {
		if name != "" {
			fmt.Fprintf(ctx.Out, "  group %d: %s\n", i+1, name)
		} else {
			fmt.Fprintf(ctx.Out, "  group %d\n", i+1)
		}
	}
}

// printMatch prints the match and its groups.
func printMatch(ctx *Context, m *xre.Match, i int) {
	if ctx.Quiet {
		fmt.Fprintln(ctx.Out, m.Value())
		return
	}

	headerColor.Fprintf(ctx.Out, "match %d at %d-%d: ", i, m.Index(), m.End())
	valueColor.Fprintln(ctx.Out, util.Repr(m.Value()))

	for j, g := range m.Captures()[1:] {
		label := fmt.Sprint(j + 1)
		if g.Name != "" {
			label += " " + g.Name
		}

		fmt.Fprintf(ctx.Out, "  %s: ", label)
		if g.Matched {
			valueColor.Fprintln(ctx.Out, util.Repr(g.Value))
		} else {
			unsetColor.Fprintln(ctx.Out, "unmatched")
		}
	}
}
