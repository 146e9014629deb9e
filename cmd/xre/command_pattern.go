package main

import (
	"fmt"

	"github.com/magnetde/xre"
)

// CompileCmd represents the compile command
type CompileCmd struct {
	Pattern string `arg:"" help:"Dialect pattern"`
	Flags   string `short:"f" help:"Pattern flags, e.g. gix"`
}

// Run executes the compile command
func (c *CompileCmd) Run(ctx *Context) error {
	p, err := compile(ctx, c.Pattern, c.Flags)
	if err != nil {
		return err
	}

	printPattern(ctx, p)
	return nil
}

// ExecCmd represents the exec command
type ExecCmd struct {
	Pattern string `arg:"" help:"Dialect pattern"`
	Text    string `arg:"" help:"Text to search, - for standard input"`
	Flags   string `short:"f" help:"Pattern flags, e.g. gix"`
	All     bool   `short:"a" help:"Show all matches"`
	Pos     int    `help:"Byte offset to start a single search at"`
}

// Run executes the exec command
func (c *ExecCmd) Run(ctx *Context) error {
	p, err := compile(ctx, c.Pattern, c.Flags)
	if err != nil {
		return err
	}

	text, err := readText(c.Text)
	if err != nil {
		return err
	}

	if c.All || p.Flags()&xre.FlagGlobal != 0 {
		n := 0
		err := xre.ForEach(text, p, func(m *xre.Match, i int) error {
			printMatch(ctx, m, i)
			n++
			return nil
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNoMatch
		}
		return nil
	}

	m, err := p.ExecAt(text, c.Pos, p.Flags()&xre.FlagSticky != 0)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNoMatch
	}

	printMatch(ctx, m, 0)
	return nil
}

// ReplaceCmd represents the replace command
type ReplaceCmd struct {
	Pattern     string `arg:"" help:"Dialect pattern"`
	Text        string `arg:"" help:"Text, - for standard input"`
	Replacement string `arg:"" help:"Replacement template with $1, $<name>, $& and $$"`
	Flags       string `short:"f" help:"Pattern flags, e.g. gix"`
	All         bool   `short:"a" help:"Replace all matches, even without flag g"`
}

// Run executes the replace command
func (c *ReplaceCmd) Run(ctx *Context) error {
	p, err := compile(ctx, c.Pattern, c.Flags)
	if err != nil {
		return err
	}

	text, err := readText(c.Text)
	if err != nil {
		return err
	}

	replace := xre.Replace
	if c.All {
		replace = xre.ReplaceAll
	}

	res, err := replace(text, p, xre.Template(c.Replacement))
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, res)
	return nil
}
