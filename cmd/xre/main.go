// Command xre compiles and runs patterns of the extended regular expression dialect.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/magnetde/xre/config"
)

// Context represents the global context for commands
type Context struct {
	Config  *config.Config
	Verbose bool
	Quiet   bool
	Out     io.Writer
	Logger  *log.Logger
}

// CLI represents the command-line interface
var CLI struct {
	Config    string       `help:"Configuration file path" type:"path"`
	Verbose   bool         `help:"Log compiled patterns" short:"v"`
	Quiet     bool         `help:"Only print results" short:"q"`
	Compile   CompileCmd   `cmd:"" help:"Show the native pattern of a dialect pattern"`
	Exec      ExecCmd      `cmd:"" help:"Search a text for matches"`
	Replace   ReplaceCmd   `cmd:"" help:"Replace matches in a text"`
	Recursive RecursiveCmd `cmd:"" help:"Match balanced delimiters"`
	Chain     ChainCmd     `cmd:"" help:"Match a chain of patterns"`
	Union     UnionCmd     `cmd:"" help:"Combine patterns into one"`
	Build     BuildCmd     `cmd:"" help:"Build a pattern from named subpatterns"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("xre"),
		kong.Description("Extended regular expressions on top of regexp2."),
		kong.UsageOnError(),
	)

	if err := loadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var logger *log.Logger
	if CLI.Verbose {
		logger = log.New(os.Stderr, "xre: ", 0)
	}

	config.Apply(cfg, logger)

	appCtx := &Context{
		Config:  cfg,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Out:     os.Stdout,
		Logger:  logger,
	}

	err = ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
