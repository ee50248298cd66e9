package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/vci/compiler"
	"github.com/chazu/vci/pkg/bytecode"
	"github.com/chazu/vci/report"
	"github.com/chazu/vci/vm"
)

// runOptions control a single execution.
type runOptions struct {
	trace  bool
	table  bool
	report string
}

func (c *cli) runFlags(name string, opts *runOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.BoolVar(&opts.trace, "trace", c.manifest.Run.Trace, "Log every instruction at debug level")
	fs.BoolVar(&opts.table, "table", false, "Print the variable and program tables after the run")
	fs.StringVar(&opts.report, "report", c.manifest.ReportPath(), "Save a report of the run to this SQLite database")
	return fs
}

// handleRunCommand processes the `vci run` subcommand.
// Usage:
//
//	vci run                    # [source].entry from vci.toml
//	vci run -listing prog.vci  # print the VCI before running
func (c *cli) handleRunCommand(args []string) int {
	var opts runOptions
	fs := c.runFlags("run", &opts)
	showTokens := fs.Bool("tokens", false, "Print the token stream")
	showListing := fs.Bool("listing", c.manifest.Build.Listing, "Print the instruction listing")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	path, ok := c.sourcePath(fs.Args())
	if !ok {
		return exitUsage
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}

	res, err := compiler.NewCompiler().Compile(string(src))
	if err != nil {
		return c.reportCompileError(err)
	}

	if *showTokens {
		for _, tok := range res.Tokens {
			fmt.Fprintf(c.stdout, "%d:%d\t%s\n", tok.Pos.Line, tok.Pos.Column, tok)
		}
	}
	if *showListing {
		fmt.Fprint(c.stdout, bytecode.Listing(res.Code))
	}

	return c.execute(path, res.Code, opts)
}

// handleExecCommand processes the `vci exec` subcommand.
func (c *cli) handleExecCommand(args []string) int {
	var opts runOptions
	fs := c.runFlags("exec", &opts)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Usage: vci exec [-trace] [-table] [-report db] file.vcic")
		return exitUsage
	}

	chunk, err := bytecode.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	name := chunk.Name
	if name == "" {
		name = fs.Arg(0)
	}
	return c.execute(name, chunk.Tokens(), opts)
}

// handleBuildCommand processes the `vci build` subcommand.
// Usage:
//
//	vci build                  # [source].entry → [build].output
//	vci build -o out.vcic x.vci
func (c *cli) handleBuildCommand(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	output := fs.String("o", "", "Output chunk (default [build].output, or the source name with .vcic)")
	showListing := fs.Bool("listing", c.manifest.Build.Listing, "Print the disassembled chunk")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	path, ok := c.sourcePath(fs.Args())
	if !ok {
		return exitUsage
	}
	out := *output
	if out == "" {
		if fs.NArg() > 0 {
			out = strings.TrimSuffix(path, filepath.Ext(path)) + ".vcic"
		} else {
			out = c.manifest.OutputPath()
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	code, err := compiler.Compile(string(src))
	if err != nil {
		return c.reportCompileError(err)
	}

	chunk, err := bytecode.NewChunk(filepath.Base(path), code)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	if err := chunk.WriteFile(out); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	if *showListing {
		fmt.Fprint(c.stdout, chunk.Disassemble())
	}

	log.Infof("built %s (%d instructions, hash %x)", out, chunk.Len(), chunk.Hash[:8])
	return exitOK
}

// handleListCommand processes the `vci list` subcommand.
func (c *cli) handleListCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "Usage: vci list file.vci|file.vcic")
		return exitUsage
	}
	path := args[0]

	if filepath.Ext(path) == ".vcic" {
		chunk, err := bytecode.ReadFile(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return exitFailure
		}
		fmt.Fprint(c.stdout, chunk.Disassemble())
		return exitOK
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	code, err := compiler.Compile(string(src))
	if err != nil {
		return c.reportCompileError(err)
	}
	fmt.Fprintf(c.stdout, "; === %s ===\n", path)
	fmt.Fprint(c.stdout, bytecode.Listing(code))
	return exitOK
}

// sourcePath picks the file named on the command line, falling back to
// the manifest entry.
func (c *cli) sourcePath(args []string) (string, bool) {
	switch len(args) {
	case 0:
		return c.manifest.EntryPath(), true
	case 1:
		return args[0], true
	}
	fmt.Fprintln(c.stderr, "Error: expected at most one source file")
	return "", false
}

// execute runs code with fresh tables, then prints and saves whatever the
// options ask for. The tables are reported even when the run fails.
func (c *cli) execute(name string, code []compiler.Token, opts runOptions) int {
	exec := vm.NewExecutor(vm.NewVariableTable(), vm.NewProgramTable(), c.stdout)
	exec.SetInput(c.stdin)
	exec.Trace = opts.trace

	runErr := exec.Execute(code)
	if runErr != nil {
		fmt.Fprintf(c.stderr, "%v\n", runErr)
	}

	if opts.table {
		printTables(c.stdout, exec.Variables(), exec.Programs())
	}
	if opts.report != "" {
		if err := c.saveReport(opts.report, report.SessionFrom(name, exec.Variables(), exec.Programs(), runErr)); err != nil {
			fmt.Fprintf(c.stderr, "Error saving report: %v\n", err)
		}
	}

	var execErr *vm.ExecError
	switch {
	case runErr == nil:
		return exitOK
	case errors.As(runErr, &execErr):
		return exitRuntime
	}
	return exitFailure
}

func (c *cli) saveReport(path string, s *report.Session) error {
	st, err := report.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Save(context.Background(), s)
}
