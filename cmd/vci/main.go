// VCI CLI - compiles and runs VCI programs
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/chazu/vci/compiler"
	"github.com/chazu/vci/manifest"
	"github.com/chazu/vci/server"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

var log = commonlog.GetLogger("vci.cli")

// cli carries the streams and project configuration shared by every
// command.
type cli struct {
	stdin    *bufio.Reader
	stdout   io.Writer
	stderr   io.Writer
	manifest *manifest.Manifest
}

func main() {
	verbosity := flag.Int("v", -1, "Log verbosity (0 = errors only; default from vci.toml)")
	logFile := flag.String("log", "", "Log file (default from vci.toml, else stderr)")

	flag.Usage = usage
	flag.Parse()

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(exitFailure)
	}
	if m == nil {
		m = manifest.Default(defaultProjectName())
	}

	configureLogging(m, *verbosity, *logFile)

	c := &cli{
		stdin:    bufio.NewReader(os.Stdin),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		manifest: m,
	}
	os.Exit(c.dispatch(flag.Args()))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: vci [options] [command] [arguments]\n\n")
	fmt.Fprintf(os.Stderr, "Compiles VCI source into an instruction sequence and runs it.\n")
	fmt.Fprintf(os.Stderr, "With no command, starts the interactive shell.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  run [-trace] [-tokens] [-listing] [-table] [-report db] [file]\n")
	fmt.Fprintf(os.Stderr, "                         Compile and run a program (default: [source].entry)\n")
	fmt.Fprintf(os.Stderr, "  build [-o out] [-listing] [file]\n")
	fmt.Fprintf(os.Stderr, "                         Compile a program to a .vcic chunk\n")
	fmt.Fprintf(os.Stderr, "  exec [-trace] [-table] [-report db] file.vcic\n")
	fmt.Fprintf(os.Stderr, "                         Run a compiled chunk\n")
	fmt.Fprintf(os.Stderr, "  list file              Print the instruction listing of a .vci or .vcic file\n")
	fmt.Fprintf(os.Stderr, "  reports [-db path] [list|show id|delete id]\n")
	fmt.Fprintf(os.Stderr, "                         Inspect saved execution reports\n")
	fmt.Fprintf(os.Stderr, "  init [name]            Create vci.toml and main.vci in the current directory\n")
	fmt.Fprintf(os.Stderr, "  lsp                    Start the language server on stdio\n")
	fmt.Fprintf(os.Stderr, "  version                Print the version\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  vci                          # Start the shell\n")
	fmt.Fprintf(os.Stderr, "  vci run -listing loop.vci    # Show the VCI, then run it\n")
	fmt.Fprintf(os.Stderr, "  vci build -o loop.vcic loop.vci && vci exec loop.vcic\n")
}

// configureLogging applies command-line logging options over the
// manifest's [log] section.
func configureLogging(m *manifest.Manifest, verbosity int, logFile string) {
	if verbosity < 0 {
		verbosity = m.Log.Verbosity
	}
	path := m.LogFile()
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbosity, path)
}

func defaultProjectName() string {
	wd, err := os.Getwd()
	if err != nil {
		return "vci"
	}
	return filepath.Base(wd)
}

// dispatch runs the command named by args[0] and returns the exit code.
func (c *cli) dispatch(args []string) int {
	if len(args) == 0 {
		return c.handleREPL()
	}

	switch args[0] {
	case "run":
		return c.handleRunCommand(args[1:])
	case "build":
		return c.handleBuildCommand(args[1:])
	case "exec":
		return c.handleExecCommand(args[1:])
	case "list":
		return c.handleListCommand(args[1:])
	case "reports":
		return c.handleReportsCommand(args[1:])
	case "init":
		return c.handleInitCommand(args[1:])
	case "lsp":
		if err := server.NewLSP(version).Run(); err != nil {
			fmt.Fprintf(c.stderr, "Server error: %v\n", err)
			return exitFailure
		}
		return exitOK
	case "version":
		fmt.Fprintf(c.stdout, "vci %s\n", version)
		return exitOK
	case "help", "-h", "--help":
		usage()
		return exitOK
	}

	fmt.Fprintf(c.stderr, "Unknown command: %s (run 'vci help' for usage)\n", args[0])
	return exitUsage
}

// reportCompileError prints every diagnostic carried by err.
func (c *cli) reportCompileError(err error) int {
	diags := compiler.Diagnostics(err)
	if len(diags) == 0 {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitCompile
	}
	for _, d := range diags {
		fmt.Fprintln(c.stderr, d.String())
	}
	return exitCompile
}
