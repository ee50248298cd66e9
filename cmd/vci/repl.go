package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/chazu/vci/compiler"
	"github.com/chazu/vci/report"
	"github.com/chazu/vci/vm"
)

// repl is an interactive session. Each complete input is compiled and run
// on its own, but the compiler scope and both tables carry over.
type repl struct {
	c        *cli
	compiler *compiler.Compiler
	exec     *vm.Executor
}

func newREPL(c *cli) *repl {
	exec := vm.NewExecutor(vm.NewVariableTable(), vm.NewProgramTable(), c.stdout)
	exec.SetInput(c.stdin)
	exec.Trace = c.manifest.Run.Trace
	return &repl{c: c, compiler: compiler.NewCompiler(), exec: exec}
}

// handleREPL starts an interactive read-eval-print loop
func (c *cli) handleREPL() int {
	fmt.Fprintf(c.stdout, "VCI %s (type 'exit' to quit, ':help' for commands)\n\n", version)
	newREPL(c).loop()
	return exitOK
}

func (r *repl) loop() {
	var buf strings.Builder

	for {
		// Show prompt
		if buf.Len() == 0 {
			fmt.Fprint(r.c.stdout, ">> ")
		} else {
			fmt.Fprint(r.c.stdout, ".. ")
		}

		line, err := r.c.stdin.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		line = strings.TrimRight(line, "\r\n")

		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "exit" || trimmed == "quit" {
				break
			}
			if strings.HasPrefix(trimmed, ":") {
				if !r.command(trimmed) {
					break
				}
				continue
			}
		}

		// Empty line executes accumulated input
		if line == "" {
			if buf.Len() > 0 {
				r.eval(buf.String())
				buf.Reset()
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)

		// Run as soon as every block is closed
		if complete(buf.String()) {
			r.eval(buf.String())
			buf.Reset()
		}
	}

	fmt.Fprintln(r.c.stdout)
}

// complete reports whether src ends a statement outside any block.
func complete(src string) bool {
	tokens, err := compiler.Tokenize(src)
	if err != nil {
		// An unterminated string continues on the next line; anything else
		// is reported by eval.
		for _, d := range compiler.Diagnostics(err) {
			if d.Message == "unterminated string" {
				return false
			}
		}
		return true
	}

	depth := 0
	last := compiler.TokenEOF
	for _, tok := range tokens {
		switch tok.Type {
		case compiler.TokenLBrace:
			depth++
		case compiler.TokenRBrace:
			depth--
		case compiler.TokenEOF:
			continue
		}
		last = tok.Type
	}
	if depth > 0 {
		return false
	}
	return last == compiler.TokenSemicolon || last == compiler.TokenRBrace || last == compiler.TokenEOF
}

// eval compiles and runs one complete input.
func (r *repl) eval(src string) {
	res, err := r.compiler.Compile(src)
	if err != nil {
		r.c.reportCompileError(err)
		return
	}
	if err := r.exec.Execute(res.Code); err != nil {
		fmt.Fprintf(r.c.stderr, "%v\n", err)
	}
}

// command handles REPL meta-commands. It returns false to end the session.
func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.c.stdout, "REPL Commands:")
		fmt.Fprintln(r.c.stdout, "  :help, :h, :?     Show this help")
		fmt.Fprintln(r.c.stdout, "  :vars             Show the variable table")
		fmt.Fprintln(r.c.stdout, "  :programs         Show declared program names")
		fmt.Fprintln(r.c.stdout, "  :save             Save the session to the report database")
		fmt.Fprintln(r.c.stdout, "  :load <id>        Restore variables from a saved session")
		fmt.Fprintln(r.c.stdout, "  exit, quit, :q    Exit REPL")
		fmt.Fprintln(r.c.stdout, "An input runs once it ends with ';' or '}' outside any block;")
		fmt.Fprintln(r.c.stdout, "an empty line runs whatever has been typed so far.")
	case ":vars":
		printVariables(r.c.stdout, r.exec.Variables())
	case ":programs":
		printPrograms(r.c.stdout, r.exec.Programs())
	case ":save":
		r.save()
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(r.c.stderr, "Usage: :load <session-id>")
			break
		}
		r.load(fields[1])
	case ":q", ":quit":
		return false
	default:
		fmt.Fprintf(r.c.stdout, "Unknown command: %s (type :help for commands)\n", fields[0])
	}
	return true
}

func (r *repl) save() {
	path := r.c.manifest.ReportPath()
	if path == "" {
		fmt.Fprintln(r.c.stderr, "No report database configured ([run].report in vci.toml)")
		return
	}
	s := report.SessionFrom("repl", r.exec.Variables(), r.exec.Programs(), nil)
	if err := r.c.saveReport(path, s); err != nil {
		fmt.Fprintf(r.c.stderr, "Error saving session: %v\n", err)
		return
	}
	fmt.Fprintf(r.c.stdout, "Saved session %s\n", s.ID)
}

func (r *repl) load(id string) {
	path := r.c.manifest.ReportPath()
	if path == "" {
		fmt.Fprintln(r.c.stderr, "No report database configured ([run].report in vci.toml)")
		return
	}
	st, err := report.Open(path)
	if err != nil {
		fmt.Fprintf(r.c.stderr, "Error: %v\n", err)
		return
	}
	defer st.Close()

	s, err := st.Load(context.Background(), id)
	if errors.Is(err, report.ErrSessionNotFound) {
		fmt.Fprintf(r.c.stderr, "No session %s\n", id)
		return
	}
	if err != nil {
		fmt.Fprintf(r.c.stderr, "Error: %v\n", err)
		return
	}

	scope := r.compiler.Semantics()
	var restored []report.Variable
	for _, v := range s.Variables {
		if _, taken := scope.Programs()[v.Name]; taken {
			fmt.Fprintf(r.c.stderr, "Skipping %s: name used by a program\n", v.Name)
			continue
		}
		restored = append(restored, v)
	}
	names, err := (&report.Session{Variables: restored}).Restore(r.exec.Variables())
	if err != nil {
		fmt.Fprintf(r.c.stderr, "Error: %v\n", err)
		return
	}
	for _, name := range names {
		scope.Declare(name, 0)
	}
	fmt.Fprintf(r.c.stdout, "Restored %d variables from %s\n", len(names), s.ID)
}

// printTables writes the variable table followed by the program table.
func printTables(w io.Writer, vars *vm.VariableTable, programs *vm.ProgramTable) {
	printVariables(w, vars)
	printPrograms(w, programs)
}

func printVariables(w io.Writer, vars *vm.VariableTable) {
	if vars.Len() == 0 {
		fmt.Fprintln(w, "(no variables)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tVALUE")
	for _, name := range vars.Names() {
		v, _ := vars.Get(name)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, v.Kind(), v)
	}
	tw.Flush()
}

func printPrograms(w io.Writer, programs *vm.ProgramTable) {
	if programs.Len() == 0 {
		fmt.Fprintln(w, "(no programs)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROGRAM\tLINE")
	for _, d := range programs.Declarations() {
		fmt.Fprintf(tw, "%s\t%d\n", d.Name, d.Line)
	}
	tw.Flush()
}
