package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/chazu/vci/manifest"
	"github.com/chazu/vci/report"
)

// handleReportsCommand processes the `vci reports` subcommand.
// Usage:
//
//	vci reports                # list saved sessions
//	vci reports show <id>      # print one session's tables
//	vci reports delete <id>
func (c *cli) handleReportsCommand(args []string) int {
	fs := flag.NewFlagSet("reports", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dbPath := fs.String("db", c.manifest.ReportPath(), "Report database (default [run].report from vci.toml)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *dbPath == "" {
		fmt.Fprintln(c.stderr, "Error: no report database; pass -db or set [run].report in vci.toml")
		return exitUsage
	}

	sub := "list"
	rest := fs.Args()
	if len(rest) > 0 {
		sub, rest = rest[0], rest[1:]
	}
	if sub != "list" && len(rest) != 1 {
		fmt.Fprintf(c.stderr, "Usage: vci reports [-db path] %s <session-id>\n", sub)
		return exitUsage
	}

	st, err := report.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer st.Close()
	ctx := context.Background()

	switch sub {
	case "list":
		sessions, err := st.List(ctx)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return exitFailure
		}
		if len(sessions) == 0 {
			fmt.Fprintln(c.stdout, "(no sessions)")
			return exitOK
		}
		tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSTARTED\tSTATUS")
		for _, s := range sessions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.StartedAt.Local().Format("2006-01-02 15:04:05"), status(s.Error))
		}
		tw.Flush()

	case "show":
		s, err := st.Load(ctx, rest[0])
		if err != nil {
			return c.reportLookupError(rest[0], err)
		}
		fmt.Fprintf(c.stdout, "Session:  %s\n", s.ID)
		fmt.Fprintf(c.stdout, "Name:     %s\n", s.Name)
		fmt.Fprintf(c.stdout, "Started:  %s\n", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(c.stdout, "Status:   %s\n\n", status(s.Error))
		printSavedTables(c.stdout, s)

	case "delete":
		if err := st.Delete(ctx, rest[0]); err != nil {
			return c.reportLookupError(rest[0], err)
		}
		fmt.Fprintf(c.stdout, "Deleted session %s\n", rest[0])

	default:
		fmt.Fprintf(c.stderr, "Unknown reports command: %s\n", sub)
		return exitUsage
	}
	return exitOK
}

func (c *cli) reportLookupError(id string, err error) int {
	if errors.Is(err, report.ErrSessionNotFound) {
		fmt.Fprintf(c.stderr, "No session %s\n", id)
	} else {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
	}
	return exitFailure
}

func status(runErr string) string {
	if runErr == "" {
		return "ok"
	}
	return runErr
}

// printSavedTables prints a saved session in the same layout as a live
// run's tables.
func printSavedTables(w io.Writer, s *report.Session) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(s.Variables) == 0 {
		fmt.Fprintln(w, "(no variables)")
	} else {
		fmt.Fprintln(tw, "NAME\tKIND\tVALUE")
		for _, v := range s.Variables {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.Kind, v.Value)
		}
		tw.Flush()
	}
	if len(s.Programs) == 0 {
		fmt.Fprintln(w, "(no programs)")
		return
	}
	fmt.Fprintln(tw, "PROGRAM\tLINE")
	for _, p := range s.Programs {
		fmt.Fprintf(tw, "%s\t%d\n", p.Name, p.Line)
	}
	tw.Flush()
}

// handleInitCommand processes the `vci init` subcommand.
// Usage:
//
//	vci init [-dir path] [name]
func (c *cli) handleInitCommand(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dir := fs.String("dir", ".", "Project directory")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	name := ""
	switch fs.NArg() {
	case 0:
		abs, err := filepath.Abs(*dir)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return exitFailure
		}
		name = filepath.Base(abs)
	case 1:
		name = fs.Arg(0)
	default:
		fmt.Fprintln(c.stderr, "Usage: vci init [-dir path] [name]")
		return exitUsage
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	m := manifest.Default(name)
	if err := manifest.Write(*dir, m); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	fmt.Fprintf(c.stdout, "Created %s\n", filepath.Join(*dir, manifest.FileName))

	entry := filepath.Join(*dir, m.Source.Entry)
	if _, err := os.Stat(entry); err == nil {
		return exitOK
	}
	if err := os.WriteFile(entry, []byte(sampleProgram), 0644); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	fmt.Fprintf(c.stdout, "Created %s\n", entry)
	return exitOK
}

const sampleProgram = `program hello;

var i = 0;
while (i < 3) {
    print i;
    i = i + 1;
}
print "done";
`
