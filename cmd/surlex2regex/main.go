/*
This command prints the regular expression of a surlex pattern.

	surlex2regex [flags] <surlex> [subject]

With a subject, it matches the beginning of the subject against the pattern
and prints the captured values, one name=value line per capture, sorted by
name. When the subject does not match, it exits with 1.

For the list of command line options, run:

	surlex2regex -help
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/config"
	"github.com/zalando/surlex/logging"
	"github.com/zalando/surlex/macros"
)

const (
	exitOK = iota
	exitNoMatch
	exitUsage
	exitError
)

const usageText = "usage: %s [flags] <surlex> [subject]\n"

func printAST(w io.Writer, nodes []surlex.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch nt := n.(type) {
		case *surlex.TextNode:
			fmt.Fprintf(w, "%stext %q\n", indent, nt.Token)
		case *surlex.WildcardNode:
			fmt.Fprintf(w, "%swildcard\n", indent)
		case *surlex.TagNode:
			fmt.Fprintf(w, "%stag %q\n", indent, nt.Name)
		case *surlex.RegexTagNode:
			fmt.Fprintf(w, "%sregex %q %q\n", indent, nt.Name, nt.Pattern)
		case *surlex.MacroTagNode:
			fmt.Fprintf(w, "%smacro %q %q\n", indent, nt.Name, nt.Macro)
		case *surlex.OptionalNode:
			fmt.Fprintf(w, "%soptional\n", indent)
			printAST(w, nt.Children, depth+1)
		}
	}
}

func printSorted(w io.Writer, m map[string]string) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s=%s\n", name, m[name])
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	progname := "surlex2regex"
	if len(args) > 0 {
		progname, args = args[0], args[1:]
	}

	cfg := config.NewConfig()
	cfg.SetOutput(stderr)
	if err := cfg.ParseArgs(progname, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitUsage
		}

		fmt.Fprintln(stderr, err)
		fmt.Fprintf(stderr, usageText, progname)
		return exitUsage
	}

	lo := cfg.ToLoggingOptions()
	lo.ApplicationLogOutput = stderr
	logging.Init(lo)

	for _, f := range cfg.MacrosFiles.Values() {
		if err := macros.RegisterFile(f); err != nil {
			log.Errorf("Failed to register macros from %s: %v", f, err)
			return exitError
		}

		log.Debugf("Registered macros from %s", f)
	}

	sx := surlex.NewWithOptions(cfg.Pattern, cfg.ToSurlexOptions())
	switch {
	case cfg.AST:
		nodes, err := sx.Nodes()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}

		printAST(stdout, nodes, 0)
	case cfg.CaptureMacros:
		cm, err := sx.CaptureMacros()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}

		printSorted(stdout, cm)
	default:
		rx, err := sx.Translate()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}

		fmt.Fprintln(stdout, rx)
	}

	if !cfg.HasSubject {
		return exitOK
	}

	captures, ok, err := sx.Match(cfg.Subject)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	if !ok {
		log.Debugf("%q does not match %q", cfg.Subject, cfg.Pattern)
		return exitNoMatch
	}

	printSorted(stdout, captures)
	return exitOK
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
