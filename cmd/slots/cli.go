package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	ds "github.com/bmatcuk/doublestar/v4"
	"github.com/strager/slots"
	"github.com/strager/slots/internal/log"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `slots - Slot structure parser for a frame-based Python editor

Usage:
    slots <command> [arguments]

Commands:
    parse <literal>   Parse a slot literal and show its structure
    check <file.md>   Run the parser test cases of Markdown files (** patterns allowed)
    load <file.py>    Load a Python program as frames and print it back
    repl              Parse literals interactively
    help              Show this help message

Examples:
    slots parse 'a+(b+c)'
    slots parse -frame fromimport -cursor 6 'from x import *'
    slots check test/strings_test.md
    slots load -v program.py

Use "slots <command> -h" for more information about a command.
`)
}

// parseFlags are the flags shared by the commands that parse literals.
type parseFlags struct {
	frame    *string
	cursor   *int
	ui       *bool
	inString *bool
	sexpr    *bool
}

func addParseFlags(fs *flag.FlagSet) parseFlags {
	return parseFlags{
		frame:    fs.String("frame", "", "Frame type of the slot (e.g. if, import, fromimport)"),
		cursor:   fs.Int("cursor", -1, "Cursor position in the literal, or -1 for none"),
		ui:       fs.Bool("ui", false, "Literal was rebuilt by the editor and uses quote placeholders"),
		inString: fs.Bool("string", false, "Literal is the source of a string slot, quotes included"),
		sexpr:    fs.Bool("sexpr", false, "Print the structure as an s-expression"),
	}
}

func (pf parseFlags) options() (slots.ParseOptions, error) {
	frame, err := slots.ParseFrameType(*pf.frame)
	if err != nil {
		return slots.ParseOptions{}, err
	}
	return slots.ParseOptions{
		FrameType:        frame,
		CursorPos:        *pf.cursor,
		HasCursor:        *pf.cursor >= 0,
		InsideString:     *pf.inString,
		SkipStringEscape: *pf.ui,
	}, nil
}

func addLogLevelFlag(fs *flag.FlagSet) *string {
	return fs.String("log-level", log.LevelInfo, "Log level: debug, info, warn, error")
}

func printResult(res slots.Result, opts slots.ParseOptions, sexpr bool) {
	cursor := -1
	if opts.HasCursor {
		cursor = res.NewCursor(opts.CursorPos)
	}
	if sexpr {
		fmt.Println(slots.ToSExpr(res.Slots))
	}
	fmt.Printf("state:  %s\n", slots.State(res.Slots, cursor))
	fmt.Printf("code:   %s\n", slots.Code(res.Slots))
	if opts.HasCursor {
		fmt.Printf("cursor: %d (%+d)\n", cursor, res.CursorOffset)
	}
}

func parseCommand(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	pf := addParseFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slots parse [-frame type] [-cursor n] [-ui] [-string] [-sexpr] <literal>\n")
		fmt.Fprintf(os.Stderr, "Parse a slot literal and show its structure\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one literal argument\n")
		fs.Usage()
		os.Exit(1)
	}

	opts, err := pf.options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printResult(slots.Parse(fs.Arg(0), opts), opts, *pf.sexpr)
}

// expandPatterns expands "**" glob patterns. An argument matching nothing
// is kept so reading it reports the missing file.
func expandPatterns(args []string) ([]string, error) {
	var filenames []string
	for _, arg := range args {
		matches, err := ds.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}
		filenames = append(filenames, matches...)
	}
	return filenames, nil
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "List every test case")
	jobs := fs.Int("j", 0, "Number of cases checked in parallel (0 = GOMAXPROCS)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slots check [-v] [-j N] <file.md|pattern>...\n")
		fmt.Fprintf(os.Stderr, "Run the parser test cases of Markdown files\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: expected at least one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filenames, err := expandPatterns(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	results, err := runCases(filenames, *jobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	passed, failed := 0, 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s:%d: %s\n%s\n", r.file, r.tc.Line, r.tc.Name, indent(r.err.Error()))
			continue
		}
		passed++
		if *verbose {
			fmt.Printf("ok   %s:%d: %s\n", r.file, r.tc.Line, r.tc.Name)
		}
	}

	fmt.Printf("%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

func loadCommand(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Log every frame as it is loaded")
	logLevel := addLogLevelFlag(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slots load [-v] [-log-level level] <file.py>\n")
		fmt.Fprintf(os.Stderr, "Load a Python program as frames and print it back\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(*logLevel)
	if *verbose {
		log.SetLevel(log.LevelDebug)
	}

	filename := fs.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}

	session := slots.NewSession()
	if err := session.LoadProgram(string(source)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
		os.Exit(1)
	}
	if *verbose {
		_ = session.Tree().Walk(func(f *slots.Frame, depth int) error {
			labels := make([]string, len(f.Labels))
			for i, l := range f.Labels {
				labels[i] = slots.State(l, -1)
			}
			log.Default.Debugf("frame %d %s depth %d: %s", f.ID, f.Type, depth, strings.Join(labels, " | "))
			return nil
		})
	}
	fmt.Print(session.Program())
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "parse":
		parseCommand(args)
	case "check":
		checkCommand(args)
	case "load":
		loadCommand(args)
	case "repl":
		replCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
