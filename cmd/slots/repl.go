package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/strager/slots"
	"github.com/strager/slots/internal/log"
	"golang.org/x/term"
)

const historyFile = ".slots_history"

// replState is what the REPL keeps between lines.
type replState struct {
	opts  slots.ParseOptions
	sexpr bool
}

func replCommand(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	pf := addParseFlags(fs)
	logLevel := addLogLevelFlag(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slots repl [-frame type] [-ui] [-string] [-sexpr]\n")
		fmt.Fprintf(os.Stderr, "Parse literals interactively, one per line\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  :frame <type>   Set the frame type\n")
		fmt.Fprintf(os.Stderr, "  :cursor <n>     Track the cursor at n (-1 for none)\n")
		fmt.Fprintf(os.Stderr, "  :sexpr          Toggle s-expression output\n")
		fmt.Fprintf(os.Stderr, "  :quit           Exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	log.SetLevel(*logLevel)

	opts, err := pf.options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st := &replState{opts: opts, sexpr: *pf.sexpr}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if st.handle(scanner.Text()) {
				return
			}
		}
		return
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(st.prompt())
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return
		}
		if err != nil {
			log.Default.Errorf("repl: %v", err)
			return
		}
		ln.AppendHistory(line)
		if st.handle(line) {
			return
		}
	}
}

func (st *replState) prompt() string {
	if st.opts.FrameType == "" {
		return "slots> "
	}
	return fmt.Sprintf("slots[%s]> ", st.opts.FrameType)
}

// handle runs one line and reports whether the REPL should exit.
func (st *replState) handle(line string) bool {
	if cmd, ok := strings.CutPrefix(line, ":"); ok {
		name, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "quit", "q":
			return true
		case "frame":
			t, err := slots.ParseFrameType(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return false
			}
			st.opts.FrameType = t
		case "cursor":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid cursor %q\n", arg)
				return false
			}
			st.opts.CursorPos, st.opts.HasCursor = n, n >= 0
		case "sexpr":
			st.sexpr = !st.sexpr
		default:
			fmt.Fprintf(os.Stderr, "unknown command :%s. Type :quit to exit.\n", name)
		}
		return false
	}
	printResult(slots.Parse(line, st.opts), st.opts, st.sexpr)
	return false
}
