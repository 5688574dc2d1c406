// gen_cases writes Markdown parser test cases for the literals read from
// stdin, one per line, recording what the parser currently produces. Review
// the output before adding it under test/.
//
//	go run ./scripts -frame fromimport -title Imports < literals.txt > test/imports_test.md
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/strager/slots"
)

type testCase struct {
	literal string
	opts    slots.ParseOptions
}

func (tc testCase) info() string {
	info := "slot-literal"
	if tc.opts.FrameType != "" {
		info += " frame=" + string(tc.opts.FrameType)
	}
	if tc.opts.HasCursor {
		info += fmt.Sprintf(" cursor=%d", tc.opts.CursorPos)
	}
	return info
}

func generateMarkdown(title string, cases []testCase) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", title)
	for _, tc := range cases {
		res := slots.Parse(tc.literal, tc.opts)
		cursor := -1
		if tc.opts.HasCursor {
			cursor = res.NewCursor(tc.opts.CursorPos)
		}
		fmt.Fprintf(&sb, "\n## Test: %s\n", tc.literal)
		fmt.Fprintf(&sb, "```%s\n%s\n```\n", tc.info(), tc.literal)
		fmt.Fprintf(&sb, "```state\n%s\n```\n", slots.State(res.Slots, cursor))
		fmt.Fprintf(&sb, "```code\n%s\n```\n", slots.Code(res.Slots))
		if tc.opts.HasCursor {
			fmt.Fprintf(&sb, "```offset\n%d\n```\n", res.CursorOffset)
		}
	}
	return sb.String()
}

func main() {
	frame := flag.String("frame", "", "Frame type of every literal")
	cursor := flag.Int("cursor", -1, "Cursor position in every literal, or -1 for none; -2 puts it at the end")
	title := flag.String("title", "Generated cases", "Document heading")
	flag.Parse()

	frameType, err := slots.ParseFrameType(*frame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var cases []testCase
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		literal := scanner.Text()
		if strings.TrimSpace(literal) == "" {
			continue
		}
		opts := slots.ParseOptions{FrameType: frameType}
		switch {
		case *cursor == -2:
			opts.CursorPos, opts.HasCursor = len([]rune(literal)), true
		case *cursor >= 0:
			opts.CursorPos, opts.HasCursor = *cursor, true
		}
		cases = append(cases, testCase{literal: literal, opts: opts})
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading literals: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(generateMarkdown(*title, cases))
}
