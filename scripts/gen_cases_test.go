package main

import (
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/slots"
	"github.com/strager/slots/mdtest"
)

func TestGeneratedCasesPass(t *testing.T) {
	cases := []testCase{
		{literal: "a+(b+c)"},
		{literal: "*", opts: slots.ParseOptions{FrameType: slots.FrameFromImport}},
		{literal: `"hello`, opts: slots.ParseOptions{CursorPos: 6, HasCursor: true}},
	}
	markdown := generateMarkdown("Generated", cases)

	testCases, err := mdtest.ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 3)
	be.Equal(t, testCases[1].Frame, "fromimport")
	be.Equal(t, testCases[2].Cursor, 6)
	for _, tc := range testCases {
		be.Err(t, slots.CheckCase(tc), nil)
	}
}
