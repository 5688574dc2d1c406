// Package mdtest reads parser test cases written as Markdown documents.
//
// A test case starts at a heading "Test: <name>". It holds one input fence
// and one or more assertion fences. The input fence's info string may carry
// options after the language, e.g.
//
//	```slot-literal frame=fromimport cursor=3
package mdtest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType represents the type of input code fence
type InputType string

const (
	// A literal as typed in a slot.
	InputTypeLiteral InputType = "slot-literal"
	// A literal rebuilt by the editor, with quote placeholders.
	InputTypeUI InputType = "slot-ui"
	// The source of a string slot, quotes included.
	InputTypeString InputType = "slot-string"
	// Python source loaded as a frame tree.
	InputTypeProgram InputType = "slot-program"
)

// AssertionType represents the type of assertion code fence
type AssertionType string

const (
	AssertionTypeState   AssertionType = "state"
	AssertionTypeCode    AssertionType = "code"
	AssertionTypeDisplay AssertionType = "display"
	AssertionTypeSExpr   AssertionType = "sexpr"
	AssertionTypeOffset  AssertionType = "offset"
	AssertionTypeProgram AssertionType = "program"
	AssertionTypeError   AssertionType = "error"
)

// Assertion represents a single assertion of a test case
type Assertion struct {
	Type        AssertionType
	Content     string // the fence content without its final newline
	ParsedSExpr *Node  // set for sexpr assertions
	Line        int
}

// TestCase represents a complete test case extracted from Markdown
type TestCase struct {
	Name       string
	Line       int
	Input      string
	InputType  InputType
	Frame      string // frame=<type>
	Cursor     int    // cursor=<n>
	HasCursor  bool
	Assertions []Assertion

	hasInput bool
}

// ExtractTestCases parses a Markdown document and extracts all test cases
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)
	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			name, ok := strings.CutPrefix(headingText, "Test: ")
			if !ok {
				break
			}
			if current != nil {
				if err := validateTestCase(current); err != nil {
					return ast.WalkStop, err
				}
				testCases = append(testCases, *current)
			}
			current = &TestCase{Name: name, Line: getLineNumber(n, source)}

		case *ast.FencedCodeBlock:
			language, attrs := fenceInfo(n, source)
			content := extractCodeBlockContent(n, source)
			lineNum := getLineNumber(n, source)

			if current == nil {
				if language == "" {
					return ast.WalkContinue, nil
				}
				if isInputFence(language) || isAssertionFence(language) {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
				}
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", lineNum, language)
			}

			switch {
			case isInputFence(language):
				if current.hasInput {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, current.Name)
				}
				current.hasInput = true
				current.Input = strings.TrimSuffix(content, "\n")
				current.InputType = InputType(language)
				if err := applyAttributes(current, attrs); err != nil {
					return ast.WalkStop, fmt.Errorf("line %d: test '%s': %w", lineNum, current.Name, err)
				}
			case isAssertionFence(language):
				assertion := Assertion{
					Type:    AssertionType(language),
					Content: strings.TrimSuffix(content, "\n"),
					Line:    lineNum,
				}
				if assertion.Type == AssertionTypeSExpr {
					parsed, err := ParseSExpr(assertion.Content)
					if err != nil {
						return ast.WalkStop, fmt.Errorf("line %d: failed to parse sexpr assertion in test '%s': %w", lineNum, current.Name, err)
					}
					assertion.ParsedSExpr = parsed
				}
				current.Assertions = append(current.Assertions, assertion)
			case language != "":
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if current != nil {
		if err := validateTestCase(current); err != nil {
			return nil, err
		}
		testCases = append(testCases, *current)
	}
	return testCases, nil
}

// fenceInfo splits a fence's info string into its language and its
// key=value options.
func fenceInfo(n *ast.FencedCodeBlock, source []byte) (string, []string) {
	if n.Info == nil {
		return "", nil
	}
	fields := strings.Fields(string(n.Info.Segment.Value(source)))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func applyAttributes(tc *TestCase, attrs []string) error {
	for _, attr := range attrs {
		key, value, ok := strings.Cut(attr, "=")
		if !ok {
			return fmt.Errorf("malformed option %q", attr)
		}
		switch key {
		case "frame":
			tc.Frame = value
		case "cursor":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid cursor %q", value)
			}
			tc.Cursor, tc.HasCursor = n, true
		default:
			return fmt.Errorf("unknown option %q", key)
		}
	}
	return nil
}

// extractTextFromNode extracts plain text content from a markdown node
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// extractCodeBlockContent extracts the content from a fenced code block
func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func isInputFence(language string) bool {
	switch InputType(language) {
	case InputTypeLiteral, InputTypeUI, InputTypeString, InputTypeProgram:
		return true
	}
	return false
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeState, AssertionTypeCode, AssertionTypeDisplay, AssertionTypeSExpr,
		AssertionTypeOffset, AssertionTypeProgram, AssertionTypeError:
		return true
	}
	return false
}

// validateTestCase ensures a test case has an input and at least one
// assertion that applies to it.
func validateTestCase(tc *TestCase) error {
	if !tc.hasInput {
		return fmt.Errorf("line %d: test '%s' has no input fence", tc.Line, tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("line %d: test '%s' has no assertion fences", tc.Line, tc.Name)
	}
	for _, a := range tc.Assertions {
		program := a.Type == AssertionTypeProgram || a.Type == AssertionTypeError
		if program != (tc.InputType == InputTypeProgram) {
			return fmt.Errorf("line %d: %s assertion cannot check %s input in test '%s'", a.Line, a.Type, tc.InputType, tc.Name)
		}
	}
	return nil
}

// getLineNumber calculates the line number of a given AST node
func getLineNumber(node ast.Node, source []byte) int {
	var start int
	switch {
	case node.Lines().Len() > 0:
		start = node.Lines().At(0).Start
	case node.Kind() == ast.KindFencedCodeBlock && node.(*ast.FencedCodeBlock).Info != nil:
		start = node.(*ast.FencedCodeBlock).Info.Segment.Start
	default:
		return 1
	}
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
