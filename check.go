package slots

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strager/slots/mdtest"
	"go.uber.org/multierr"
)

// CheckCase runs a Markdown test case and returns every failed assertion.
func CheckCase(tc mdtest.TestCase) error {
	if tc.InputType == mdtest.InputTypeProgram {
		return checkProgram(tc)
	}
	frame, err := ParseFrameType(tc.Frame)
	if err != nil {
		return err
	}
	opts := ParseOptions{
		FrameType:        frame,
		CursorPos:        tc.Cursor,
		HasCursor:        tc.HasCursor,
		InsideString:     tc.InputType == mdtest.InputTypeString,
		SkipStringEscape: tc.InputType == mdtest.InputTypeUI,
	}
	res := Parse(tc.Input, opts)
	cursor := -1
	if tc.HasCursor {
		cursor = res.NewCursor(tc.Cursor)
	}

	var errs error
	for _, a := range tc.Assertions {
		var got, want string
		switch a.Type {
		case mdtest.AssertionTypeState:
			got, want = State(res.Slots, cursor), a.Content
		case mdtest.AssertionTypeCode:
			got, want = Code(res.Slots), a.Content
		case mdtest.AssertionTypeDisplay:
			got, want = Display(res.Slots), a.Content
		case mdtest.AssertionTypeOffset:
			got, want = strconv.Itoa(res.CursorOffset), strings.TrimSpace(a.Content)
		case mdtest.AssertionTypeSExpr:
			node, err := mdtest.ParseSExpr(ToSExpr(res.Slots))
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("line %d: %w", a.Line, err))
				continue
			}
			got, want = node.String(), a.ParsedSExpr.String()
		default:
			errs = multierr.Append(errs, fmt.Errorf("line %d: %s assertion cannot check %s input", a.Line, a.Type, tc.InputType))
			continue
		}
		if got != want {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %s mismatch\n  got:  %s\n  want: %s", a.Line, a.Type, got, want))
		}
	}
	return errs
}

func checkProgram(tc mdtest.TestCase) error {
	tree, loadErr := LoadProgram(tc.Input)
	var errs error
	for _, a := range tc.Assertions {
		switch a.Type {
		case mdtest.AssertionTypeError:
			if loadErr == nil {
				errs = multierr.Append(errs, fmt.Errorf("line %d: expected error containing %q, got none", a.Line, a.Content))
			} else if !strings.Contains(loadErr.Error(), a.Content) {
				errs = multierr.Append(errs, fmt.Errorf("line %d: error mismatch\n  got:  %v\n  want: %s", a.Line, loadErr, a.Content))
			}
		case mdtest.AssertionTypeProgram:
			if loadErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("line %d: %w", a.Line, loadErr))
				continue
			}
			if got := strings.TrimSuffix(Program(tree), "\n"); got != a.Content {
				errs = multierr.Append(errs, fmt.Errorf("line %d: program mismatch\n  got:\n%s\n  want:\n%s", a.Line, got, a.Content))
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("line %d: %s assertion cannot check %s input", a.Line, a.Type, tc.InputType))
		}
	}
	return errs
}
