package slots

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func parseState(literal string, frame FrameType) string {
	return State(Parse(literal, ParseOptions{FrameType: frame}).Slots, -1)
}

func parseCursor(literal string, cursor int) string {
	res := Parse(literal, ParseOptions{CursorPos: cursor, HasCursor: true})
	return State(res.Slots, res.NewCursor(cursor))
}

func TestParseStructure(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		frame   FrameType
		want    string
	}{
		{"empty", "", "", "{}"},
		{"plain field", "abc", "", "{abc}"},
		{"binary operator", "a+b", "", "{a}+{b}"},
		{"spaces trimmed", "  a  +  b", "", "{a}+{b}"},
		{"longest symbol wins", "x**2//3", "", "{x}**{2}//{3}"},
		{"comparison chain", "a<=b>=c!=d", "", "{a}<={b}>={c}!={d}"},
		{"bracket before operators", "a+(b+c)", "", "{a}+{}_({b}+{c})_{}"},
		{"nested brackets", "f(g(1))", "", "{f}_({g}_({1})_{})_{}"},
		{"mixed brackets", "[1, {2}]", "", "{}_[{1},{}_{{2}}_{}]_{}"},
		{"unterminated bracket", "f(a", "", "{f}_({a})_{}"},
		{"string beats operators", `"a+b"`, "", "{}_“a+b”_{}"},
		{"single quoted string", `'x'`, "", "{}_‘x’_{}"},
		{"brackets inside string", `"(]"`, "", "{}_“(]”_{}"},
		{"strings and brackets", `"hello"+"world"+(5*6)`, "", "{}_“hello”_{}+{}_“world”_{}+{}_({5}*{6})_{}"},
		{"keyword operator", "a and b", "", "{a}and{b}"},
		{"keyword inside identifier", "classify and x", "", "{classify}and{x}"},
		{"keyword after bracket and string", `a() and "b" and c`, "", "{a}_({})_{}and{}_“b”_{}and{c}"},
		{"two word keyword", "x is not None", "", "{x}is not{None}"},
		{"not in", "a not in b", "", "{a}not in{b}"},
		{"leading keyword", "not a", "", "{}not{a}"},
		{"sign after operator", "3+-5", "", "{3}+{-5}"},
		{"sign after same operator", "3--5", "", "{3}-{-5}"},
		{"repeated signs", "--1--2--3", "", "{}-{-1}-{-2}-{-3}"},
		{"signed operands", "+1++2", "", "{+1}+{+2}"},
		{"assignment of negative", "x = -1", "", "{x}={-1}"},
		{"exponent sign", "1e-6", "", "{1e-6}"},
		{"exponent times", "1e-6*x", "", "{1e-6}*{x}"},
		{"decimal point", "1.5", "", "{1.5}"},
		{"second point splits", "1.0.3", "", "{1}.{0.3}"},
		{"double point", "1..0", "", "{1}.{}.{0}"},
		{"dangling exponent", "+1.0e", "", "{}+{1}.{0e}"},
		{"attribute after digit word", "x1.a", "", "{x1}.{a}"},
		{"hex and binary", "0x1F | 0b10", "", "{0x1F}|{0b10}"},
		{"dead bracket", "a)+b", "", "{a}+{b}"},
		{"star is operator", "*", "", "{}*{}"},
		{"star in from-import", "*", FrameFromImport, "{*}"},
		{"power in from-import", "a**b", FrameFromImport, "{a**b}"},
		{"as outside import", "a as b", "", "{a as b}"},
		{"as in import", "numpy as np", FrameImport, "{numpy}as{np}"},
		{"as inside identifier", "classify as c", FrameImport, "{classify}as{c}"},
		{"comma separated", "a, b", FrameFromImport, "{a},{b}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, parseState(tt.literal, tt.frame), tt.want)
		})
	}
}

func TestParseBracketFields(t *testing.T) {
	s := Parse("a+(b+c)", ParseOptions{}).Slots
	be.Equal(t, len(s.Fields), 4)
	be.Equal(t, len(s.Operators), 3)
	be.Equal(t, s.Operators[0].Code, "+")
	be.Equal(t, s.Operators[1].Code, "")
	be.Equal(t, s.Operators[2].Code, "")
	b, ok := s.Fields[2].(*BracketedField)
	be.True(t, ok)
	be.Equal(t, b.OpeningBracket, "(")
	be.Equal(t, b.ClosingBracket(), ")")
	be.Equal(t, Code(b.Slots), "b+c")
	last, ok := s.Fields[3].(*BaseSlot)
	be.True(t, ok)
	be.Equal(t, last.Code, "")
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		code    string
		quote   string
	}{
		{"operators stay", `"a+b"`, "a+b", `"`},
		{"unterminated", `"hello`, "hello", `"`},
		{"escaped quote", `"a\"b"`, `a\"b`, `"`},
		{"other quote", `'it"s'`, `it"s`, "'"},
		{"odd trailing backslash", `"a\`, `a\\`, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Parse(tt.literal, ParseOptions{}).Slots
			be.Equal(t, len(s.Fields), 3)
			str, ok := s.Fields[1].(*StringSlot)
			be.True(t, ok)
			be.Equal(t, str.Code, tt.code)
			be.Equal(t, str.Quote, tt.quote)
		})
	}
}

func TestParseInsideString(t *testing.T) {
	res := Parse(`'a+b'`, ParseOptions{InsideString: true})
	be.Equal(t, State(res.Slots, -1), "{a}+{b}")

	res = Parse(`"say \"hi\""`, ParseOptions{InsideString: true})
	be.Equal(t, State(res.Slots, -1), "{say }_“hi”_{}")
}

func TestParseSkipStringEscape(t *testing.T) {
	literal := "x=" + DoubleQuotePlaceholder + `a\"b` + DoubleQuotePlaceholder
	s := Parse(literal, ParseOptions{SkipStringEscape: true}).Slots
	be.Equal(t, State(s, -1), `{x}={}_“a\"b”_{}`)

	// A backslash before a placeholder is not an escape.
	literal = SingleQuotePlaceholder + `a\` + SingleQuotePlaceholder
	s = Parse(literal, ParseOptions{SkipStringEscape: true}).Slots
	str := s.Fields[1].(*StringSlot)
	be.Equal(t, str.Code, `a\`)
}

func TestParseCursor(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		cursor  int
		want    string
	}{
		{"end of field", "ab", 2, "{ab$}"},
		{"after operator", "a+b", 2, "{a}+{$b}"},
		{"unterminated string keeps caret inside", `"hello`, 6, "{}_“hello$”_{}"},
		{"spaces before cursor removed", "a  +  b", 7, "{a}+{b$}"},
		{"cursor inside untrimmed field", "a b+c", 1, "{a$ b}+{c}"},
		{"keyword spaces removed", "a and b", 7, "{a}and{b$}"},
		{"dead bracket before cursor", "a)+b", 4, "{a}+{b$}"},
		{"inside bracket", "f(x", 3, "{f}_({x$})_{}"},
		{"cursor past end clamps", "ab", 10, "{ab$}"},
		{"cursor before start clamps", "ab", -3, "{$ab}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, parseCursor(tt.literal, tt.cursor), tt.want)
		})
	}
}

func TestParseCursorOffset(t *testing.T) {
	for _, cursor := range []int{2, 3, 4} {
		res := Parse("a)+b", ParseOptions{CursorPos: cursor, HasCursor: true})
		be.Equal(t, res.CursorOffset, -1)
	}
	res := Parse("a)+b", ParseOptions{CursorPos: 1, HasCursor: true})
	be.Equal(t, res.CursorOffset, 0)

	// An escape backslash inserted before the cursor moves it right.
	literal := DoubleQuotePlaceholder + `a"b` + DoubleQuotePlaceholder
	res = Parse(literal, ParseOptions{CursorPos: 5, HasCursor: true, SkipStringEscape: true})
	be.Equal(t, res.CursorOffset, 1)
	be.Equal(t, State(res.Slots, res.NewCursor(5)), `{}_“a\"b”_{$}`)

	// Out of range positions are relative to the caller's position.
	res = Parse("ab", ParseOptions{CursorPos: 10, HasCursor: true})
	be.Equal(t, res.CursorOffset, -8)
	be.Equal(t, res.NewCursor(10), 2)
}

func TestParseNoCursorOffset(t *testing.T) {
	res := Parse("a  +  b", ParseOptions{CursorPos: 7})
	be.Equal(t, res.CursorOffset, 0)
}

func TestParsePlaceholderSource(t *testing.T) {
	s := Parse("math.sqrt(2)", ParseOptions{}).Slots
	args := s.Fields[2].(*BracketedField).Slots
	src := args.Fields[0].(*BaseSlot).PlaceholderSource
	be.True(t, src != nil)
	be.Equal(t, *src, PlaceholderSource{Token: "sqrt", Context: "math", ParamIndex: 0, LastParam: true})

	s = Parse("f(x, y+1, z)", ParseOptions{}).Slots
	args = s.Fields[1].(*BracketedField).Slots
	be.Equal(t, *args.Fields[0].(*BaseSlot).PlaceholderSource,
		PlaceholderSource{Token: "f", ParamIndex: 0})
	be.True(t, args.Fields[1].(*BaseSlot).PlaceholderSource == nil)
	be.True(t, args.Fields[2].(*BaseSlot).PlaceholderSource == nil)
	be.Equal(t, *args.Fields[3].(*BaseSlot).PlaceholderSource,
		PlaceholderSource{Token: "f", ParamIndex: 2, LastParam: true})

	// Square brackets are not calls.
	s = Parse("a[i]", ParseOptions{}).Slots
	be.True(t, s.Fields[1].(*BracketedField).Slots.Fields[0].(*BaseSlot).PlaceholderSource == nil)
}

var roundTripCorpus = []string{
	"", "a", "a+b", "a + b", "a+(b+c)", "f(x, y)", "math.sqrt(2)",
	`"hello" + 'world'`, "a and not b", "x is not None", "a not in b",
	"[1, 2, 3]", "{'k': v}", "3+-5", "3--5", "1e-6*x", "1.5+.5",
	"0x1F | 0b10", `print("a\"b")`, "f(g(h(1)))", `"unterminated`,
	"(unclosed", "a)+b", "x**2//3", "a<=b>=c!=d", "-1", "not a",
	`'it"s'`, `"a\`, "x = -1", "a.b.c(d)[e]", "  lots   of   space  ",
	"a* *b", "a< <b", "x= =y", "a/ /b", ">)>", "i*)* ", "1.]]{a", "a+ - 1",
	"- 1", "1).5", "a!)=b", "+)1", "1. .", "(x)- 1",
}

func TestParseAlternation(t *testing.T) {
	for _, literal := range roundTripCorpus {
		for _, frame := range []FrameType{"", FrameImport, FrameFromImport} {
			s := Parse(literal, ParseOptions{FrameType: frame}).Slots
			be.True(t, s.Valid())
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, literal := range roundTripCorpus {
		t.Run(literal, func(t *testing.T) {
			first := Parse(literal, ParseOptions{}).Slots
			second := Parse(Code(first), ParseOptions{}).Slots
			be.True(t, first.Equal(&second))
			be.Equal(t, Code(second), Code(first))
		})
	}
}

func TestParseCursorBounds(t *testing.T) {
	for _, literal := range roundTripCorpus {
		n := len(decodeUnits(literal))
		for cursor := 0; cursor <= n; cursor++ {
			res := Parse(literal, ParseOptions{CursorPos: cursor, HasCursor: true})
			pos := res.NewCursor(cursor)
			be.True(t, pos >= 0)
			be.True(t, pos <= len([]rune(Display(res.Slots))))
		}
	}
}

// randomLiterals returns seeded literals built from digits, operator
// characters, brackets, quotes and spaces.
func randomLiterals(n int) []string {
	const alphabet = "01 .+-*/%<>=!,:~^&|()[]{}\"'"
	rng := rand.New(rand.NewPCG(1, 2))
	literals := make([]string, n)
	for i := range literals {
		var sb strings.Builder
		for range rng.IntN(13) {
			if rng.IntN(4) == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		literals[i] = sb.String()
	}
	return literals
}

func TestParseRandomLiterals(t *testing.T) {
	for _, literal := range randomLiterals(3000) {
		first := Parse(literal, ParseOptions{}).Slots
		if !first.Valid() {
			t.Fatalf("%q: fields and operators do not alternate: %s", literal, State(first, -1))
		}

		code := Code(first)
		second := Parse(code, ParseOptions{}).Slots
		if !first.Equal(&second) {
			t.Fatalf("%q: code %q parses to %s, want %s", literal, code, State(second, -1), State(first, -1))
		}

		n := len(decodeUnits(literal))
		for cursor := -1; cursor <= n+1; cursor++ {
			res := Parse(literal, ParseOptions{CursorPos: cursor, HasCursor: true})
			pos := res.NewCursor(cursor)
			if pos < 0 || pos > len([]rune(Display(res.Slots))) {
				t.Fatalf("%q: cursor %d maps to %d outside %q", literal, cursor, pos, Display(res.Slots))
			}
		}
	}
}

func TestParseStress(t *testing.T) {
	t.Run("deep nesting", func(t *testing.T) {
		const depth = 2000
		literal := strings.Repeat("(", depth) + "x" + strings.Repeat(")", depth)
		s := Parse(literal, ParseOptions{}).Slots
		be.True(t, s.Valid())
		be.Equal(t, Code(s), literal)
		cur := s
		for range depth {
			cur = cur.Fields[1].(*BracketedField).Slots
		}
		be.Equal(t, State(cur, -1), "{x}")
	})

	t.Run("deep unterminated", func(t *testing.T) {
		literal := strings.Repeat("[", 2000)
		s := Parse(literal, ParseOptions{CursorPos: 2000, HasCursor: true}).Slots
		be.True(t, s.Valid())
		be.Equal(t, Code(s), literal+strings.Repeat("]", 2000))
	})

	t.Run("long flat expression", func(t *testing.T) {
		literal := strings.Repeat("a+", 5000) + "a"
		s := Parse(literal, ParseOptions{}).Slots
		be.Equal(t, len(s.Fields), 5001)
		be.Equal(t, Code(s), literal)
	})

	t.Run("many strings", func(t *testing.T) {
		literal := strings.Repeat(`"s"+`, 1000) + `"s"`
		res := Parse(literal, ParseOptions{CursorPos: len(literal), HasCursor: true})
		be.True(t, res.Slots.Valid())
		be.Equal(t, Code(res.Slots), literal)
		be.Equal(t, res.NewCursor(len(literal)), len([]rune(Display(res.Slots))))
	})
}
