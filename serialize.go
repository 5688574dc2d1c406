package slots

import (
	"fmt"
	"strconv"
	"strings"
)

// Code renders a structure as source text. Keyword operators get a space on
// each side, but none before an operator that follows an empty first field
// ("not a"). Brackets and strings are always closed. Symbolic operators are written without spaces
// unless that text would parse back differently ("a* *b" is not "a**b"). Then
// every symbolic operator is spaced.
func Code(s SlotsStructure) string {
	var sb strings.Builder
	writeCode(&sb, s, false)
	compact := sb.String()
	opts := ParseOptions{FrameType: codeFrame(s)}
	if back := Parse(compact, opts).Slots; back.Equal(&s) {
		return compact
	}
	sb.Reset()
	writeCode(&sb, s, true)
	spaced := sb.String()
	if back := Parse(spaced, opts).Slots; back.Equal(&s) {
		return spaced
	}
	// Not the parse of any literal, e.g. built by hand.
	return compact
}

// codeFrame picks a frame type whose operators can produce s: a "*" kept as
// text needs a from-import frame and "as" needs an import frame.
func codeFrame(s SlotsStructure) FrameType {
	star, as := false, false
	var visit func(s SlotsStructure)
	visit = func(s SlotsStructure) {
		for _, op := range s.Operators {
			as = as || op.Code == "as"
		}
		for _, f := range s.Fields {
			switch f := f.(type) {
			case *BaseSlot:
				star = star || strings.Contains(f.Code, "*")
			case *StringSlot:
			case *BracketedField:
				visit(f.Slots)
			default:
				panic(unknownField(f))
			}
		}
	}
	visit(s)
	switch {
	case star:
		return FrameFromImport
	case as:
		return FrameImport
	}
	return ""
}

func writeCode(sb *strings.Builder, s SlotsStructure, spaced bool) {
	for i, f := range s.Fields {
		if i > 0 {
			op := s.Operators[i-1].Code
			if IsKeywordOperator(op) || spaced && op != "" {
				op = " " + op + " "
				if first, ok := s.Fields[0].(*BaseSlot); ok && i == 1 && first.Code == "" {
					op = op[1:]
				}
			}
			sb.WriteString(op)
		}
		switch f := f.(type) {
		case *BaseSlot:
			sb.WriteString(f.Code)
		case *StringSlot:
			sb.WriteString(f.Quote + f.Code + f.Quote)
		case *BracketedField:
			sb.WriteString(f.OpeningBracket)
			writeCode(sb, f.Slots, spaced)
			sb.WriteString(f.ClosingBracket())
		default:
			panic(unknownField(f))
		}
	}
}

// Display renders a structure as the editor shows it: keyword operators
// without spaces. Cursor positions returned by Parse index this text.
func Display(s SlotsStructure) string {
	var sb strings.Builder
	walkDisplay(s, nil, func(e displayElem) {
		sb.WriteString(e.text)
	})
	return sb.String()
}

// displayElem is one piece of display text. Editable pieces (plain fields
// and string contents) carry their slot id.
type displayElem struct {
	text     string
	editable bool
	id       SlotID
	kind     elemKind
	quote    string
}

type elemKind int

const (
	elemField elemKind = iota
	elemString
	elemOperator
	elemBracket
	elemQuote
)

func walkDisplay(s SlotsStructure, parent SlotID, emit func(displayElem)) {
	for i, f := range s.Fields {
		if i > 0 {
			emit(displayElem{text: s.Operators[i-1].Code, kind: elemOperator})
		}
		id := append(parent[:len(parent):len(parent)], i)
		switch f := f.(type) {
		case *BaseSlot:
			emit(displayElem{text: f.Code, editable: true, id: id, kind: elemField})
		case *StringSlot:
			emit(displayElem{text: f.Quote, kind: elemQuote})
			emit(displayElem{text: f.Code, editable: true, id: id, kind: elemString, quote: f.Quote})
			emit(displayElem{text: f.Quote, kind: elemQuote})
		case *BracketedField:
			emit(displayElem{text: f.OpeningBracket, kind: elemBracket})
			walkDisplay(f.Slots, id, emit)
			emit(displayElem{text: f.ClosingBracket(), kind: elemBracket})
		default:
			panic(unknownField(f))
		}
	}
}

// State renders a structure in the editor's test notation: plain fields in
// braces, operators as is with "_" for an empty operator, strings in curly
// quotes, brackets as is, and "$" at the cursor. A negative cursor is not
// shown.
func State(s SlotsStructure, cursor int) string {
	var sb strings.Builder
	pos, placed := 0, cursor < 0
	walkDisplay(s, nil, func(e displayElem) {
		n := len([]rune(e.text))
		text := e.text
		if e.editable && !placed && cursor >= pos && cursor <= pos+n {
			k := cursor - pos
			r := []rune(text)
			text = string(r[:k]) + "$" + string(r[k:])
			placed = true
		}
		pos += n
		switch e.kind {
		case elemField:
			sb.WriteString("{" + text + "}")
		case elemOperator:
			if text == "" {
				text = "_"
			}
			sb.WriteString(text)
		case elemQuote:
			// Written with the string's content.
		case elemString:
			if e.quote == "'" {
				sb.WriteString("‘" + text + "’")
			} else {
				sb.WriteString("“" + text + "”")
			}
		case elemBracket:
			sb.WriteString(text)
		}
	})
	return sb.String()
}

// ToSExpr renders a structure as an s-expression, for debugging and
// Markdown test assertions.
func ToSExpr(s SlotsStructure) string {
	var sb strings.Builder
	sb.WriteString("(slots")
	writeSExprItems(&sb, s)
	sb.WriteString(")")
	return sb.String()
}

func writeSExprItems(sb *strings.Builder, s SlotsStructure) {
	for i, f := range s.Fields {
		if i > 0 {
			fmt.Fprintf(sb, " (op %s)", strconv.Quote(s.Operators[i-1].Code))
		}
		switch f := f.(type) {
		case *BaseSlot:
			fmt.Fprintf(sb, " (field %s", strconv.Quote(f.Code))
			if src := f.PlaceholderSource; src != nil {
				last := "more"
				if src.LastParam {
					last = "last"
				}
				fmt.Fprintf(sb, " (source %s %s %d %s)", strconv.Quote(src.Token), strconv.Quote(src.Context), src.ParamIndex, last)
			}
			sb.WriteString(")")
		case *StringSlot:
			fmt.Fprintf(sb, " (string %s %s)", strconv.Quote(f.Quote), strconv.Quote(f.Code))
		case *BracketedField:
			fmt.Fprintf(sb, " (bracket %s", strconv.Quote(f.OpeningBracket))
			writeSExprItems(sb, f.Slots)
			sb.WriteString(")")
		default:
			panic(unknownField(f))
		}
	}
}

// UILiteral rebuilds the literal the editor parses after an edit: string
// quotes become quote placeholders and keyword operators get their spaces
// back. It also maps a position inside the focused slot to a cursor
// position for Parse, with each placeholder counting as one character. A
// focus that names no editable slot maps to -1.
func UILiteral(s SlotsStructure, focus SlotID, focusPos int) (string, int) {
	var sb strings.Builder
	pos, cursor := 0, -1
	walkDisplay(s, nil, func(e displayElem) {
		text := e.text
		switch e.kind {
		case elemOperator:
			if IsKeywordOperator(text) {
				text = " " + text + " "
			}
		case elemQuote:
			text = SingleQuotePlaceholder
			if e.text == "\"" {
				text = DoubleQuotePlaceholder
			}
		}
		if e.editable && cursor < 0 && e.id.Equal(focus) {
			cursor = pos + clamp(focusPos, 0, len([]rune(text)))
		}
		sb.WriteString(text)
		if e.kind == elemQuote {
			pos++
		} else {
			pos += len([]rune(text))
		}
	})
	return sb.String(), cursor
}
