package slots

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Quote placeholders stand for the quotes of string slots when the editor
// rebuilds a literal from its slots. Both have the same length.
const (
	SingleQuotePlaceholder = "$strype_StrSgQuote_placeholder$"
	DoubleQuotePlaceholder = "$strype_StrDbQuote_placeholder$"
)

// synthetic is the source position of characters the engine inserts. It is
// never before any cursor.
const synthetic = math.MaxInt

// unit is one character of a literal. A quote placeholder decodes to a
// single unit, so unit indexes are cursor positions.
type unit struct {
	r           rune
	src         int  // position in the caller's literal
	placeholder bool // decoded from a quote placeholder
}

func decodeUnits(literal string) []unit {
	var units []unit
	for i := 0; i < len(literal); {
		switch {
		case strings.HasPrefix(literal[i:], SingleQuotePlaceholder):
			units = append(units, unit{r: '\'', src: len(units), placeholder: true})
			i += len(SingleQuotePlaceholder)
			continue
		case strings.HasPrefix(literal[i:], DoubleQuotePlaceholder):
			units = append(units, unit{r: '"', src: len(units), placeholder: true})
			i += len(DoubleQuotePlaceholder)
			continue
		}
		r, size := utf8.DecodeRuneInString(literal[i:])
		units = append(units, unit{r: r, src: len(units)})
		i += size
	}
	return units
}

// unquoteUnits strips the outer quotes of a string literal and removes one
// level of escaping of its own quote.
func unquoteUnits(units []unit) []unit {
	if len(units) == 0 {
		return units
	}
	quote := units[0].r
	inner := units[1:]
	if len(inner) > 0 && inner[len(inner)-1].r == quote {
		inner = inner[:len(inner)-1]
	}
	out := make([]unit, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i].r == '\\' && i+1 < len(inner) && inner[i+1].r == quote {
			out = append(out, inner[i+1])
			i++
			continue
		}
		out = append(out, inner[i])
	}
	return out
}

func unitsString(units []unit) string {
	var sb strings.Builder
	for _, u := range units {
		sb.WriteRune(u.r)
	}
	return sb.String()
}

// TokenType is the type of token.
type TokenType string

const (
	TEXT           TokenType = "TEXT"
	QUOTE_OPEN     TokenType = "QUOTE_OPEN"
	STRING_CONTENT TokenType = "STRING_CONTENT"
	QUOTE_CLOSE    TokenType = "QUOTE_CLOSE"
	BRACKET_OPEN   TokenType = "BRACKET_OPEN"
	BRACKET_CLOSE  TokenType = "BRACKET_CLOSE"

	// Leaf tokens, produced inside bracket-free and string-free regions.
	OPERATOR      TokenType = "OPERATOR"
	SIGN          TokenType = "SIGN"
	DECIMAL_POINT TokenType = "DECIMAL_POINT"
)

// Token is a span of units [Start, End).
type Token struct {
	Type  TokenType
	Value string
	Start int
	End   int
}

// Lexer splits a literal into text, string and bracket tokens. String
// regions are masked by index so their content never reads as brackets or
// operators.
type Lexer struct {
	units            []unit
	pos              int
	skipStringEscape bool
	Tokens           []Token
}

// NewLexer decodes literal into units. When insideString is set the
// literal is the source of a string slot and is unquoted first.
func NewLexer(literal string, insideString, skipStringEscape bool) *Lexer {
	units := decodeUnits(literal)
	if insideString {
		units = unquoteUnits(units)
	}
	return &Lexer{units: units, skipStringEscape: skipStringEscape}
}

// Lex tokenizes the whole literal. An unterminated string is closed by an
// appended quote, which becomes part of the lexer's text.
func (l *Lexer) Lex() []Token {
	for l.pos < len(l.units) {
		u := l.units[l.pos]
		switch {
		case l.opensString(u):
			l.lexString()
		case isOpenBracket(u.r):
			l.emit(BRACKET_OPEN, string(u.r), l.pos, l.pos+1)
			l.pos++
		case isCloseBracket(u.r):
			l.emit(BRACKET_CLOSE, string(u.r), l.pos, l.pos+1)
			l.pos++
		default:
			l.lexText()
		}
	}
	return l.Tokens
}

// Text returns the lexed literal, including auto-closing quotes.
func (l *Lexer) Text() string {
	return unitsString(l.units)
}

func (l *Lexer) emit(typ TokenType, value string, start, end int) {
	l.Tokens = append(l.Tokens, Token{Type: typ, Value: value, Start: start, End: end})
}

func (l *Lexer) opensString(u unit) bool {
	return u.r == '\'' || u.r == '"'
}

func (l *Lexer) lexText() {
	start := l.pos
	for l.pos < len(l.units) {
		u := l.units[l.pos]
		if l.opensString(u) || isOpenBracket(u.r) || isCloseBracket(u.r) {
			break
		}
		l.pos++
	}
	l.emit(TEXT, unitsString(l.units[start:l.pos]), start, l.pos)
}

func (l *Lexer) lexString() {
	open := l.units[l.pos]
	quote := string(open.r)
	l.emit(QUOTE_OPEN, quote, l.pos, l.pos+1)
	l.pos++
	start := l.pos

	// Escapes only apply to strings typed as text. Strings delimited by
	// placeholders, or raw quotes in placeholder mode, end at the next
	// matching quote.
	escapes := !l.skipStringEscape
	for l.pos < len(l.units) {
		u := l.units[l.pos]
		if escapes && u.r == '\\' {
			l.pos += 2
			continue
		}
		if u.r == open.r && (!l.skipStringEscape || !open.placeholder || u.placeholder) {
			l.emit(STRING_CONTENT, unitsString(l.units[start:l.pos]), start, l.pos)
			l.emit(QUOTE_CLOSE, quote, l.pos, l.pos+1)
			l.pos++
			return
		}
		l.pos++
	}

	// Unterminated: the string runs to the end of the literal.
	l.pos = len(l.units)
	if escapes && trailingBackslashes(l.units[start:])%2 == 1 {
		l.units = append(l.units, unit{r: '\\', src: synthetic})
		l.pos++
	}
	l.emit(STRING_CONTENT, unitsString(l.units[start:l.pos]), start, l.pos)
	l.units = append(l.units, unit{r: open.r, src: synthetic, placeholder: open.placeholder})
	l.emit(QUOTE_CLOSE, quote, l.pos, l.pos+1)
	l.pos++
}

func trailingBackslashes(units []unit) int {
	n := 0
	for i := len(units) - 1; i >= 0 && units[i].r == '\\'; i-- {
		n++
	}
	return n
}
