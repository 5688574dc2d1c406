package slots

import "strings"

// ParseOptions is the context of one parse.
type ParseOptions struct {
	// FrameType gates the "as" and "*" operators.
	FrameType FrameType
	// CursorPos is the caret position in the literal, counted in
	// characters with a quote placeholder counting as one. It is only
	// tracked when HasCursor is set.
	CursorPos int
	HasCursor bool
	// InsideString parses the source of a string slot, quotes included,
	// as code: the quotes are dropped and one level of escaping of the
	// string's own quote is removed.
	InsideString bool
	// SkipStringEscape parses a literal rebuilt by the editor, where the
	// quotes of string slots are quote placeholders and backslashes carry
	// no escaping.
	SkipStringEscape bool
}

// Result is the structure parsed from a literal. Adding CursorOffset to the
// original cursor position gives the caret position in the structure's
// display text.
type Result struct {
	Slots        SlotsStructure
	CursorOffset int
}

// NewCursor returns the caret position in the structure's display text.
func (r Result) NewCursor(cursorPos int) int {
	return cursorPos + r.CursorOffset
}

// parser holds the state of one parse. before counts the display
// characters produced from units before the cursor.
type parser struct {
	units     []unit
	ops       OperatorSet
	cursor    int
	hasCursor bool
	before    int
}

// Parse turns a literal into a slot structure. It never fails: unterminated
// strings and brackets are closed at the end of the literal and closing
// brackets without an opener are dropped.
func Parse(literal string, opts ParseOptions) Result {
	lexer := NewLexer(literal, opts.InsideString, opts.SkipStringEscape)
	toks := lexer.Lex()
	p := &parser{
		units:     lexer.units,
		ops:       OperatorSetFor(opts.FrameType),
		hasCursor: opts.HasCursor,
	}
	if opts.HasCursor {
		p.cursor = clamp(opts.CursorPos, 0, len(decodeUnits(literal)))
	}
	slots := p.parseTokens(toks, false)
	res := Result{Slots: slots}
	if opts.HasCursor {
		// Relative to the caller's position, so NewCursor clamps too.
		res.CursorOffset = p.before - opts.CursorPos
	}
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// countSeen counts the units before the cursor.
func (p *parser) countSeen(units []unit) int {
	if !p.hasCursor {
		return 0
	}
	n := 0
	for _, u := range units {
		if u.src < p.cursor {
			n++
		}
	}
	return n
}

// parseTokens parses one region. A leading region follows a closing bracket
// or quote. Brackets take priority over strings, and strings over
// operators. Every recursive call gets a region without the delimiter it
// split on.
func (p *parser) parseTokens(toks []Token, leading bool) SlotsStructure {
	if len(toks) == 0 {
		return emptyStructure()
	}
	for i, tok := range toks {
		if tok.Type == BRACKET_OPEN {
			return p.parseBracket(toks, i, leading)
		}
	}
	for i, tok := range toks {
		if tok.Type == QUOTE_OPEN {
			return p.parseString(toks, i, leading)
		}
	}
	return p.parseLeaf(p.units[toks[0].Start:toks[len(toks)-1].End], leading)
}

// matchBracket returns the index of the closer of toks[open], counting only
// brackets of the same kind, or -1 when the bracket is unterminated.
func matchBracket(toks []Token, open int) int {
	opening := toks[open].Value
	closing := matchingBracket(opening)
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].Type == BRACKET_OPEN && toks[i].Value == opening:
			depth++
		case toks[i].Type == BRACKET_CLOSE && toks[i].Value == closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *parser) parseBracket(toks []Token, open int, leading bool) SlotsStructure {
	closing := matchBracket(toks, open)
	s := p.parseTokens(toks[:open], leading)
	p.before += p.countSeen(p.units[toks[open].Start:toks[open].End])

	innerToks, afterToks := toks[open+1:], []Token(nil)
	if closing >= 0 {
		innerToks, afterToks = toks[open+1:closing], toks[closing+1:]
	}
	field := &BracketedField{
		OpeningBracket: toks[open].Value,
		Slots:          p.parseTokens(innerToks, false),
	}
	if field.OpeningBracket == "(" {
		annotateParameters(&field.Slots, s)
	}
	if closing >= 0 {
		p.before += p.countSeen(p.units[toks[closing].Start:toks[closing].End])
	}

	s.Operators = append(s.Operators, Operator{})
	s.Fields = append(s.Fields, field)
	s.appendStructure(Operator{}, p.parseTokens(afterToks, true))
	return s
}

func (p *parser) parseString(toks []Token, open int, leading bool) SlotsStructure {
	s := p.parseTokens(toks[:open], leading)
	content, closing := toks[open+1], toks[open+2]
	p.before += p.countSeen(p.units[toks[open].Start:toks[open].End])
	field := &StringSlot{
		Code:  p.stringContent(p.units[content.Start:content.End], p.units[toks[open].Start].r),
		Quote: toks[open].Value,
	}
	p.before += p.countSeen(p.units[closing.Start:closing.End])

	s.Operators = append(s.Operators, Operator{})
	s.Fields = append(s.Fields, field)
	s.appendStructure(Operator{}, p.parseTokens(toks[open+3:], true))
	return s
}

// stringContent escapes every occurrence of the string's own quote that is
// not already escaped. Quote placeholders in the content have already been
// decoded to quotes.
func (p *parser) stringContent(units []unit, quote rune) string {
	out := make([]unit, 0, len(units))
	backslashes := 0
	for _, u := range units {
		if u.r == quote && backslashes%2 == 0 {
			out = append(out, unit{r: '\\', src: u.src})
		}
		out = append(out, u)
		if u.r == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
	}
	p.before += p.countSeen(out)
	return unitsString(out)
}

// annotateParameters marks the call parameters of a "(" field that are a
// single plain field with where they came from.
func annotateParameters(args *SlotsStructure, callee SlotsStructure) {
	type param struct {
		index int
		slot  *BaseSlot
	}
	var singles []param
	lastStart, count := -1, 0
	for i, f := range args.Fields {
		if i < len(args.Operators) && args.Operators[i].Code != "," {
			continue
		}
		if i-lastStart == 1 {
			switch f := f.(type) {
			case *BaseSlot:
				singles = append(singles, param{index: count, slot: f})
			case *BracketedField, *StringSlot:
			default:
				panic(unknownField(f))
			}
		}
		count++
		lastStart = i
	}
	if len(singles) == 0 {
		return
	}
	token, context := calleeOf(callee)
	for _, sp := range singles {
		sp.slot.PlaceholderSource = &PlaceholderSource{
			Token:      token,
			Context:    context,
			ParamIndex: sp.index,
			LastParam:  sp.index == count-1,
		}
	}
}

// calleeOf returns the last plain field before a call bracket and the code
// of the dotted chain before it ("math" for "math.sqrt(").
func calleeOf(s SlotsStructure) (token, context string) {
	n := len(s.Fields)
	if n == 0 {
		return "", ""
	}
	switch f := s.Fields[n-1].(type) {
	case *BaseSlot:
		token = f.Code
	case *BracketedField, *StringSlot:
	default:
		panic(unknownField(f))
	}
	if n < 2 || s.Operators[n-2].Code != "." {
		return token, ""
	}
	start := n - 2
	for start > 0 {
		if op := s.Operators[start-1].Code; op != "." && op != "" {
			break
		}
		start--
	}
	chain := SlotsStructure{
		Fields:    s.Fields[start : n-1],
		Operators: s.Operators[start : n-2],
	}
	var sb strings.Builder
	writeCode(&sb, chain, false)
	return token, sb.String()
}
