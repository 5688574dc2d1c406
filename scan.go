package slots

import "unicode"

// matchAt returns the first operator of the set matching text at i, or a
// zero length.
func (s OperatorSet) matchAt(text []rune, i int) (int, OperatorDef) {
	for _, def := range s.defs {
		if def.Keyword && i > 0 && cannotPrecedeKeyword(text[i-1]) {
			continue
		}
		if n := def.matchAt(text, i); n > 0 {
			return n, def
		}
	}
	return 0, OperatorDef{}
}

// scanOperators finds the operators of a leaf region, leftmost first. At a
// given position the earlier vocabulary entry wins.
func (p *parser) scanOperators(scratch []rune) []Token {
	var toks []Token
	for i := 0; i < len(scratch); {
		n, def := p.ops.matchAt(scratch, i)
		if n == 0 {
			i++
			continue
		}
		toks = append(toks, Token{Type: OPERATOR, Value: def.Code, Start: i, End: i + n})
		i += n
	}
	return toks
}

// parseLeaf splits a region free of strings and open brackets into fields
// and operators.
func (p *parser) parseLeaf(units []unit, leading bool) SlotsStructure {
	text := make([]rune, len(units))
	for i, u := range units {
		text[i] = u.r
	}
	scratch, _ := disambiguateNumbers(text, leading)

	var s SlotsStructure
	look := 0
	for _, op := range p.scanOperators(scratch) {
		s.Fields = append(s.Fields, p.middleField(units[look:op.Start]))
		s.Operators = append(s.Operators, Operator{Code: op.Value})
		p.seenOperator(units[op.Start:op.End], op.Value)
		look = op.End
	}
	s.Fields = append(s.Fields, p.lastField(units[look:]))
	return s
}

// middleField trims a field that ends at an operator. When the cursor is
// strictly inside the field, the text before it is kept as typed.
func (p *parser) middleField(units []unit) *BaseSlot {
	units = stripDeadBrackets(units)
	var kept []unit
	if k := p.countSeen(units); p.hasCursor && k > 0 && k < len(units) {
		kept = append(append(kept, units[:k]...), trimRightUnits(units[k:])...)
	} else {
		kept = trimLeftUnits(trimRightUnits(units))
	}
	p.before += p.countSeen(kept)
	return &BaseSlot{Code: unitsString(kept)}
}

// lastField only trims the start of the remainder after the last operator.
func (p *parser) lastField(units []unit) *BaseSlot {
	kept := trimLeftUnits(stripDeadBrackets(units))
	p.before += p.countSeen(kept)
	return &BaseSlot{Code: unitsString(kept)}
}

// seenOperator counts the displayed characters of an operator before the
// cursor. Keyword operators are displayed without their spaces.
func (p *parser) seenOperator(units []unit, code string) {
	n := p.countSeen(units)
	if l := len([]rune(code)); n > l {
		n = l
	}
	p.before += n
}

// stripDeadBrackets drops closing brackets that have no opener. In a leaf
// region every closing bracket is dead.
func stripDeadBrackets(units []unit) []unit {
	out := units[:0:0]
	for _, u := range units {
		if !isCloseBracket(u.r) {
			out = append(out, u)
		}
	}
	return out
}

func trimLeftUnits(units []unit) []unit {
	for len(units) > 0 && unicode.IsSpace(units[0].r) {
		units = units[1:]
	}
	return units
}

func trimRightUnits(units []unit) []unit {
	for len(units) > 0 && unicode.IsSpace(units[len(units)-1].r) {
		units = units[:len(units)-1]
	}
	return units
}
