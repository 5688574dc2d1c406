package slots

import "fmt"

// SlotsStructure is an ordered run of fields joined by operators.
// A well-formed structure always has exactly one more field than operators.
type SlotsStructure struct {
	Fields    []Field
	Operators []Operator
}

// Field is one unit of a SlotsStructure: a *BaseSlot, a *BracketedField or a
// *StringSlot. The set is closed.
type Field interface {
	isField()
}

// BaseSlot is a plain text field.
type BaseSlot struct {
	Code string
	// PlaceholderSource is set on single-field call parameters for the
	// autocomplete collaborator.
	PlaceholderSource *PlaceholderSource
}

// BracketedField is a nested structure delimited by brackets.
type BracketedField struct {
	OpeningBracket string // "(", "[" or "{"
	Slots          SlotsStructure
}

// StringSlot is a string literal. Code never contains an unescaped Quote.
type StringSlot struct {
	Code  string
	Quote string // "'" or "\""
}

func (*BaseSlot) isField()       {}
func (*BracketedField) isField() {}
func (*StringSlot) isField()     {}

// Operator joins two fields. The empty code is a structural join.
type Operator struct {
	Code string
}

// PlaceholderSource records where a call parameter came from.
type PlaceholderSource struct {
	Token      string // the callee, e.g. "sqrt" in "math.sqrt(x)"
	Context    string // the dotted prefix before Token, e.g. "math"
	ParamIndex int
	LastParam  bool
}

// ClosingBracket returns the bracket matching the field's opening bracket.
func (b *BracketedField) ClosingBracket() string {
	return matchingBracket(b.OpeningBracket)
}

func unknownField(f Field) string {
	return fmt.Sprintf("slots: unknown field type %T", f)
}

// Field returns the field at index i, or nil when out of range.
func (s *SlotsStructure) Field(i int) Field {
	if i < 0 || i >= len(s.Fields) {
		return nil
	}
	return s.Fields[i]
}

// Valid reports whether s and every nested structure alternate fields and
// operators.
func (s *SlotsStructure) Valid() bool {
	if len(s.Fields) != len(s.Operators)+1 {
		return false
	}
	for _, f := range s.Fields {
		switch f := f.(type) {
		case *BaseSlot, *StringSlot:
		case *BracketedField:
			if !f.Slots.Valid() {
				return false
			}
		default:
			panic(unknownField(f))
		}
	}
	return true
}

// Equal compares two structures, ignoring placeholder sources.
func (s *SlotsStructure) Equal(other *SlotsStructure) bool {
	if len(s.Fields) != len(other.Fields) || len(s.Operators) != len(other.Operators) {
		return false
	}
	for i, op := range s.Operators {
		if op.Code != other.Operators[i].Code {
			return false
		}
	}
	for i, f := range s.Fields {
		if !fieldsEqual(f, other.Fields[i]) {
			return false
		}
	}
	return true
}

func fieldsEqual(a, b Field) bool {
	switch a := a.(type) {
	case *BaseSlot:
		b, ok := b.(*BaseSlot)
		return ok && a.Code == b.Code
	case *StringSlot:
		b, ok := b.(*StringSlot)
		return ok && a.Code == b.Code && a.Quote == b.Quote
	case *BracketedField:
		b, ok := b.(*BracketedField)
		return ok && a.OpeningBracket == b.OpeningBracket && a.Slots.Equal(&b.Slots)
	default:
		panic(unknownField(a))
	}
}

// appendStructure splices other onto s, joining the two with op. When s is
// empty, other is copied as is.
func (s *SlotsStructure) appendStructure(op Operator, other SlotsStructure) {
	if len(s.Fields) > 0 {
		s.Operators = append(s.Operators, op)
	}
	s.Fields = append(s.Fields, other.Fields...)
	s.Operators = append(s.Operators, other.Operators...)
}

func emptyStructure() SlotsStructure {
	return SlotsStructure{Fields: []Field{&BaseSlot{}}}
}
