package slots

import (
	"sort"
	"strings"
	"unicode"
)

// Symbolic operators. Augmented assignments (+=, //=, ...) are not
// operators in the editor.
var symbolicOperators = []string{".", "+", "-", "/", "*", "%", ":", "//", "**", "&", "|", "~", "^", ">>", "<<",
	"==", "=", "!=", ">=", "<=", "<", ">", ","}

// Keyword operators, longer first where they share a prefix.
var keywordOperators = []string{"and", "in", "is not", "is", "or", "not in", "not", "as"}

// OperatorDef is one entry of the operator vocabulary.
type OperatorDef struct {
	Code    string
	Keyword bool
	words   []string
}

// allOperators is the full vocabulary in search priority order: keywords,
// then symbolic operators longest first.
var allOperators = buildVocabulary()

func buildVocabulary() []OperatorDef {
	var defs []OperatorDef
	for _, kw := range keywordOperators {
		defs = append(defs, OperatorDef{Code: kw, Keyword: true, words: strings.Fields(kw)})
	}
	symbols := append([]string(nil), symbolicOperators...)
	sort.SliceStable(symbols, func(i, j int) bool {
		return len(symbols[i]) > len(symbols[j])
	})
	for _, sym := range symbols {
		defs = append(defs, OperatorDef{Code: sym})
	}
	return defs
}

// OperatorSet is the operator vocabulary active for one frame type.
type OperatorSet struct {
	defs []OperatorDef
}

// OperatorSetFor returns the vocabulary gated by the frame type: "as" only
// splits inside import frames, and "*" is plain text in a from-import
// frame (as in "from math import *").
func OperatorSetFor(frameType FrameType) OperatorSet {
	var set OperatorSet
	for _, def := range allOperators {
		if def.Code == "as" && !frameType.IsImport() {
			continue
		}
		if frameType == FrameFromImport && strings.Contains(def.Code, "*") {
			continue
		}
		set.defs = append(set.defs, def)
	}
	return set
}

// Contains reports whether code is an operator of the set.
func (s OperatorSet) Contains(code string) bool {
	for _, def := range s.defs {
		if def.Code == code {
			return true
		}
	}
	return false
}

// IsKeywordOperator reports whether code is a keyword operator, which is
// written with surrounding spaces.
func IsKeywordOperator(code string) bool {
	for _, kw := range keywordOperators {
		if kw == code {
			return true
		}
	}
	return false
}

// IsOperator reports whether code belongs to the full vocabulary.
func IsOperator(code string) bool {
	if IsKeywordOperator(code) {
		return true
	}
	for _, sym := range symbolicOperators {
		if sym == code {
			return true
		}
	}
	return false
}

// matchAt reports the length of def's match starting at i, or 0.
func (def OperatorDef) matchAt(text []rune, i int) int {
	if !def.Keyword {
		if hasPrefixAt(text, i, def.Code) {
			return len([]rune(def.Code))
		}
		return 0
	}
	// Keyword: words separated by whitespace runs, then exactly one space.
	j := i
	for w, word := range def.words {
		if w > 0 {
			k := j
			for k < len(text) && unicode.IsSpace(text[k]) {
				k++
			}
			if k == j {
				return 0
			}
			j = k
		}
		if !hasPrefixAt(text, j, word) {
			return 0
		}
		j += len([]rune(word))
	}
	if j >= len(text) || text[j] != ' ' {
		return 0
	}
	return j + 1 - i
}

func hasPrefixAt(text []rune, i int, prefix string) bool {
	for _, r := range prefix {
		if i >= len(text) || text[i] != r {
			return false
		}
		i++
	}
	return true
}

// cannotPrecedeKeyword reports whether r glued to a keyword makes it part of
// a longer identifier ("classify" does not contain the operator "as").
func cannotPrecedeKeyword(r rune) bool {
	return r == '_' || unicode.IsLetter(r) ||
		unicode.In(r, unicode.Nl, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc)
}

// Brackets, in search priority order. Openers and closers share indexes.
var (
	openBrackets  = []rune{'(', '{', '['}
	closeBrackets = []rune{')', '}', ']'}
)

func matchingBracket(bracket string) string {
	for i, open := range openBrackets {
		if string(open) == bracket {
			return string(closeBrackets[i])
		}
		if string(closeBrackets[i]) == bracket {
			return string(open)
		}
	}
	return ""
}

func isOpenBracket(r rune) bool {
	return r == '(' || r == '{' || r == '['
}

func isCloseBracket(r rune) bool {
	return r == ')' || r == '}' || r == ']'
}
