package slots

import (
	"strings"
	"unicode"
)

// Characters that may sit before a signed literal, and the characters that
// may end a numeric literal.
const (
	signPrefixChars = "+-*/%<>&|^=!,"
	terminatorChars = " +-*/%<>&|^=!,"
)

// numberScanner matches literal patterns over one leaf region. A leading
// region follows a closing bracket or quote, so it never starts the text:
// the field before it reads as a character that is neither a word, an
// operator nor a space.
type numberScanner struct {
	src     []rune
	leading bool
}

func (s *numberScanner) atStart(i int) bool {
	return i == 0 && !s.leading
}

func isASCIIWord(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// wordBoundary reports a change of word-ness between i-1 and i. Out of range
// characters are non-word.
func (s *numberScanner) wordBoundary(i int) bool {
	before := i > 0 && isASCIIWord(s.src[i-1])
	after := i < len(s.src) && isASCIIWord(s.src[i])
	return before != after
}

func (s *numberScanner) digits(i int) int {
	for i < len(s.src) && isDigit(s.src[i]) {
		i++
	}
	return i
}

func (s *numberScanner) spaces(i int) int {
	for i < len(s.src) && unicode.IsSpace(s.src[i]) {
		i++
	}
	return i
}

// mantissa matches \d+(\.\d*)?|\.\d+ at i. It returns the end and the
// position of the decimal point, or -1 for both.
func (s *numberScanner) mantissa(i int) (end, dot int) {
	if j := s.digits(i); j > i {
		if j < len(s.src) && s.src[j] == '.' {
			return s.digits(j + 1), j
		}
		return j, -1
	}
	if i < len(s.src) && s.src[i] == '.' {
		if j := s.digits(i + 1); j > i+1 {
			return j, i
		}
	}
	return -1, -1
}

// terminator matches $|\s*[ +-*/%<>&|^=!,] at i and returns the end of the
// match, or -1.
func (s *numberScanner) terminator(i int) int {
	if i == len(s.src) {
		return i
	}
	k := s.spaces(i)
	if k < len(s.src) && strings.ContainsRune(terminatorChars, s.src[k]) {
		return k + 1
	}
	for j := k - 1; j >= i; j-- {
		if s.src[j] == ' ' {
			return j + 1
		}
	}
	return -1
}

// optionalJ skips an imaginary suffix.
func (s *numberScanner) optionalJ(i int) int {
	if i < len(s.src) && s.src[i] == 'j' {
		return i + 1
	}
	return i
}

// prefixStarts lists where the number body may begin for a match starting
// at p: after leading whitespace at start of text, at a word boundary, or
// after an operator character and optional whitespace.
func (s *numberScanner) prefixStarts(p int, withBoundary bool, leadingSpace func(int) bool) []int {
	var starts []int
	if s.atStart(p) && leadingSpace(p) {
		starts = append(starts, s.spaces(p))
	}
	if withBoundary && s.wordBoundary(p) {
		starts = append(starts, p)
	}
	if p < len(s.src) && strings.ContainsRune(signPrefixChars, s.src[p]) {
		starts = append(starts, s.spaces(p+1))
	}
	return starts
}

// exponentSign matches a number with a signed exponent whose match starts at
// p, returning the match end and the sign position.
func (s *numberScanner) exponentSign(p int) (end, sign int) {
	needSpace := func(p int) bool { return p < len(s.src) && unicode.IsSpace(s.src[p]) }
	for _, start := range s.prefixStarts(p, true, needSpace) {
		m, _ := s.mantissa(start)
		if m < 0 || m+1 >= len(s.src) || s.src[m] != 'e' && s.src[m] != 'E' {
			continue
		}
		sign := m + 1
		if s.src[sign] != '+' && s.src[sign] != '-' {
			continue
		}
		d := s.digits(sign + 1)
		if d == sign+1 {
			continue
		}
		if t := s.terminator(s.optionalJ(d)); t >= 0 {
			return t, sign
		}
	}
	return -1, -1
}

// leadingSign matches a signed literal whose match starts at p. The match
// does not consume its terminator.
func (s *numberScanner) leadingSign(p int) (end, sign int) {
	anySpace := func(int) bool { return true }
	for _, start := range s.prefixStarts(p, false, anySpace) {
		if start >= len(s.src) || s.src[start] != '+' && s.src[start] != '-' {
			continue
		}
		if body := s.signedBody(start + 1); body >= 0 && s.terminator(body) >= 0 {
			return body, start
		}
	}
	return -1, -1
}

// signedBody matches 0b[01]+, 0x[0-9a-fA-F]+ or a decimal literal with an
// optional unsigned exponent and imaginary suffix.
func (s *numberScanner) signedBody(i int) int {
	if i+2 < len(s.src) && s.src[i] == '0' {
		j := i + 2
		switch s.src[i+1] {
		case 'b':
			for j < len(s.src) && (s.src[j] == '0' || s.src[j] == '1') {
				j++
			}
		case 'x':
			for j < len(s.src) && isHexDigit(s.src[j]) {
				j++
			}
		}
		if j > i+2 && s.terminator(j) >= 0 {
			return j
		}
	}
	m, _ := s.mantissa(i)
	if m < 0 {
		return -1
	}
	if m+1 < len(s.src) && (s.src[m] == 'e' || s.src[m] == 'E') && isDigit(s.src[m+1]) {
		end := s.optionalJ(s.digits(m + 1))
		if s.terminator(end) >= 0 {
			return end
		}
	}
	return s.optionalJ(m)
}

// decimalPoint matches a decimal literal whose match starts at p, returning
// the match end and the position of its point.
func (s *numberScanner) decimalPoint(p int) (end, dot int) {
	var starts []int
	if p < len(s.src) && unicode.IsSpace(s.src[p]) {
		starts = append(starts, s.spaces(p))
	}
	if s.wordBoundary(p) {
		starts = append(starts, p)
	}
	if p < len(s.src) && strings.ContainsRune(signPrefixChars, s.src[p]) {
		starts = append(starts, s.spaces(p+1))
	}
	for _, start := range starts {
		d := s.digits(start)
		if d == start || d >= len(s.src) || s.src[d] != '.' {
			continue
		}
		end := s.digits(d + 1)
		if end+1 < len(s.src) && (s.src[end] == 'e' || s.src[end] == 'E') && isDigit(s.src[end+1]) {
			end = s.digits(end + 1)
		}
		if t := s.terminator(s.optionalJ(end)); t >= 0 {
			return t, d
		}
	}
	return -1, -1
}

// disambiguateNumbers neutralizes, in a scratch copy of a leaf region, the
// signs and decimal points that belong to numeric literals so the operator
// scanner does not split on them. It returns the scratch text and a token
// per neutralized character.
func disambiguateNumbers(text []rune, leading bool) ([]rune, []Token) {
	scratch := append([]rune(nil), text...)
	var toks []Token
	pass := func(typ TokenType, match func(*numberScanner, int) (int, int)) {
		s := &numberScanner{src: append([]rune(nil), scratch...), leading: leading}
		for p := 0; p < len(s.src); {
			end, at := match(s, p)
			if end < 0 {
				p++
				continue
			}
			toks = append(toks, Token{Type: typ, Value: string(scratch[at]), Start: at, End: at + 1})
			scratch[at] = '0'
			if end > p {
				p = end
			} else {
				p++
			}
		}
	}
	pass(SIGN, (*numberScanner).exponentSign)
	pass(SIGN, (*numberScanner).leadingSign)
	pass(DECIMAL_POINT, (*numberScanner).decimalPoint)
	return scratch, toks
}
