package slots

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestDisambiguateNumbers(t *testing.T) {
	tests := []struct {
		text    string
		leading bool
		scratch string
	}{
		{"3+-5", false, "3+05"},
		{"3--5", false, "3-05"},
		{"-1", false, "01"},
		{"1e-6", false, "1e06"},
		{"1.5", false, "105"},
		{"1.0.3", false, "1.003"},
		{"x1.a", false, "x1.a"},
		{"x = -1", false, "x = 01"},
		{"a-1", false, "a-1"},
		{"2*-0x1F", false, "2*00x1F"},
		{"2*-0b12", false, "2*-0b12"},
		{"1.5j+2", false, "105j+2"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			scratch, _ := disambiguateNumbers([]rune(tt.text), tt.leading)
			be.Equal(t, string(scratch), tt.scratch)
		})
	}
}

func TestDisambiguateNumbersTokens(t *testing.T) {
	_, toks := disambiguateNumbers([]rune("1e-6+-2.5"), false)
	be.Equal(t, toks, []Token{
		{Type: SIGN, Value: "-", Start: 2, End: 3},
		{Type: SIGN, Value: "-", Start: 5, End: 6},
		{Type: DECIMAL_POINT, Value: ".", Start: 7, End: 8},
	})
}

func TestDisambiguateLeadingRegion(t *testing.T) {
	// After a closing bracket a sign is a binary operator.
	scratch, _ := disambiguateNumbers([]rune("-1"), true)
	be.Equal(t, string(scratch), "-1")
	be.Equal(t, parseState("f(x)-1", ""), "{f}_({x})_{}-{1}")
}
