package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ORÉO!", "oreo"},
		{"  Lv Freddy?? ", "lv freddy"},
		{"Crème Brûlée", "creme brulee"},
		{"Северна Корея!", "северна корея"},
		{"snake_case-word", "snake_caseword"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"ORÉO!", "Ångström", "Ærøskøbing", "İstanbul", "naïve café", "  ЙОД  ",
		"Ⅻ roman", "ﬁne ligature", "tab\tand\nnewline", "mixed ÇaSe, punctuation...",
	}

	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		canonical, guess string
		want             bool
	}{
		{"oreo", "ORÉO!", true},
		{"lv freddy", "lv freddy plushie", true},
		{"lv freddy", "freddy", true},
		{"северна корея", "Северна Корея", true},
		{"oreo", "biscuit", false},
		{"oreo", "", false},
		{"oreo", "?!", false},
		{"", "anything", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.canonical, tt.guess), "Matches(%q, %q)", tt.canonical, tt.guess)
	}
}
