package names

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Stephen Curry", "stephen curry"},
		{"diacritics folded", "Luka Dončić", "luka doncic"},
		{"accented vowels", "Nikola Jokić", "nikola jokic"},
		{"punctuation stripped", "P.J. Washington", "pj washington"},
		{"jr suffix", "Jaren Jackson Jr.", "jaren jackson"},
		{"sr suffix", "Tim Hardaway Sr.", "tim hardaway"},
		{"roman numeral", "Trey Murphy III", "trey murphy"},
		{"iv suffix", "Lonnie Walker IV", "lonnie walker"},
		{"extra whitespace", "  Jalen   Green ", "jalen green"},
		{"hyphenated", "Shai Gilgeous-Alexander", "shai gilgeousalexander"},
		{"empty", "", ""},
		{"digits dropped", "Agent 00", "agent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Luka Dončić")
	want := []string{"luka", "doncic"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}

	if toks := Tokens("   "); toks != nil {
		t.Errorf("Tokens on blank = %v, want nil", toks)
	}
}
