// Package names canonicalizes player names so the same person matches
// across data sources that disagree on accents, punctuation, and
// generational suffixes.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonLetterRe = regexp.MustCompile(`[^a-z\s]`)
	suffixRe    = regexp.MustCompile(`\b(jr|sr|ii|iii|iv)\b`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Normalize reduces a name to its matching key: ASCII lowercase letters
// and single spaces, suffix tokens dropped. "Luka Dončić" and
// "luka doncic" both come out "luka doncic"; "Jaren Jackson Jr." becomes
// "jaren jackson".
func Normalize(name string) string {
	s := strings.ToLower(foldDiacritics(name))
	s = nonLetterRe.ReplaceAllString(s, "")
	s = suffixRe.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// foldDiacritics maps accented letters to their ASCII base: decompose,
// drop combining marks, recompose. The transformer chain carries state,
// so build it per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Tokens splits a normalized name into its words.
func Tokens(name string) []string {
	normalized := Normalize(name)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}
