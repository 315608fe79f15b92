// Package normalize implements token-level text canonicalization and token
// equivalence for the alignment core (spec §4.1): Unicode folding, case,
// quote/dash normalization, hyphen collapse, acronym-dot removal,
// contraction expansion, numeral/word equivalence, and unit-abbreviation
// canonicalization.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	wordRunRe  = regexp.MustCompile(`[\p{L}\p{N}]+(?:'[\p{L}]+)?`)
	acronymRe  = regexp.MustCompile(`^(?:[A-Za-z]\.){2,}$`)
	innerHyRe  = regexp.MustCompile(`(\p{L})-(\p{L})`)
	punctStrip = regexp.MustCompile(`[^\p{L}\p{N}']+`)
)

// curlyQuoteReplacer maps curly quotes and em/en dashes to their straight
// equivalents, step (3) of single-token normalization.
var curlyQuoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", "\"", "”", "\"", "„", "\"", "‟", "\"",
	"–", "-", "—", "-",
)

// Token applies the single-token normalization pipeline (spec §4.1, steps
// 1–7) to one surface token and returns its comparison form. Normalization
// never fails; an empty result is a valid (and discardable) output.
func Token(s string) string {
	// (1) Unicode compatibility folding.
	s = norm.NFKC.String(s)
	// (2) lowercase.
	s = strings.ToLower(s)
	// (3) curly quotes / em-en dashes → straight quote / hyphen.
	s = curlyQuoteReplacer.Replace(s)
	// (5) strip dots from all-caps acronym shapes, before case-insensitive
	// checks below would otherwise be defeated by step (2)'s lowercasing —
	// operate on the pre-lowered acronym shape by re-deriving it from the
	// original token when it looks like one.
	if acronymRe.MatchString(strings.ToUpper(s)) {
		s = strings.ReplaceAll(s, ".", "")
	}
	// (4) collapse in-word hyphens (letter-hyphen-letter → letters joined).
	for innerHyRe.MatchString(s) {
		s = innerHyRe.ReplaceAllString(s, "$1$2")
	}
	// (6) remove punctuation except intra-word apostrophes.
	s = punctStrip.ReplaceAllString(s, "")
	// (7) trim whitespace.
	s = strings.TrimSpace(s)
	return s
}

// Tokenize extracts maximal runs of word characters (optionally containing
// an apostrophe) from raw sentence text, normalizes each, and discards empty
// results (spec §4.1 sentence tokenization).
func Tokenize(text string) []string {
	text = stripQuotation(text)
	runs := wordRunRe.FindAllString(text, -1)
	tokens := make([]string, 0, len(runs))
	for _, r := range runs {
		n := Token(r)
		if n != "" {
			tokens = append(tokens, n)
		}
	}
	return tokens
}

// stripQuotation removes embedded quotation marks (straight or curly,
// single or double) from canonical text prior to segmentation/tokenization,
// so `"Hello," he said, "world."` tokenizes identically to
// `Hello, he said, world.` (spec §6). A straight or curly apostrophe with a
// letter on both sides is part of a word ("don't") and is kept, as a
// straight apostrophe.
func stripQuotation(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		switch r {
		case '\'', '’':
			if i > 0 && i+1 < len(rs) && unicode.IsLetter(rs[i-1]) && unicode.IsLetter(rs[i+1]) {
				b.WriteRune('\'')
			}
			continue
		case '"', '‘', '‚', '‛',
			'“', '”', '„', '‟':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsNumeric reports whether a normalized token consists entirely of ASCII
// digits (used by the anchor selector's numeric priority bonus and the
// scorer's per-token weighting).
func IsNumeric(t string) bool {
	if t == "" {
		return false
	}
	for _, r := range t {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsStopword reports whether a normalized token is in the closed stopword
// list (spec §4.2/§4.3).
func IsStopword(t string) bool { return isStopword(t) }
