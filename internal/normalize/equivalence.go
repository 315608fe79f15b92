package normalize

import (
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

// EditRatio returns a similarity ratio on a 0–100 scale between two already-
// normalized tokens, via Levenshtein edit distance normalized by the longer
// token's length (spec §4.1's "edit-ratio similarity" is an indel/Levenshtein
// ratio, not a phonetic or prefix-weighted measure — matchr.JaroWinkler and
// DoubleMetaphone are excluded here for that reason; JaroWinkler's prefix
// weighting admits and rejects different near-threshold pairs than the
// spec's stated metric).
func EditRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := matchr.Levenshtein(a, b)
	ratio := (1 - float64(dist)/float64(maxLen)) * 100
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

// TokensMatch implements tokens_match(a, b, threshold) (spec §4.1): true if
// any of exact match, edit-ratio similarity, numeric equivalence,
// hyphen/compounding equivalence, unit equivalence, or contraction
// equivalence holds. a and b must already be normalized tokens.
func TokensMatch(a, b string, threshold float64) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	if EditRatio(a, b) >= threshold {
		return true
	}
	if numericEquivalent(a, b) {
		return true
	}
	if hyphenEquivalent(a, b) {
		return true
	}
	if unitEquivalent(a, b) {
		return true
	}
	if contractionEquivalent(a, b) {
		return true
	}
	return false
}

// numericEquivalent implements the three numeric-equivalence rules of spec
// §4.1: same numeric value after stripping commas/spaces; digit-form vs.
// spelled cardinal/ordinal; year-form vs. "century + remainder" spelled
// form.
func numericEquivalent(a, b string) bool {
	an, aIsNum := parseNumber(a)
	bn, bIsNum := parseNumber(b)
	if aIsNum && bIsNum {
		return an == bn
	}

	// digit-form vs spelled cardinal/ordinal
	if aIsNum && spelledValue(b) == an {
		return true
	}
	if bIsNum && spelledValue(a) == bn {
		return true
	}

	// year-form: "1912" vs "nineteen twelve", where the caller passes the
	// two spelled words joined by a space. A collapsed single token such as
	// "nineteentwelve" is not recognized (see yearSpelledValue).
	if aIsNum && an >= 1000 && an < 10000 {
		if yearSpelledValue(b) == an {
			return true
		}
	}
	if bIsNum && bn >= 1000 && bn < 10000 {
		if yearSpelledValue(a) == bn {
			return true
		}
	}
	return false
}

// parseNumber parses a token stripped of commas/spaces as an integer.
func parseNumber(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// spelledValue resolves a single spelled-out cardinal or ordinal word to its
// numeric value, or -1 if unrecognized.
func spelledValue(s string) int64 {
	if v, ok := cardinals[s]; ok {
		return v
	}
	if v, ok := ordinals[s]; ok {
		return v
	}
	return -1
}

// yearSpelledValue resolves a two-word "century remainder" spelled form
// (e.g. "nineteentwelve" after hyphen/space collapse is not expected here;
// callers pass the space-joined multi-token form) to a 4-digit year value,
// or -1 if it doesn't parse as one.
func yearSpelledValue(s string) int64 {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return -1
	}
	century, ok := cardinals[parts[0]]
	if !ok || century < 10 || century > 99 {
		return -1
	}
	remainder, ok := cardinals[parts[1]]
	if !ok || remainder < 0 || remainder > 99 {
		return -1
	}
	return century*100 + remainder
}

// hyphenEquivalent implements hyphen/compounding equivalence: stripping '-'
// and spaces from both yields equal strings of length >= 4 (spec §4.1).
func hyphenEquivalent(a, b string) bool {
	sa := stripHyphenSpace(a)
	sb := stripHyphenSpace(b)
	return sa == sb && len(sa) >= 4
}

func stripHyphenSpace(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// unitEquivalent implements unit equivalence: canonicalizing both through
// the unit-abbreviation table yields the same full-form (spec §4.1).
func unitEquivalent(a, b string) bool {
	fa, aok := canonicalUnit(a)
	fb, bok := canonicalUnit(b)
	if !aok || !bok {
		return false
	}
	return fa == fb
}

// contractionEquivalent implements contraction equivalence: expanding
// either token via the fixed table yields a multi-token form equal (after
// whitespace normalization) to the other side (spec §4.1). This handles the
// case where the caller is comparing a contraction token directly against
// the other side's already-joined two-word span text.
func contractionEquivalent(a, b string) bool {
	if expanded, ok := expandContraction(a); ok && expanded == b {
		return true
	}
	if expanded, ok := expandContraction(b); ok && expanded == a {
		return true
	}
	return false
}

// ExpandContraction exposes the contraction table. The Span Scorer itself
// matches a contraction against a multi-word span through TokensMatch, by
// passing two window words joined with a space.
func ExpandContraction(t string) (string, bool) { return expandContraction(t) }

// CanonicalUnit exposes the unit-abbreviation table.
func CanonicalUnit(t string) (string, bool) { return canonicalUnit(t) }
