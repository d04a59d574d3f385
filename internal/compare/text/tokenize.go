// Package text provides the normalization and tokenization primitives the
// aligner and move detector build on: pure functions over strings with no
// knowledge of OOXML.
package text

import (
	"regexp"
	"strings"
)

// tokenRe splits a string into maximal runs of word characters, maximal
// runs of whitespace, or a single punctuation character — mirroring the
// \w+|\s+|[^\w\s] decomposition the reference tokenizer uses, so a
// concatenation of tokens always reproduces the input exactly.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+|\s+|[^\p{L}\p{N}_\s]`)

// TokenizePreserveSpacing splits s into tokens whose concatenation equals s
// exactly. Used by the run-level aligner, where token boundaries become
// character-interval boundaries in the rewriter.
func TokenizePreserveSpacing(s string) []string {
	if s == "" {
		return nil
	}
	return tokenRe.FindAllString(s, -1)
}

// Granularity selects the unit TokenizeForDiff decomposes text into.
type Granularity int

const (
	GranularityWord Granularity = iota
	GranularityChar
)

// TokenizeForDiff tokenizes s at either word or character granularity.
// Word granularity is TokenizePreserveSpacing; character granularity
// decomposes into one token per rune, also spacing-preserving.
func TokenizeForDiff(s string, g Granularity) []string {
	if g == GranularityChar {
		if s == "" {
			return nil
		}
		runes := []rune(s)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	return TokenizePreserveSpacing(s)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeForCompare collapses all whitespace to single spaces, trims, and
// lowercases s. Used only for alignment keys and shingling — never for
// output, per the normalization invariant.
func NormalizeForCompare(s string) string {
	if s == "" {
		return ""
	}
	collapsed := whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(collapsed))
}

// Shingles returns the set of length-k contiguous sliding windows over
// tokens, each window's tokens joined by a single space. Returns the empty
// set when len(tokens) < k.
func Shingles(tokens []string, k int) map[string]struct{} {
	out := make(map[string]struct{})
	if k <= 0 || len(tokens) < k {
		return out
	}
	for i := 0; i+k <= len(tokens); i++ {
		out[strings.Join(tokens[i:i+k], " ")] = struct{}{}
	}
	return out
}

// Jaccard returns |a∩b| / |a∪b|, with the conventions jaccard(∅,∅)=1 and
// jaccard(∅,x)=0 for any non-empty x.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
