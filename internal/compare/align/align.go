// Package align implements the two-stage aligner: patience anchoring
// over hash-unique-enough matches, falling back to a Myers edit-distance
// alignment between and around the anchors. The same algorithm serves both
// paragraph-level alignment (keyed by normalized text + style signature)
// and run/token-level alignment (keyed by token text) — callers only
// supply the key sequences.
package align

// Pair is one row of an alignment: OrigIdx/ModIdx index into the two input
// sequences, or -1 to mark a gap on that side (an insertion when OrigIdx
// is -1, a deletion when ModIdx is -1).
type Pair struct {
	OrigIdx int
	ModIdx  int
}

// Align aligns two key sequences, returning one Pair per consumed element
// of either side. orig_idxs restricted to non-gaps is strictly increasing
// and a subsequence of [0,len(keyA)); same for mod_idxs — the aligner
// soundness invariant.
func Align(keyA, keyB []string) []Pair {
	if len(keyA) == 0 && len(keyB) == 0 {
		return nil
	}
	anchors := findAnchors(keyA, keyB)

	var result []Pair
	doneI, doneJ := 0, 0
	for _, a := range anchors {
		result = append(result, myersAlign(keyA[doneI:a.i], keyB[doneJ:a.j], doneI, doneJ)...)
		result = append(result, Pair{a.i, a.j})
		doneI, doneJ = a.i+1, a.j+1
	}
	result = append(result, myersAlign(keyA[doneI:], keyB[doneJ:], doneI, doneJ)...)
	return result
}
