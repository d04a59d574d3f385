// Package move implements the shingled-hash move detector: after
// per-paragraph run alignment, non-equal spans from every paragraph pair
// feed two global pools — deletions and insertions — and this package
// matches spans across pools that are near-duplicates, promoting them to
// moves so the rewriter emits moveFrom/moveTo instead of plain
// delete/insert.
package move

import (
	"sort"

	"github.com/vortex/supercompare/internal/compare/model"
	"github.com/vortex/supercompare/internal/compare/text"
)

// Span is one non-equal interval contributed to a pool: the paragraph it
// belongs to, its token list, and its character range within that
// paragraph's text.
type Span struct {
	Path      model.Path
	Tokens    []string
	CharStart int
	CharEnd   int
}

// MovePair links a reclaimed deletion with the insertion it matches. Both
// spans retain their original intervals; the rewriter emits moveFrom on
// the deletion site and moveTo on the insertion site, both carrying ID.
type MovePair struct {
	ID  int
	Del Span
	Ins Span
}

// Options are the caller-configurable move-detection parameters.
type Options struct {
	ShingleSize      int
	JaccardThreshold float64
	MinSpanTokens    int
}

// DefaultOptions returns the detector's standard parameters.
func DefaultOptions() Options {
	return Options{ShingleSize: 5, JaccardThreshold: 0.85, MinSpanTokens: 12}
}

type eligibleSpan struct {
	span     Span
	shingles map[string]struct{}
}

// Detect matches deletions against insertions and returns the resulting
// move pairs, assigning monotonically increasing IDs starting at 1.
// Spans below MinSpanTokens are exempt and never considered for a move.
// Each deletion and each insertion participates in at most one move.
func Detect(deletions, insertions []Span, opts Options) []MovePair {
	delPool := eligible(deletions, opts)
	insPool := eligible(insertions, opts)

	// Sort deletions by shingle-set size descending (longest-first),
	// tiebreak by earlier paragraph path — the pinned determinism rule.
	sort.SliceStable(delPool, func(i, j int) bool {
		si, sj := len(delPool[i].shingles), len(delPool[j].shingles)
		if si != sj {
			return si > sj
		}
		return pathLess(delPool[i].span.Path, delPool[j].span.Path)
	})

	claimed := make([]bool, len(insPool))
	var pairs []MovePair
	nextID := 1

	for _, d := range delPool {
		best := -1
		bestScore := opts.JaccardThreshold
		for i, ins := range insPool {
			if claimed[i] {
				continue
			}
			score := text.Jaccard(d.shingles, ins.shingles)
			if score < opts.JaccardThreshold {
				continue
			}
			if best == -1 || score > bestScore || (score == bestScore && pathLess(ins.span.Path, insPool[best].span.Path)) {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			continue
		}
		claimed[best] = true
		pairs = append(pairs, MovePair{ID: nextID, Del: d.span, Ins: insPool[best].span})
		nextID++
	}
	return pairs
}

func eligible(spans []Span, opts Options) []eligibleSpan {
	var out []eligibleSpan
	for _, s := range spans {
		if len(s.Tokens) < opts.MinSpanTokens {
			continue
		}
		out = append(out, eligibleSpan{span: s, shingles: text.Shingles(s.Tokens, opts.ShingleSize)})
	}
	return out
}

func pathLess(a, b model.Path) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
