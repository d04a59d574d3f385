package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/multierr"

	"github.com/vortex/supercompare/internal/compare/align"
	"github.com/vortex/supercompare/internal/compare/model"
	"github.com/vortex/supercompare/internal/compare/move"
	"github.com/vortex/supercompare/internal/compare/rewrite"
	"github.com/vortex/supercompare/internal/compare/text"
)

// paraRef is one paragraph in a flattened story sequence, together with
// enough block context to know whether a brand-new paragraph can be
// spliced in next to it.
type paraRef struct {
	info     *model.ParagraphInfo
	block    *model.Block
	topLevel bool // block.Element is a direct child of the story root
}

// flattenParagraphs lowers a story's blocks into one paragraph sequence in
// document order, the granularity every alignment and diff stage in this
// package operates on.
func flattenParagraphs(blocks []*model.Block) []paraRef {
	var out []paraRef
	for _, b := range blocks {
		// Only bare body/story paragraphs are direct children of the story
		// root; table-cell paragraphs share their <w:tbl> block element, so
		// a brand-new one can't be spliced in as a simple sibling insert
		// (see the splice warning in compareStory).
		topLevel := b.Kind == model.BlockParagraph
		story := b.Kind == model.BlockHeader || b.Kind == model.BlockFooter
		for _, p := range b.Paragraphs {
			ref := paraRef{info: p, block: b, topLevel: topLevel}
			if story {
				// A header/footer block is the story root itself; each of its
				// paragraphs is a direct child of that root and is its own
				// splice anchor.
				ref.block = &model.Block{Kind: model.BlockParagraph, Element: p.Paragraph().Element(), Paragraphs: []*model.ParagraphInfo{p}}
				ref.topLevel = true
			}
			out = append(out, ref)
		}
	}
	return out
}

// spanKey identifies a non-equal interval for the claimed-by-a-move lookup:
// a paragraph path plus the character range within that paragraph's text.
type spanKey struct {
	path       model.Path
	start, end int
}

// compareStory runs the full align->move->rewrite pipeline over one paragraph
// sequence (the document body, or a single header/footer), mutating
// origRefs' underlying XML in place and splicing in any new paragraphs.
// It returns a combined warning error (nil if nothing was degraded).
func compareStory(origRefs, modRefs []paraRef, root *etree.Element, opts Options, stats *Stats, pairsOut *[][2]int, opCount *int) error {
	keysOrig := make([]string, len(origRefs))
	for i, r := range origRefs {
		keysOrig[i] = align.ParagraphKey(r.info.Normalized, r.info.StyleSig)
	}
	keysMod := make([]string, len(modRefs))
	for i, r := range modRefs {
		keysMod[i] = align.ParagraphKey(r.info.Normalized, r.info.StyleSig)
	}

	pairs := align.Align(keysOrig, keysMod)
	for _, p := range pairs {
		*pairsOut = append(*pairsOut, [2]int{p.OrigIdx, p.ModIdx})
	}

	replaceOf := make(map[int]int) // orig idx -> mod idx, only when styles also match
	isOrigDelete := make(map[int]bool)
	isModInsert := make(map[int]bool)
	classifyReplacePairs(pairs, origRefs, modRefs, replaceOf, isOrigDelete, isModInsert)

	replaceIdxs := make([]int, 0, len(replaceOf))
	for origIdx := range replaceOf {
		replaceIdxs = append(replaceIdxs, origIdx)
	}
	sort.Ints(replaceIdxs)

	// Pass 1: pool every non-equal span, whole-paragraph or inline, across
	// both directions so the move detector sees the whole document at once.
	var deletions, insertions []move.Span
	opcodesByOrig := make(map[int][]align.Opcode)

	for _, origIdx := range replaceIdxs {
		modIdx := replaceOf[origIdx]
		ops := align.CharOpcodes(origRefs[origIdx].info.Text, modRefs[modIdx].info.Text)
		opcodesByOrig[origIdx] = ops
		origPath := origRefs[origIdx].info.Path
		modPath := modRefs[modIdx].info.Path
		origText := origRefs[origIdx].info.Text
		modText := modRefs[modIdx].info.Text
		for _, op := range ops {
			switch op.Tag {
			case align.OpDelete:
				deletions = append(deletions, move.Span{
					Path: origPath, CharStart: op.OStart, CharEnd: op.OEnd,
					Tokens: wordTokens(origText[op.OStart:op.OEnd]),
				})
			case align.OpInsert:
				insertions = append(insertions, move.Span{
					Path: modPath, CharStart: op.MStart, CharEnd: op.MEnd,
					Tokens: wordTokens(modText[op.MStart:op.MEnd]),
				})
			}
		}
	}

	for origIdx := range origRefs {
		if !isOrigDelete[origIdx] {
			continue
		}
		p := origRefs[origIdx].info
		deletions = append(deletions, move.Span{Path: p.Path, CharStart: 0, CharEnd: len(p.Text), Tokens: wordTokens(p.Text)})
	}
	for modIdx := range modRefs {
		if !isModInsert[modIdx] {
			continue
		}
		p := modRefs[modIdx].info
		insertions = append(insertions, move.Span{Path: p.Path, CharStart: 0, CharEnd: len(p.Text), Tokens: wordTokens(p.Text)})
	}

	// Pass 2: detect moves across the whole pool.
	movePairs := move.Detect(deletions, insertions, opts.moveOptions())
	stats.Moves += len(movePairs)

	claimedDel := make(map[spanKey]int, len(movePairs))
	claimedIns := make(map[spanKey]int, len(movePairs))
	for _, mp := range movePairs {
		claimedDel[spanKey{mp.Del.Path, mp.Del.CharStart, mp.Del.CharEnd}] = mp.ID
		claimedIns[spanKey{mp.Ins.Path, mp.Ins.CharStart, mp.Ins.CharEnd}] = mp.ID
	}

	rwOpts := opts.rewriteOptions()
	var warn error

	// Pass 3a: rewrite matched/replace pairs and pure deletes in place —
	// these never need tree splicing since the node already exists. A
	// paragraph whose inline rewrite fails (content the splitter cannot
	// carry across an edit boundary) degrades to a whole-paragraph
	// delete+insert and a warning, per the failure semantics.
	for _, origIdx := range replaceIdxs {
		modIdx := replaceOf[origIdx]
		ops := opcodesByOrig[origIdx]
		origPath := origRefs[origIdx].info.Path
		modPath := modRefs[modIdx].info.Path
		insCount, delCount := 0, 0
		tagged := make([]rewrite.TaggedOpcode, len(ops))
		for i, op := range ops {
			kind := rewrite.KindEqual
			moveID := 0
			switch op.Tag {
			case align.OpDelete:
				if id, ok := claimedDel[spanKey{origPath, op.OStart, op.OEnd}]; ok {
					kind, moveID = rewrite.KindMoveDelete, id
				} else {
					kind = rewrite.KindDelete
					delCount++
				}
			case align.OpInsert:
				if id, ok := claimedIns[spanKey{modPath, op.MStart, op.MEnd}]; ok {
					kind, moveID = rewrite.KindMoveInsert, id
				} else {
					kind = rewrite.KindInsert
					insCount++
				}
			}
			tagged[i] = rewrite.TaggedOpcode{Opcode: op, Kind: kind, MoveID: moveID}
		}
		err := rewrite.Paragraph(origRefs[origIdx].info.Paragraph(), origRefs[origIdx].info.Runs, modRefs[modIdx].info.Runs, tagged, rwOpts)
		if err != nil {
			origEl := origRefs[origIdx].info.Paragraph().Element()
			rewrite.DeleteParagraphInPlace(origRefs[origIdx].info.Paragraph(), rwOpts)
			spliceAfter(origEl, rewrite.InsertParagraph(modRefs[modIdx].info.Paragraph(), rwOpts))
			stats.Deletions++
			stats.Insertions++
			*opCount += 2
			warn = appendWarn(warn, fmt.Errorf("paragraph at %v: %v; emitted as whole-paragraph delete+insert", origPath, err))
			continue
		}
		stats.Deletions += delCount
		stats.Insertions += insCount
		*opCount += len(tagged)
	}

	for origIdx := range origRefs {
		if !isOrigDelete[origIdx] {
			continue
		}
		p := origRefs[origIdx].info
		key := spanKey{p.Path, 0, len(p.Text)}
		if id, ok := claimedDel[key]; ok {
			rewrite.DeleteParagraphInPlaceAs(p.Paragraph(), "moveFrom", id, rwOpts)
		} else {
			rewrite.DeleteParagraphInPlace(p.Paragraph(), rwOpts)
			stats.Deletions++
		}
		*opCount++
	}

	// Pass 3b: splice pure inserts into the tree. Anchor each run of
	// consecutive mod-only insertions just before the next surviving
	// original paragraph's block element (or append at the story's end).
	anchorFor := buildInsertAnchors(pairs, origRefs)
	for k, p := range pairs {
		if p.ModIdx < 0 {
			continue
		}
		modIdx := p.ModIdx
		if !isModInsert[modIdx] {
			continue
		}
		mp := modRefs[modIdx].info
		key := spanKey{mp.Path, 0, len(mp.Text)}
		tag, id := "ins", 0
		if claimedID, ok := claimedIns[key]; ok {
			tag, id = "moveTo", claimedID
		} else {
			stats.Insertions++
		}
		el := rewrite.InsertParagraphAs(mp.Paragraph(), tag, id, rwOpts)
		*opCount++

		if !modRefs[modIdx].topLevel {
			warn = appendWarn(warn, fmt.Errorf("paragraph at %v inserted inside a non-top-level container was not spliced into the output tree", mp.Path))
			continue
		}
		spliceParagraph(root, anchorFor[k], el)
	}

	return warn
}

// classifyReplacePairs walks the raw alignment, grouping maximal runs of
// gap rows (pure delete/insert) between equal anchors and zipping each
// run's deletions against its insertions index-wise. A zipped pair is only
// treated as an in-place replace (eligible for inline run-level diffing)
// when both paragraphs share a style signature — a pure reformat (same
// text, different style) is never inline-diffed, since identical text
// would otherwise produce an empty diff; it stays a whole-paragraph
// delete+insert instead.
func classifyReplacePairs(pairs []align.Pair, origRefs, modRefs []paraRef, replaceOf map[int]int, isOrigDelete, isModInsert map[int]bool) {
	flush := func(delIdxs, insIdxs []int) {
		n := len(delIdxs)
		if len(insIdxs) < n {
			n = len(insIdxs)
		}
		for k := 0; k < n; k++ {
			oi, mi := delIdxs[k], insIdxs[k]
			if origRefs[oi].info.StyleSig == modRefs[mi].info.StyleSig {
				replaceOf[oi] = mi
				continue
			}
			isOrigDelete[oi] = true
			isModInsert[mi] = true
		}
		for _, oi := range delIdxs[n:] {
			isOrigDelete[oi] = true
		}
		for _, mi := range insIdxs[n:] {
			isModInsert[mi] = true
		}
	}

	var delRun, insRun []int
	for _, p := range pairs {
		if p.OrigIdx >= 0 && p.ModIdx >= 0 {
			flush(delRun, insRun)
			delRun, insRun = nil, nil
			continue
		}
		if p.OrigIdx >= 0 {
			delRun = append(delRun, p.OrigIdx)
		} else {
			insRun = append(insRun, p.ModIdx)
		}
	}
	flush(delRun, insRun)
}

// wordTokens tokenizes s and drops the pure-whitespace runs, so shingles
// are built over meaningful words only.
func wordTokens(s string) []string {
	toks := text.TokenizePreserveSpacing(s)
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// buildInsertAnchors maps each position in pairs to the original block
// element that follows it in document order — the node a freshly spliced
// paragraph should be inserted before. A nil anchor means append at the
// end of the story root.
func buildInsertAnchors(pairs []align.Pair, origRefs []paraRef) []*etree.Element {
	anchors := make([]*etree.Element, len(pairs))
	var next *etree.Element
	for i := len(pairs) - 1; i >= 0; i-- {
		anchors[i] = next
		if pairs[i].OrigIdx >= 0 {
			next = origRefs[pairs[i].OrigIdx].block.Element
		}
	}
	return anchors
}

// spliceAfter inserts el as orig's immediate next sibling, so a coarse
// fallback's replacement paragraph lands right after the one it replaces —
// this works inside table cells too, since the insertion is relative to
// the paragraph rather than the story root.
func spliceAfter(orig, el *etree.Element) {
	parent := orig.Parent()
	if parent == nil {
		return
	}
	children := parent.ChildElements()
	for i, c := range children {
		if c != orig {
			continue
		}
		if i+1 < len(children) {
			parent.InsertChild(children[i+1], el)
		} else {
			parent.AddChild(el)
		}
		return
	}
}

// spliceParagraph inserts el as a direct child of root, immediately before
// anchor (or at the end if anchor is nil or not actually a child of root).
func spliceParagraph(root, anchor, el *etree.Element) {
	if anchor != nil {
		for _, c := range root.ChildElements() {
			if c == anchor {
				root.InsertChild(anchor, el)
				return
			}
		}
	}
	root.AddChild(el)
}

// appendWarn combines non-fatal degradations into a single multierr chain
// without aborting the comparison.
func appendWarn(base, next error) error {
	return multierr.Append(base, next)
}
