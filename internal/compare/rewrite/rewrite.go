// Package rewrite implements the revision rewriter: given the aligned
// opcodes for a matched paragraph pair, it splits the original paragraph's
// runs at opcode boundaries and wraps the resulting pieces in <w:ins>,
// <w:del>, <w:moveFrom>, or <w:moveTo>, leaving equal runs untouched. It
// operates on the original package's live XML tree; the modified package
// is only a source of clonable fragments for insertions.
package rewrite

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/vortex/supercompare/internal/compare/align"
	"github.com/vortex/supercompare/internal/compare/cmperr"
	"github.com/vortex/supercompare/internal/compare/model"
	"github.com/vortex/supercompare/internal/ooxml"
)

// OpKind is the four-primitive-plus-move opcode tag the rewriter
// consumes: the aligner only ever produces Equal/Delete/Insert; the move
// detector promotes some Delete/Insert rows to the move variants.
type OpKind int

const (
	KindEqual OpKind = iota
	KindDelete
	KindInsert
	KindMoveDelete
	KindMoveInsert
)

// TaggedOpcode is an align.Opcode annotated with its move classification.
// MoveID is 0 for non-move opcodes and the shared moveFrom/moveTo id
// otherwise.
type TaggedOpcode struct {
	align.Opcode
	Kind   OpKind
	MoveID int
}

// DefaultAuthor is the revision author used when Options.Author is empty.
// engine.DefaultAuthor aliases this value; keep them in sync by changing
// it here only.
const DefaultAuthor = "Erik's Super Compare"

// Options configures the revision wrappers the rewriter emits.
type Options struct {
	Author           string
	Timestamp        time.Time
	ForceBrandColors bool
}

func (o Options) author() string {
	if o.Author == "" {
		return DefaultAuthor
	}
	return o.Author
}

func (o Options) date() string {
	ts := o.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.UTC().Format(time.RFC3339)
}

// Paragraph rewrites a matched paragraph pair in place: origPara is
// mutated (runs split and wrapped); modRuns supplies the insertion
// material. ops must already cover [0, len(origText)) and
// [0, len(modText)) contiguously (see align.CharOpcodes).
//
// When an edit boundary falls inside a run that cannot be split without
// losing content (SplittableLossless is false), Paragraph returns an
// UnsupportedContent error before touching the tree; the caller is
// expected to fall back to a whole-paragraph delete+insert.
func Paragraph(origPara *ooxml.Paragraph, origRuns, modRuns []*model.RunInfo, ops []TaggedOpcode, opts Options) error {
	if len(ops) == 0 {
		return nil
	}

	origCuts := cutPoints(ops, true)
	modCuts := cutPoints(ops, false)
	if !splitSafe(origRuns, origCuts) || !splitSafe(modRuns, modCuts) {
		return cmperr.Unsupported("run content other than text crosses an edit boundary")
	}

	origLeaves := flattenAndSplit(origRuns, origCuts)
	modLeaves := flattenAndSplit(modRuns, modCuts)

	var newChildren []*etree.Element
	for _, op := range ops {
		switch op.Kind {
		case KindEqual:
			for _, l := range leavesInRange(origLeaves, op.OStart, op.OEnd) {
				newChildren = append(newChildren, l.run.Element())
			}
		case KindDelete, KindMoveDelete:
			leaves := leavesInRange(origLeaves, op.OStart, op.OEnd)
			if len(leaves) == 0 {
				continue
			}
			runs := make([]*ooxml.Run, len(leaves))
			for i, l := range leaves {
				l.run.ConvertTextToDelText()
				runs[i] = l.run
			}
			tag := "del"
			if op.Kind == KindMoveDelete {
				tag = "moveFrom"
			}
			wrapper := wrapRuns(tag, runs, opts, op.MoveID)
			if opts.ForceBrandColors {
				for _, r := range runs {
					applyBrandColor(r, colorFor(op.Kind), true)
				}
			}
			newChildren = append(newChildren, wrapper)
		case KindInsert, KindMoveInsert:
			leaves := leavesInRange(modLeaves, op.MStart, op.MEnd)
			if len(leaves) == 0 {
				continue
			}
			runs := make([]*ooxml.Run, len(leaves))
			for i, l := range leaves {
				runs[i] = l.run.Clone()
			}
			tag := "ins"
			if op.Kind == KindMoveInsert {
				tag = "moveTo"
			}
			wrapper := wrapRuns(tag, runs, opts, op.MoveID)
			if opts.ForceBrandColors {
				for _, r := range runs {
					applyBrandColor(r, colorFor(op.Kind), false)
				}
			}
			newChildren = append(newChildren, wrapper)
		}
	}

	replaceRunChildren(origPara.Element(), newChildren)
	return nil
}

func wrapRuns(tag string, runs []*ooxml.Run, opts Options, moveID int) *etree.Element {
	el := etree.NewElement(tag)
	el.Space = "w"
	el.CreateAttr("w:author", opts.author())
	el.CreateAttr("w:date", opts.date())
	if moveID > 0 {
		el.CreateAttr("w:id", strconv.Itoa(moveID))
	}
	for _, r := range runs {
		el.AddChild(r.Element())
	}
	return el
}
