package align

import "github.com/vortex/supercompare/internal/compare/text"

// ParagraphKey builds the hash key two paragraphs must share to align as
// equal: normalized text and style signature both have to match, so a
// pure reformat (same text, different style) surfaces as delete+insert
// unless the move detector reclaims it.
func ParagraphKey(normalized, styleSig string) string {
	return normalized + "|" + styleSig
}

// OpTag is the opcode kind the rewriter consumes. Move variants are
// introduced later by the move detector; the aligner only ever
// produces these three.
type OpTag int

const (
	OpEqual OpTag = iota
	OpDelete
	OpInsert
)

// Opcode is a character interval over the original and modified
// paragraph texts. For OpDelete, MStart == MEnd (no modified text is
// consumed); for OpInsert, OStart == OEnd. Consecutive opcodes of the
// same tag are merged, and the full opcode list's intervals exactly
// cover both texts.
type Opcode struct {
	Tag          OpTag
	OStart, OEnd int
	MStart, MEnd int
}

// CharOpcodes aligns two paragraph texts at the run level: tokenizes both
// with the spacing-preserving tokenizer, aligns the token streams, then
// projects the token-index alignment into merged character-interval
// opcodes.
func CharOpcodes(origText, modText string) []Opcode {
	origToks := text.TokenizePreserveSpacing(origText)
	modToks := text.TokenizePreserveSpacing(modText)
	pairs := Align(origToks, modToks)

	origOffsets := cumulativeLengths(origToks)
	modOffsets := cumulativeLengths(modToks)

	var opcodes []Opcode
	oCursor, mCursor := 0, 0
	for _, p := range pairs {
		switch {
		case p.OrigIdx >= 0 && p.ModIdx >= 0:
			oStart, oEnd := origOffsets[p.OrigIdx], origOffsets[p.OrigIdx+1]
			mStart, mEnd := modOffsets[p.ModIdx], modOffsets[p.ModIdx+1]
			opcodes = appendOrMerge(opcodes, OpEqual, oStart, oEnd, mStart, mEnd)
			oCursor, mCursor = oEnd, mEnd
		case p.OrigIdx >= 0:
			oStart, oEnd := origOffsets[p.OrigIdx], origOffsets[p.OrigIdx+1]
			opcodes = appendOrMerge(opcodes, OpDelete, oStart, oEnd, mCursor, mCursor)
			oCursor = oEnd
		default:
			mStart, mEnd := modOffsets[p.ModIdx], modOffsets[p.ModIdx+1]
			opcodes = appendOrMerge(opcodes, OpInsert, oCursor, oCursor, mStart, mEnd)
			mCursor = mEnd
		}
	}
	return opcodes
}

func appendOrMerge(opcodes []Opcode, tag OpTag, oStart, oEnd, mStart, mEnd int) []Opcode {
	if n := len(opcodes); n > 0 {
		last := &opcodes[n-1]
		if last.Tag == tag && last.OEnd == oStart && last.MEnd == mStart {
			last.OEnd = oEnd
			last.MEnd = mEnd
			return opcodes
		}
	}
	return append(opcodes, Opcode{Tag: tag, OStart: oStart, OEnd: oEnd, MStart: mStart, MEnd: mEnd})
}

func cumulativeLengths(tokens []string) []int {
	offs := make([]int, len(tokens)+1)
	for i, t := range tokens {
		offs[i+1] = offs[i] + len(t)
	}
	return offs
}
