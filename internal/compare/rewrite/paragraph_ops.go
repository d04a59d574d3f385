package rewrite

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/vortex/supercompare/internal/ooxml"
)

// InsertParagraph clones modPara and wraps it as a whole-paragraph
// insertion: every direct run is wrapped in <w:ins>, and the paragraph
// mark itself (pPr/rPr) is marked inserted so accepting the revision also
// accepts the new paragraph break. The clone is detached; the caller
// splices it into the original tree at the position the surrounding
// anchors dictate.
func InsertParagraph(modPara *ooxml.Paragraph, opts Options) *etree.Element {
	return InsertParagraphAs(modPara, "ins", 0, opts)
}

// InsertParagraphAs is InsertParagraph generalized to the moveTo variant:
// when moveID is non-zero, tag should be "moveTo" and the wrapper carries
// a shared w:id linking it to the corresponding moveFrom.
func InsertParagraphAs(modPara *ooxml.Paragraph, tag string, moveID int, opts Options) *etree.Element {
	cloned := modPara.Clone()
	el := cloned.Element()
	color := colorInsertHex
	if moveID > 0 {
		color = colorMoveHex
	}
	wrapDirectRuns(el, tag, moveID, opts, color, false)
	markParagraphMark(el, tag, moveID, opts)
	return el
}

// DeleteParagraphInPlace wraps every direct run of origPara in <w:del>
// (converting their text to delText) and marks the paragraph mark
// deleted, mutating the original tree in place.
func DeleteParagraphInPlace(origPara *ooxml.Paragraph, opts Options) {
	DeleteParagraphInPlaceAs(origPara, "del", 0, opts)
}

// DeleteParagraphInPlaceAs is DeleteParagraphInPlace generalized to the
// moveFrom variant: when moveID is non-zero, tag should be "moveFrom".
func DeleteParagraphInPlaceAs(origPara *ooxml.Paragraph, tag string, moveID int, opts Options) {
	el := origPara.Element()
	for _, r := range directRunChildren(el) {
		ooxml.NewRun(r).ConvertTextToDelText()
	}
	color := colorDeleteHex
	if moveID > 0 {
		color = colorMoveHex
	}
	wrapDirectRuns(el, tag, moveID, opts, color, true)
	markParagraphMark(el, tag, moveID, opts)
}

func directRunChildren(el *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Space == "w" && c.Tag == "r" {
			out = append(out, c)
		}
	}
	return out
}

// wrapDirectRuns collects el's direct <w:r> children into a single
// wrapper element (ins/del/moveFrom/moveTo), replacing them in place.
func wrapDirectRuns(el *etree.Element, tag string, moveID int, opts Options, color string, strike bool) {
	runs := directRunChildren(el)
	if len(runs) == 0 {
		return
	}
	if opts.ForceBrandColors {
		for _, r := range runs {
			applyBrandColor(ooxml.NewRun(r), color, strike)
		}
	}

	wrapper := etree.NewElement(tag)
	wrapper.Space = "w"
	wrapper.CreateAttr("w:author", opts.author())
	wrapper.CreateAttr("w:date", opts.date())
	if moveID > 0 {
		wrapper.CreateAttr("w:id", strconv.Itoa(moveID))
	}

	isTarget := func(c *etree.Element) bool {
		for _, r := range runs {
			if r == c {
				return true
			}
		}
		return false
	}
	spliceChildren(el, isTarget, []*etree.Element{wrapper})
	for _, r := range runs {
		wrapper.AddChild(r)
	}
}

// markParagraphMark records the paragraph-mark revision (pPr/rPr/ins,
// pPr/rPr/del, or the moveFrom/moveTo variants) that tells a conformant
// reader the paragraph break itself was inserted, deleted, or moved, not
// just its runs.
func markParagraphMark(el *etree.Element, tag string, moveID int, opts Options) {
	pPr := el.FindElement("w:pPr")
	if pPr == nil {
		pPr = etree.NewElement("pPr")
		pPr.Space = "w"
		if children := el.ChildElements(); len(children) > 0 {
			el.InsertChild(children[0], pPr)
		} else {
			el.AddChild(pPr)
		}
	}
	rPr := pPr.FindElement("w:rPr")
	if rPr == nil {
		rPr = pPr.CreateElement("w:rPr")
	}
	marker := rPr.CreateElement("w:" + tag)
	marker.CreateAttr("w:author", opts.author())
	marker.CreateAttr("w:date", opts.date())
	if moveID > 0 {
		marker.CreateAttr("w:id", strconv.Itoa(moveID))
	}
}
