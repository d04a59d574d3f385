package ooxml

import (
	"strings"

	"github.com/beevik/etree"
)

// atomKind distinguishes a run's text-bearing children from the fixed
// (non-splittable) children that still occupy a character position in the
// paragraph's logical text — the same text-atom model go-docx's
// replacetext.go uses to map XML children to character offsets, generalized
// here so the rewriter can split at an arbitrary offset rather than only at
// a literal-text match.
type atomKind int

const (
	atomText atomKind = iota // <w:t>
	atomTab                  // <w:tab/>
	atomBreak                // <w:br/> or <w:cr/>
	atomSym                  // <w:sym/>
)

// runAtom is one child of a <w:r> together with the text it contributes to
// the run's logical string. Fixed children contribute a single sentinel
// rune so offsets stay meaningful across run splitting; the sentinel itself
// is never emitted back out — splitting reproduces the original element.
type runAtom struct {
	kind atomKind
	elem *etree.Element
	text string // the literal text for atomText; a single sentinel rune otherwise
}

// Sentinel runes standing in for non-text run children during alignment.
// They must be characters that cannot appear in normal document text so
// the tokenizer and aligner treat them as ordinary, unambiguous tokens.
const (
	tabSentinel   = '	' // literal tab; already whitespace under normalize_for_compare
	breakSentinel = '\n'
	symSentinel   = '￼' // object replacement character
)

// Run wraps a <w:r> element.
type Run struct {
	el *etree.Element
}

// NewRun wraps an existing <w:r> element.
func NewRun(el *etree.Element) *Run { return &Run{el: el} }

// Element returns the backing <w:r> element.
func (r *Run) Element() *etree.Element { return r.el }

// RPr returns this run's <w:rPr> element, or nil if absent.
func (r *Run) RPr() *etree.Element {
	return r.el.FindElement("w:rPr")
}

func (r *Run) atoms() []runAtom {
	var atoms []runAtom
	for _, child := range r.el.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "t":
			atoms = append(atoms, runAtom{kind: atomText, elem: child, text: child.Text()})
		case "tab":
			atoms = append(atoms, runAtom{kind: atomTab, elem: child, text: string(tabSentinel)})
		case "br", "cr":
			atoms = append(atoms, runAtom{kind: atomBreak, elem: child, text: string(breakSentinel)})
		case "sym":
			atoms = append(atoms, runAtom{kind: atomSym, elem: child, text: string(symSentinel)})
		}
	}
	return atoms
}

// Text returns the run's logical text: the concatenation of its <w:t>
// contents with tab/break children rendered as sentinel characters.
func (r *Run) Text() string {
	var b strings.Builder
	for _, a := range r.atoms() {
		b.WriteString(a.text)
	}
	return b.String()
}

// Clone returns a detached deep copy of the run, suitable for inserting
// into the original tree when materializing an insertion.
func (r *Run) Clone() *Run {
	return &Run{el: r.el.Copy()}
}

// cloneRPr deep-copies this run's rPr subtree, or returns nil if absent.
func (r *Run) cloneRPr() *etree.Element {
	rpr := r.RPr()
	if rpr == nil {
		return nil
	}
	return rpr.Copy()
}

// SplitAt splits the run at the given character offset (0 <= offset <=
// len(r.Text())) into a left and right run. The rPr subtree is cloned into
// the right half so both sides carry identical formatting. The split is a
// pure function: it does not mutate r or detach it from its parent; callers
// replace the original run with the returned pair.
//
// Splitting never divides a fixed atom (tab/break): an offset that lands
// inside one is not possible since those atoms are exactly one character.
func (r *Run) SplitAt(offset int) (*Run, *Run) {
	atoms := r.atoms()
	leftEl := etree.NewElement("r")
	leftEl.Space = "w"
	rightEl := etree.NewElement("r")
	rightEl.Space = "w"

	if rpr := r.cloneRPr(); rpr != nil {
		leftEl.AddChild(rpr)
		rightEl.AddChild(rpr.Copy())
	}

	pos := 0
	for _, a := range atoms {
		start := pos
		end := pos + len(a.text)
		pos = end

		switch {
		case end <= offset:
			leftEl.AddChild(a.elem.Copy())
		case start >= offset:
			rightEl.AddChild(a.elem.Copy())
		default:
			// offset falls inside this atom; only atomText can straddle it.
			lc, rc := splitTextAtom(a.elem, offset-start)
			leftEl.AddChild(lc)
			rightEl.AddChild(rc)
		}
	}

	return &Run{el: leftEl}, &Run{el: rightEl}
}

// splitTextAtom splits a <w:t> element's text content at a byte offset,
// returning two detached <w:t> elements whose xml:space is set to
// "preserve" whenever the split could introduce leading/trailing
// whitespace that a conformant reader would otherwise collapse.
func splitTextAtom(t *etree.Element, offset int) (*etree.Element, *etree.Element) {
	text := t.Text()
	left := etree.NewElement("t")
	left.Space = "w"
	right := etree.NewElement("t")
	right.Space = "w"

	leftText, rightText := text[:offset], text[offset:]
	left.SetText(leftText)
	right.SetText(rightText)
	ensurePreserveSpace(left, leftText)
	ensurePreserveSpace(right, rightText)
	return left, right
}

// ensurePreserveSpace sets xml:space="preserve" when text has leading or
// trailing whitespace that would otherwise be collapsed on the next parse.
func ensurePreserveSpace(t *etree.Element, text string) {
	if text == "" {
		return
	}
	if text[0] == ' ' || text[0] == '\t' || text[len(text)-1] == ' ' || text[len(text)-1] == '\t' {
		t.CreateAttr("xml:space", "preserve")
	}
}

// SplittableLossless reports whether SplitAt reproduces this run's content
// exactly: only rPr, text, tab, break, and symbol children survive a split, so a
// run carrying anything else (a drawing, a field char, an embedded object)
// cannot be split without losing it.
func (r *Run) SplittableLossless() bool {
	for _, child := range r.el.ChildElements() {
		if child.Space != "w" {
			return false
		}
		switch child.Tag {
		case "rPr", "t", "tab", "br", "cr", "sym":
		default:
			return false
		}
	}
	return true
}

// ConvertTextToDelText renames this run's <w:t> children to <w:delText>,
// the OOXML convention for run text carried inside a <w:del> wrapper.
// Tab/break children are left untouched.
func (r *Run) ConvertTextToDelText() {
	for _, child := range r.el.ChildElements() {
		if child.Space == "w" && child.Tag == "t" {
			child.Tag = "delText"
		}
	}
}

// EnsureRPr returns this run's <w:rPr>, creating and inserting it as the
// first child if absent — the position the schema requires.
func (r *Run) EnsureRPr() *etree.Element {
	if rpr := r.RPr(); rpr != nil {
		return rpr
	}
	rpr := etree.NewElement("rPr")
	rpr.Space = "w"
	if children := r.el.ChildElements(); len(children) > 0 {
		r.el.InsertChild(children[0], rpr)
	} else {
		r.el.AddChild(rpr)
	}
	return rpr
}
