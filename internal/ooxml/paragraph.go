// Package ooxml provides the low-level XML element access the compare
// engine needs over WordprocessingML (the OPC container reader/writer lives
// in its opc subpackage): paragraph/run-level accessors built directly on beevik/etree, resolving
// namespaced elements through etree's prefix-aware Space/Tag model.
package ooxml

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Paragraph wraps a <w:p> element.
type Paragraph struct {
	el *etree.Element
}

// NewParagraph wraps an existing <w:p> element.
func NewParagraph(el *etree.Element) *Paragraph { return &Paragraph{el: el} }

// Element returns the backing <w:p> element.
func (p *Paragraph) Element() *etree.Element { return p.el }

// PPr returns the paragraph's <w:pPr>, or nil if absent.
func (p *Paragraph) PPr() *etree.Element {
	return p.el.FindElement("w:pPr")
}

// Runs returns the paragraph's direct <w:r> children, in document order.
// Runs nested inside <w:hyperlink> or <w:smartTag> wrappers are
// intentionally excluded from the flat paragraph text view — tracked
// changes do not reach inside those wrappers in this engine.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, child := range p.el.ChildElements() {
		if child.Space == "w" && child.Tag == "r" {
			runs = append(runs, NewRun(child))
		}
	}
	return runs
}

// Text returns the paragraph's concatenated visible text: the
// concatenation of every run's Text(). Concatenating all RunInfo.text
// values reproduces this exactly, per the paragraph/run invariant.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs() {
		b.WriteString(r.Text())
	}
	return b.String()
}

// Clone returns a detached deep copy of the paragraph.
func (p *Paragraph) Clone() *Paragraph {
	return &Paragraph{el: p.el.Copy()}
}

// StyleSignature computes a stable SHA-1 fingerprint of paragraph-level
// formatting: style id, numbering id/level, indentation, and justification.
// Two paragraphs with equal normalized text but different signatures must
// not be aligned as equal by the aligner.
func (p *Paragraph) StyleSignature() string {
	pPr := p.PPr()
	var props []string

	if pPr != nil {
		if v := valAttr(pPr.FindElement("w:pStyle")); v != "" {
			props = append(props, "pStyle:"+v)
		}
		if numPr := pPr.FindElement("w:numPr"); numPr != nil {
			if v := valAttr(numPr.FindElement("w:ilvl")); v != "" {
				props = append(props, "ilvl:"+v)
			}
			if v := valAttr(numPr.FindElement("w:numId")); v != "" {
				props = append(props, "numId:"+v)
			}
		}
		if ind := pPr.FindElement("w:ind"); ind != nil {
			if v := attrOf(ind, "w:left"); v != "" {
				props = append(props, "indLeft:"+v)
			}
			if v := attrOf(ind, "w:right"); v != "" {
				props = append(props, "indRight:"+v)
			}
		}
		if v := valAttr(pPr.FindElement("w:jc")); v != "" {
			props = append(props, "jc:"+v)
		}
	}

	sort.Strings(props)
	sum := sha1.Sum([]byte(strings.Join(props, "|")))
	return hex.EncodeToString(sum[:])
}

func valAttr(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return attrOf(el, "w:val")
}

func attrOf(el *etree.Element, qualified string) string {
	prefix, local, _ := strings.Cut(qualified, ":")
	if a := el.SelectAttr(local); a != nil && (el.Space == prefix || prefix == "w") {
		return a.Value
	}
	for _, a := range el.Attr {
		if a.Space == prefix && a.Key == local {
			return a.Value
		}
	}
	return ""
}
