// Package model implements the OOXML structural reader: it decomposes
// a package into Blocks of ParagraphInfo/RunInfo the aligner and rewriter
// operate on, without either of those components ever touching XML
// directly.
package model

import (
	"github.com/beevik/etree"

	"github.com/vortex/supercompare/internal/compare/cmperr"
	"github.com/vortex/supercompare/internal/compare/text"
	"github.com/vortex/supercompare/internal/ooxml"
	"github.com/vortex/supercompare/internal/ooxml/opc"
)

// BlockKind identifies the kind of structural unit a Block represents.
type BlockKind string

const (
	BlockParagraph       BlockKind = "paragraph"
	BlockTable           BlockKind = "table"
	BlockSectionBoundary BlockKind = "section-boundary"
	BlockHeader          BlockKind = "header"
	BlockFooter          BlockKind = "footer"
)

// Path uniquely and totally orders a paragraph within the body:
// (section index, block index, paragraph-within-block index). Header and
// footer paragraphs use (story index, 0, paragraph index), which is unique
// only within their own story and can coincide with a body path.
type Path [3]int

// RunInfo is one text run within a paragraph, carrying enough to
// reconstruct formatting without the aligner ever reading it.
type RunInfo struct {
	Text     string
	RPrXML   string // verbatim serialized <w:rPr>, opaque outside the rewriter
	StartPos int
	run      *ooxml.Run
}

// Run returns the underlying run handle. Only the rewriter may
// dereference it; the aligner treats RunInfo as an opaque token source.
func (r *RunInfo) Run() *ooxml.Run { return r.run }

// ParagraphInfo describes one paragraph and its runs.
type ParagraphInfo struct {
	Text       string
	Normalized string
	Runs       []*RunInfo
	StyleSig   string
	Path       Path
	Metadata   map[string]any
	para       *ooxml.Paragraph
}

// Paragraph returns the underlying paragraph handle, for use by the
// rewriter once an opcode has been computed against this paragraph's text.
func (p *ParagraphInfo) Paragraph() *ooxml.Paragraph { return p.para }

// Block is a top-level body child (or a header/footer document).
type Block struct {
	Kind       BlockKind
	Paragraphs []*ParagraphInfo
	Element    *etree.Element
	Metadata   map[string]any
}

// Package is an opened OOXML container together with its enumerated block
// stream. The body element is the live tree the rewriter mutates in place;
// Headers/Footers are likewise live when this Package is the "original"
// side of a comparison.
type Package struct {
	pkg     *opc.OpcPackage
	docPart *opc.XmlPart
	Body    *etree.Element
	Headers []*etree.Element
	Footers []*etree.Element
}

// OpcPackage exposes the underlying container for serialization.
func (p *Package) OpcPackage() *opc.OpcPackage { return p.pkg }

// Read parses an OOXML package from bytes, failing with a MalformedPackage
// error when the archive, the main part, or its XML is invalid.
func Read(data []byte) (*Package, error) {
	opcPkg, err := opc.OpenBytes(data)
	if err != nil {
		return nil, cmperr.Malformed("opening package: %v", err)
	}
	docPart, err := opcPkg.MainDocumentPart()
	if err != nil {
		return nil, cmperr.Malformed("reading main document part: %v", err)
	}
	body := docPart.Element().FindElement("w:body")
	if body == nil {
		return nil, cmperr.Malformed("document.xml has no <w:body>")
	}

	headerParts, err := opcPkg.HeaderParts()
	if err != nil {
		return nil, cmperr.Malformed("reading header parts: %v", err)
	}
	footerParts, err := opcPkg.FooterParts()
	if err != nil {
		return nil, cmperr.Malformed("reading footer parts: %v", err)
	}

	p := &Package{pkg: opcPkg, docPart: docPart, Body: body}
	for _, hp := range headerParts {
		p.Headers = append(p.Headers, hp.Element())
	}
	for _, fp := range footerParts {
		p.Footers = append(p.Footers, fp.Element())
	}
	return p, nil
}

// EnumerateBlocks walks the document body's direct children in document
// order, classifying paragraphs, tables (flattening cell paragraphs in
// row-major order), and section boundaries. Headers/footers are enumerated
// separately (EnumerateHeaderFooterBlocks) and compared as stories of their
// own; their paths are not disjoint from the body's.
func EnumerateBlocks(pkg *Package) []*Block {
	return enumerateBody(pkg.Body, 0)
}

// EnumerateHeaderFooterBlocks returns one Block per header/footer part,
// each containing that part's own paragraph stream. These are opt-in: the
// aligner only consumes them when the caller asks to diff headers/footers
// (headers and footers are compared only when the caller opts in).
func EnumerateHeaderFooterBlocks(pkg *Package) []*Block {
	var blocks []*Block
	for i, h := range pkg.Headers {
		blocks = append(blocks, &Block{
			Kind:       BlockHeader,
			Element:    h,
			Paragraphs: enumerateStoryParagraphs(h, i, BlockHeader),
			Metadata:   map[string]any{"index": i},
		})
	}
	for i, f := range pkg.Footers {
		blocks = append(blocks, &Block{
			Kind:       BlockFooter,
			Element:    f,
			Paragraphs: enumerateStoryParagraphs(f, i, BlockFooter),
			Metadata:   map[string]any{"index": i},
		})
	}
	return blocks
}

func enumerateBody(body *etree.Element, sectionIdx int) []*Block {
	var blocks []*Block
	blockIdx := 0
	for _, child := range body.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "p":
			para := ooxml.NewParagraph(child)
			info := buildParagraphInfo(para, Path{sectionIdx, blockIdx, 0}, nil)
			blocks = append(blocks, &Block{
				Kind:       BlockParagraph,
				Element:    child,
				Paragraphs: []*ParagraphInfo{info},
				Metadata:   map[string]any{},
			})
			blockIdx++
		case "tbl":
			paras := enumerateTableParagraphs(child, sectionIdx, blockIdx)
			blocks = append(blocks, &Block{
				Kind:       BlockTable,
				Element:    child,
				Paragraphs: paras,
				Metadata:   map[string]any{},
			})
			blockIdx++
		case "sectPr":
			blocks = append(blocks, &Block{
				Kind:     BlockSectionBoundary,
				Element:  child,
				Metadata: map[string]any{},
			})
		}
	}
	return blocks
}

func enumerateTableParagraphs(tbl *etree.Element, sectionIdx, blockIdx int) []*ParagraphInfo {
	var out []*ParagraphInfo
	paraIdx := 0
	rowIdx := 0
	for _, row := range tbl.ChildElements() {
		if !(row.Space == "w" && row.Tag == "tr") {
			continue
		}
		colIdx := 0
		for _, cell := range row.ChildElements() {
			if !(cell.Space == "w" && cell.Tag == "tc") {
				continue
			}
			for _, p := range cell.ChildElements() {
				if !(p.Space == "w" && p.Tag == "p") {
					continue
				}
				meta := map[string]any{"kind": "table", "row": rowIdx, "col": colIdx}
				info := buildParagraphInfo(ooxml.NewParagraph(p), Path{sectionIdx, blockIdx, paraIdx}, meta)
				out = append(out, info)
				paraIdx++
			}
			colIdx++
		}
		rowIdx++
	}
	return out
}

func enumerateStoryParagraphs(root *etree.Element, storyIdx int, kind BlockKind) []*ParagraphInfo {
	var out []*ParagraphInfo
	paraIdx := 0
	for _, child := range root.ChildElements() {
		if child.Space == "w" && child.Tag == "p" {
			meta := map[string]any{"story": string(kind), "storyIndex": storyIdx}
			out = append(out, buildParagraphInfo(ooxml.NewParagraph(child), Path{storyIdx, 0, paraIdx}, meta))
			paraIdx++
		}
	}
	return out
}

func buildParagraphInfo(para *ooxml.Paragraph, path Path, meta map[string]any) *ParagraphInfo {
	runs := EnumerateRuns(para)
	full := para.Text()
	if meta == nil {
		meta = map[string]any{}
	}
	return &ParagraphInfo{
		Text:       full,
		Normalized: text.NormalizeForCompare(full),
		Runs:       runs,
		StyleSig:   para.StyleSignature(),
		Path:       path,
		Metadata:   meta,
		para:       para,
	}
}

// EnumerateRuns walks a paragraph's runs, recording each one's text,
// verbatim run-properties XML, and starting character offset.
func EnumerateRuns(para *ooxml.Paragraph) []*RunInfo {
	var out []*RunInfo
	pos := 0
	for _, r := range para.Runs() {
		t := r.Text()
		rprXML := ""
		if rpr := r.RPr(); rpr != nil {
			doc := etree.NewDocument()
			doc.SetRoot(rpr.Copy())
			b, err := doc.WriteToBytes()
			if err == nil {
				rprXML = string(b)
			}
		}
		out = append(out, &RunInfo{
			Text:     t,
			RPrXML:   rprXML,
			StartPos: pos,
			run:      r,
		})
		pos += len(t)
	}
	return out
}

// StyleSignature re-exposes ooxml.Paragraph.StyleSignature for callers
// that only have a bare paragraph handle (e.g. tests constructing
// paragraphs directly).
func StyleSignature(para *ooxml.Paragraph) string { return para.StyleSignature() }
