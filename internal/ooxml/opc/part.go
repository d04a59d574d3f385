package opc

import (
	"fmt"

	"github.com/beevik/etree"
)

// SerializedRelationship is the intermediate form of a relationship entry
// read from a .rels part, before its target is resolved to a live Part.
type SerializedRelationship struct {
	BaseURI    string
	RID        string
	RelType    string
	TargetRef  string
	TargetMode string
}

func (sr SerializedRelationship) IsExternal() bool {
	return sr.TargetMode == TargetModeExternal
}

// Part represents a single member of an OPC package.
type Part interface {
	PartName() PackURI
	ContentType() string
	Blob() ([]byte, error)
	Rels() *Relationships
	SetRels(rels *Relationships)
}

// BasePart is the default Part implementation for binary (non-XML) parts:
// media files, and any part kind the engine does not need to inspect.
type BasePart struct {
	partName    PackURI
	contentType string
	blob        []byte
	rels        *Relationships
}

func NewBasePart(partName PackURI, contentType string, blob []byte) *BasePart {
	return &BasePart{partName: partName, contentType: contentType, blob: blob, rels: NewRelationships(partName.BaseURI())}
}

func (p *BasePart) PartName() PackURI           { return p.partName }
func (p *BasePart) ContentType() string         { return p.contentType }
func (p *BasePart) Blob() ([]byte, error)       { return p.blob, nil }
func (p *BasePart) Rels() *Relationships        { return p.rels }
func (p *BasePart) SetRels(rels *Relationships) { p.rels = rels }

// XmlPart is a Part backed by a parsed etree.Document, used for every
// WordprocessingML part the engine reads structurally (document.xml,
// headers, footers). Re-serializing re-walks the live tree, so in-place
// mutation of Element() is reflected in the next Blob() call.
type XmlPart struct {
	BasePart
	doc *etree.Document
}

// NewXmlPart parses blob as XML and wraps it as a part.
func NewXmlPart(partName PackURI, contentType string, blob []byte) (*XmlPart, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	doc.WriteSettings.CanonicalEndTags = true
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, fmt.Errorf("opc: parsing part %q: %w", partName, err)
	}
	return &XmlPart{
		BasePart: *NewBasePart(partName, contentType, nil),
		doc:      doc,
	}, nil
}

// Element returns the root XML element of this part (e.g. the <w:document>
// or <w:hdr>/<w:ftr> element), or nil if the part has no parsed content.
func (p *XmlPart) Element() *etree.Element {
	if p.doc == nil {
		return nil
	}
	return p.doc.Root()
}

// Blob serializes the live element tree back to bytes.
func (p *XmlPart) Blob() ([]byte, error) {
	if p.doc == nil || p.doc.Root() == nil {
		return nil, nil
	}
	b, err := p.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("opc: serializing part %q: %w", p.partName, err)
	}
	return b, nil
}
