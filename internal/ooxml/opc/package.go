package opc

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// OpcPackage is an opened OOXML container: every part's raw bytes, plus the
// relationship graph needed to resolve the main document part and its
// headers/footers. Parts the compare engine never needs to interpret
// (styles, numbering, media, theme, core/extended properties...) are kept
// only as opaque blobs so they pass through a round trip unchanged.
type OpcPackage struct {
	parts        map[PackURI][]byte
	contentTypes *contentTypes
	pkgRels      *Relationships
	docName      PackURI
	docRels      *Relationships
	xmlParts     map[PackURI]*XmlPart // lazily-parsed XML parts, keyed by name
}

// Open reads an OPC package from an io.ReaderAt (e.g. an *os.File or a
// bytes.Reader over an uploaded buffer).
func Open(r io.ReaderAt, size int64) (*OpcPackage, error) {
	raw, err := readZipParts(r, size)
	if err != nil {
		return nil, err
	}
	return fromRawParts(raw)
}

// OpenBytes opens a package from an in-memory buffer.
func OpenBytes(data []byte) (*OpcPackage, error) {
	return Open(bytes.NewReader(data), int64(len(data)))
}

func fromRawParts(raw map[PackURI][]byte) (*OpcPackage, error) {
	ctBlob, ok := raw[contentTypesPartName]
	if !ok {
		return nil, fmt.Errorf("opc: malformed package: missing [Content_Types].xml")
	}
	ct, err := parseContentTypes(ctBlob)
	if err != nil {
		return nil, err
	}

	pkg := &OpcPackage{
		parts:        raw,
		contentTypes: ct,
		xmlParts:     make(map[PackURI]*XmlPart),
	}

	pkgRels, err := pkg.loadRels("/")
	if err != nil {
		return nil, err
	}
	pkg.pkgRels = pkgRels

	docRel, err := pkgRels.GetByRelType(RTOfficeDocument)
	if err != nil {
		return nil, fmt.Errorf("opc: malformed package: %w", err)
	}
	pkg.docName = PackURI(docRel.TargetRef)
	if !strings.HasPrefix(string(pkg.docName), "/") {
		pkg.docName = FromRelRef("/", docRel.TargetRef)
	}
	if _, ok := pkg.parts[pkg.docName]; !ok {
		return nil, fmt.Errorf("opc: malformed package: main document part %q missing", pkg.docName)
	}

	docRels, err := pkg.loadRels(pkg.docName)
	if err != nil {
		return nil, err
	}
	pkg.docRels = docRels

	return pkg, nil
}

func (pkg *OpcPackage) loadRels(source PackURI) (*Relationships, error) {
	baseURI := source.BaseURI()
	relsName := source.RelsURI()
	if source == "/" {
		relsName = "/_rels/.rels"
	}
	rels := NewRelationships(baseURI)
	blob, ok := pkg.parts[PackURI(relsName)]
	if !ok {
		return rels, nil
	}
	serialized, err := parseRelsXML(blob, baseURI)
	if err != nil {
		return nil, err
	}
	for _, sr := range serialized {
		rels.Load(sr.RID, sr.RelType, sr.TargetRef, nil, sr.IsExternal())
	}
	return rels, nil
}

// --------------------------------------------------------------------------
// Structural accessors the compare engine uses
// --------------------------------------------------------------------------

// MainDocumentPart returns the parsed XML part for /word/document.xml (or
// wherever the package's officeDocument relationship points).
func (pkg *OpcPackage) MainDocumentPart() (*XmlPart, error) {
	return pkg.xmlPart(pkg.docName)
}

// HeaderParts returns every header part referenced from the main document,
// in relationship-table order (not necessarily section order — callers
// that need section alignment should cross-reference sectPr header refs).
func (pkg *OpcPackage) HeaderParts() ([]*XmlPart, error) {
	return pkg.relatedXMLParts(RTHeader)
}

// FooterParts returns every footer part referenced from the main document.
func (pkg *OpcPackage) FooterParts() ([]*XmlPart, error) {
	return pkg.relatedXMLParts(RTFooter)
}

func (pkg *OpcPackage) relatedXMLParts(relType string) ([]*XmlPart, error) {
	var out []*XmlPart
	for _, rel := range pkg.docRels.All() {
		if rel.RelType != relType || rel.IsExternal {
			continue
		}
		name := FromRelRef(pkg.docName.BaseURI(), rel.TargetRef)
		p, err := pkg.xmlPart(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (pkg *OpcPackage) xmlPart(name PackURI) (*XmlPart, error) {
	if p, ok := pkg.xmlParts[name]; ok {
		return p, nil
	}
	blob, ok := pkg.parts[name]
	if !ok {
		return nil, fmt.Errorf("opc: part %q not found", name)
	}
	ext := strings.TrimPrefix(path.Ext(string(name)), ".")
	ctype := pkg.contentTypes.For(name, ext)
	p, err := NewXmlPart(name, ctype, blob)
	if err != nil {
		return nil, err
	}
	pkg.xmlParts[name] = p
	return p, nil
}

// Part returns the raw bytes of any part by name, resolving a live XML
// part's current (possibly mutated) serialization when one has been parsed.
func (pkg *OpcPackage) Part(name PackURI) ([]byte, bool, error) {
	if p, ok := pkg.xmlParts[name]; ok {
		b, err := p.Blob()
		return b, true, err
	}
	b, ok := pkg.parts[name]
	return b, ok, nil
}

// PartNames returns every part name in the package, for pass-through
// enumeration (media, styles, numbering, ...).
func (pkg *OpcPackage) PartNames() []PackURI {
	out := make([]PackURI, 0, len(pkg.parts))
	for name := range pkg.parts {
		out = append(out, name)
	}
	return out
}

// Save serializes the package back to a ZIP archive, writing out the
// current (possibly mutated) form of every parsed XML part and passing
// every other part through unchanged.
func (pkg *OpcPackage) Save(w io.Writer) error {
	out := make(map[PackURI][]byte, len(pkg.parts))
	for name, blob := range pkg.parts {
		out[name] = blob
	}
	for name, xp := range pkg.xmlParts {
		blob, err := xp.Blob()
		if err != nil {
			return fmt.Errorf("opc: serializing part %q: %w", name, err)
		}
		out[name] = blob
	}
	return writeZipParts(w, out)
}

// SaveBytes is Save into an in-memory buffer.
func (pkg *OpcPackage) SaveBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := pkg.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
