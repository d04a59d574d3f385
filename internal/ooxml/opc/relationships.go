package opc

import (
	"encoding/xml"
	"fmt"
)

// Relationship is a single resolved relationship: an rId pointing either at
// another part within the package or at an external target (a URL).
type Relationship struct {
	RID        string
	RelType    string
	TargetRef  string
	IsExternal bool
	TargetPart Part // as supplied to Load; OpcPackage always passes nil and never resolves targets
}

// Relationships is the parsed form of a part's (or the package's) .rels
// file, keyed by rId. The compare engine only ever reads relationships —
// it never authors new parts — so the collection has no mutating API
// beyond Load.
type Relationships struct {
	baseURI string
	byRID   map[string]*Relationship
	order   []string
}

// NewRelationships creates an empty relationship collection rooted at baseURI.
func NewRelationships(baseURI string) *Relationships {
	return &Relationships{baseURI: baseURI, byRID: make(map[string]*Relationship)}
}

// Load registers a relationship without resolving its target part — used
// while streaming a package open, before all parts exist.
func (r *Relationships) Load(rid, relType, targetRef string, targetPart Part, external bool) {
	r.byRID[rid] = &Relationship{RID: rid, RelType: relType, TargetRef: targetRef, TargetPart: targetPart, IsExternal: external}
	r.order = append(r.order, rid)
}

// GetByRelType returns the first relationship with the given type.
func (r *Relationships) GetByRelType(relType string) (*Relationship, error) {
	for _, rid := range r.order {
		if r.byRID[rid].RelType == relType {
			return r.byRID[rid], nil
		}
	}
	return nil, fmt.Errorf("opc: no relationship of type %q", relType)
}

// All returns every relationship in the collection, in load/add order.
func (r *Relationships) All() []*Relationship {
	out := make([]*Relationship, 0, len(r.order))
	for _, rid := range r.order {
		out = append(out, r.byRID[rid])
	}
	return out
}

// --------------------------------------------------------------------------
// .rels XML (de)serialization
// --------------------------------------------------------------------------

type relsXML struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []relsXMLEntry `xml:"Relationship"`
}

type relsXMLEntry struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// parseRelsXML parses a .rels part's bytes into SerializedRelationship values.
func parseRelsXML(blob []byte, baseURI string) ([]SerializedRelationship, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var doc relsXML
	if err := xml.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("opc: parsing relationships: %w", err)
	}
	out := make([]SerializedRelationship, 0, len(doc.Rels))
	for _, e := range doc.Rels {
		mode := TargetModeInternal
		if e.TargetMode == TargetModeExternal {
			mode = TargetModeExternal
		}
		out = append(out, SerializedRelationship{
			BaseURI:    baseURI,
			RID:        e.ID,
			RelType:    e.Type,
			TargetRef:  e.Target,
			TargetMode: mode,
		})
	}
	return out, nil
}

