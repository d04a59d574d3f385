package opc

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

// readZipParts reads every entry of a docx ZIP archive into memory, keyed
// by PackURI.
func readZipParts(r io.ReaderAt, size int64) (map[PackURI][]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opc: not a valid zip archive: %w", err)
	}
	out := make(map[PackURI][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opc: reading zip entry %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("opc: reading zip entry %q: %w", f.Name, err)
		}
		out[PackURI("/"+f.Name)] = data
	}
	return out, nil
}

// writeZipParts writes the given parts back out as a ZIP archive, in
// PackURI order so output is a deterministic function of the part map.
func writeZipParts(w io.Writer, parts map[PackURI][]byte) error {
	zw := zip.NewWriter(w)
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		fw, err := zw.Create(PackURI(name).ZipName())
		if err != nil {
			return fmt.Errorf("opc: creating zip entry %q: %w", name, err)
		}
		if _, err := fw.Write(parts[PackURI(name)]); err != nil {
			return fmt.Errorf("opc: writing zip entry %q: %w", name, err)
		}
	}
	return zw.Close()
}

// --------------------------------------------------------------------------
// [Content_Types].xml
// --------------------------------------------------------------------------

const contentTypesPartName = PackURI("/[Content_Types].xml")

type contentTypesXML struct {
	XMLName   xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefaultEntry  `xml:"Default"`
	Overrides []ctOverrideEntry `xml:"Override"`
}

type ctDefaultEntry struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverrideEntry struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// contentTypes is a lookup table from part name (or default extension) to
// content type, backing ContentType queries and rewrites when new part
// kinds are introduced (none are, today — the engine never adds parts).
type contentTypes struct {
	defaults  map[string]string
	overrides map[string]string
}

func parseContentTypes(blob []byte) (*contentTypes, error) {
	var doc contentTypesXML
	if err := xml.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("opc: parsing [Content_Types].xml: %w", err)
	}
	ct := &contentTypes{defaults: map[string]string{}, overrides: map[string]string{}}
	for _, d := range doc.Defaults {
		ct.defaults[d.Extension] = d.ContentType
	}
	for _, o := range doc.Overrides {
		ct.overrides[o.PartName] = o.ContentType
	}
	return ct, nil
}

func (ct *contentTypes) For(partName PackURI, ext string) string {
	if t, ok := ct.overrides[string(partName)]; ok {
		return t
	}
	if t, ok := ct.defaults[ext]; ok {
		return t
	}
	return ""
}
