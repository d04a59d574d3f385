package opc

import "strings"

// PackURI is a part name within an OPC package, always starting with "/",
// e.g. "/word/document.xml". It mirrors the part-name value object used
// throughout the OOXML packaging convention.
type PackURI string

// BaseURI returns the "directory" portion of the part name, e.g.
// "/word" for "/word/document.xml", used to resolve relative relationship
// targets found in a part's .rels file.
func (p PackURI) BaseURI() string {
	s := string(p)
	idx := strings.LastIndex(s, "/")
	if idx <= 0 {
		return "/"
	}
	return s[:idx]
}

// RelsURI returns the package URI of this part's relationship part, e.g.
// "/word/_rels/document.xml.rels" for "/word/document.xml".
func (p PackURI) RelsURI() string {
	s := string(p)
	idx := strings.LastIndex(s, "/")
	dir, name := s[:idx], s[idx+1:]
	if dir == "" {
		dir = "/"
	}
	if dir == "/" {
		return "/_rels/" + name + ".rels"
	}
	return dir + "/_rels/" + name + ".rels"
}

// FromRelRef resolves a relationship TargetRef (which may be relative, e.g.
// "styles.xml" or "../media/image1.png") against a base URI into an absolute
// PackURI.
func FromRelRef(baseURI, targetRef string) PackURI {
	if strings.HasPrefix(targetRef, "/") {
		return PackURI(targetRef)
	}
	segments := strings.Split(strings.Trim(baseURI, "/"), "/")
	if baseURI == "/" || baseURI == "" {
		segments = nil
	}
	for _, seg := range strings.Split(targetRef, "/") {
		switch seg {
		case ".", "":
			continue
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}
	return PackURI("/" + strings.Join(segments, "/"))
}

// ZipName returns the part name with its leading slash stripped, matching
// the path convention used inside a ZIP archive.
func (p PackURI) ZipName() string {
	return strings.TrimPrefix(string(p), "/")
}
