package opc

// Relationship type URIs and content types used by WordprocessingML
// packages. Only the part kinds the compare engine reads, rewrites, or
// passes through are named here; the rest of the OOXML relationship
// vocabulary is irrelevant to a compare-only engine.
const (
	RTOfficeDocument      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RTCoreProperties      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RTExtendedProperties  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RTStyles              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RTSettings            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	RTNumbering           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	RTComments            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	RTFootnotes           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes"
	RTEndnotes            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/endnotes"
	RTFontTable           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/fontTable"
	RTTheme               = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RTWebSettings         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/webSettings"
	RTHeader              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RTFooter              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	RTImage               = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	TargetModeInternal = "Internal"
	TargetModeExternal = "External"
)

const (
	CTWmlDocumentMain = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	CTWmlHeader       = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	CTWmlFooter       = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	CTCoreProperties  = "application/vnd.openxmlformats-package.core-properties+xml"
	CTExtendedProps   = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	CTRelationships   = "application/vnd.openxmlformats-package.relationships+xml"
)
