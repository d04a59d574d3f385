package engine

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const pkgRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func documentXML(bodyInner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + bodyInner + `</w:body>
</w:document>`
}

// buildDocx assembles a minimal single-part .docx around the given
// paragraphs (each a raw <w:p>...</w:p> fragment), for feeding directly to
// model.Read by way of Compare.
func buildDocx(t *testing.T, paragraphsXML ...string) []byte {
	t.Helper()
	var body string
	for _, p := range paragraphsXML {
		body += p
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	write("[Content_Types].xml", contentTypesXML)
	write("_rels/.rels", pkgRelsXML)
	write("word/document.xml", documentXML(body))
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// extractDocumentXML pulls word/document.xml back out of a serialized
// .docx buffer, for asserting on the rewritten markup directly.
func extractDocumentXML(t *testing.T, docx []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatal("word/document.xml not found in output package")
	return ""
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func styledPara(style, text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="` + style + `"/></w:pPr><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// collectText concatenates the visible text (w:t and w:delText) under el
// in document order.
func collectText(el *etree.Element, b *strings.Builder) {
	for _, c := range el.ChildElements() {
		if c.Space == "w" && (c.Tag == "t" || c.Tag == "delText") {
			b.WriteString(c.Text())
			continue
		}
		collectText(c, b)
	}
}

// textWithStripped parses the output package's main part, removes every
// subtree named by stripTags (e.g. "del", "moveFrom"), and returns the
// remaining paragraph texts joined by newlines — the accept-all /
// reject-all view of a tracked-changes document.
func textWithStripped(t *testing.T, docx []byte, stripTags ...string) string {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(extractDocumentXML(t, docx)))
	body := doc.FindElement("//w:body")
	require.NotNil(t, body)
	for _, tag := range stripTags {
		for _, el := range body.FindElements(".//w:" + tag) {
			el.Parent().RemoveChild(el)
		}
	}
	var parts []string
	for _, p := range body.FindElements(".//w:p") {
		var b strings.Builder
		collectText(p, &b)
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, "\n")
}

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testOptions() Options {
	o := DefaultOptions()
	o.Timestamp = fixedTime
	return o
}

func TestCompareIdenticalDocumentsIsNoOp(t *testing.T) {
	orig := buildDocx(t, para("Hello world."), para("Second paragraph."))
	mod := buildDocx(t, para("Hello world."), para("Second paragraph."))

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, res.Stats)
	assert.NotContains(t, extractDocumentXML(t, res.DocumentBytes), "w:ins")
}

func TestCompareSingleWordInsertion(t *testing.T) {
	orig := buildDocx(t, para("The quick fox jumps over the lazy dog."))
	mod := buildDocx(t, para("The quick brown fox jumps over the lazy dog."))

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Insertions)
	assert.Equal(t, 0, res.Stats.Deletions)
	assert.Equal(t, 0, res.Stats.Moves)
}

func TestCompareSingleWordDeletion(t *testing.T) {
	orig := buildDocx(t, para("The quick brown fox jumps over the lazy dog."))
	mod := buildDocx(t, para("The quick fox jumps over the lazy dog."))

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.Insertions)
	assert.Equal(t, 1, res.Stats.Deletions)
}

func TestCompareParagraphReorderDetectedAsMove(t *testing.T) {
	long := "The quick brown fox jumps over the lazy dog near the riverbank at dawn."
	orig := buildDocx(t, para(long), para("Second paragraph stays put here today."))
	mod := buildDocx(t, para("Second paragraph stays put here today."), para(long))

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Moves)
	assert.Equal(t, 0, res.Stats.Insertions)
	assert.Equal(t, 0, res.Stats.Deletions)
	docXML := extractDocumentXML(t, res.DocumentBytes)
	assert.Contains(t, docXML, "w:moveFrom")
	assert.Contains(t, docXML, "w:moveTo")
}

func TestCompareRejectsInvalidOptions(t *testing.T) {
	orig := buildDocx(t, para("a"))
	_, err := Compare(orig, orig, Options{JaccardThreshold: 2})
	require.Error(t, err)
}

func TestCompareStyleOnlyChangeIsDeleteInsert(t *testing.T) {
	orig := buildDocx(t, styledPara("Heading1", "Chapter heading text."))
	mod := buildDocx(t, para("Chapter heading text."))

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	assert.Equal(t, Stats{Insertions: 1, Deletions: 1, Moves: 0, Total: 2}, res.Stats)
}

func TestCompareTextConservation(t *testing.T) {
	orig := buildDocx(t, para("Alpha beta gamma."), para("Second paragraph here."))
	mod := buildDocx(t, para("Alpha delta gamma."), para("Second paragraph here."))

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)

	acceptAll := textWithStripped(t, res.DocumentBytes, "del", "moveFrom")
	assert.Equal(t, "Alpha delta gamma.\nSecond paragraph here.", acceptAll)

	rejectAll := textWithStripped(t, res.DocumentBytes, "ins", "moveTo")
	assert.Equal(t, "Alpha beta gamma.\nSecond paragraph here.", rejectAll)
}

func TestCompareDeterministicWithFixedTimestamp(t *testing.T) {
	long := "The quick brown fox jumps over the lazy dog near the riverbank at dawn."
	orig := buildDocx(t, para(long), para("Second paragraph stays put here today."))
	mod := buildDocx(t, para("Second paragraph stays put here today."), para(long))

	first, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	second, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)

	assert.Equal(t, first.DocumentBytes, second.DocumentBytes)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, first.Meta.Pairs, second.Meta.Pairs)
}

func TestCompareUnsplittableRunDegradesToCoarseFallback(t *testing.T) {
	origPara := `<w:p><w:r><w:t xml:space="preserve">hello world</w:t><w:drawing></w:drawing></w:r></w:p>`
	orig := buildDocx(t, origPara)
	mod := buildDocx(t, para("hello there"))

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	assert.Equal(t, Stats{Insertions: 1, Deletions: 1, Moves: 0, Total: 2}, res.Stats)
	require.Len(t, res.Meta.Warnings, 1)
	assert.Contains(t, res.Meta.Warnings[0], "delete+insert")

	acceptAll := textWithStripped(t, res.DocumentBytes, "del", "moveFrom")
	assert.Equal(t, "hello there", acceptAll)
}

func TestCompareInlineInsertPreservesRunFormatting(t *testing.T) {
	origPara := `<w:p>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Bold </w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t>italic</w:t></w:r>` +
		`</w:p>`
	modPara := `<w:p>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Bold </w:t></w:r>` +
		`<w:r><w:t xml:space="preserve">text </w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t>italic</w:t></w:r>` +
		`</w:p>`
	orig := buildDocx(t, origPara)
	mod := buildDocx(t, modPara)

	res, err := Compare(orig, mod, testOptions())
	require.NoError(t, err)
	assert.Equal(t, Stats{Insertions: 1, Deletions: 0, Moves: 0, Total: 1}, res.Stats)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(extractDocumentXML(t, res.DocumentBytes)))

	p := doc.FindElement("//w:body/w:p")
	require.NotNil(t, p)

	// The surviving runs keep their formatting untouched.
	assert.NotNil(t, p.FindElement("w:r/w:rPr/w:b"))
	assert.NotNil(t, p.FindElement("w:r/w:rPr/w:i"))

	// Exactly one inserted run carrying the plain new text.
	insertions := p.FindElements("w:ins")
	require.Len(t, insertions, 1)
	var b strings.Builder
	collectText(insertions[0], &b)
	assert.Equal(t, "text ", b.String())
	assert.Nil(t, insertions[0].FindElement(".//w:rPr/w:b"))
	assert.Nil(t, insertions[0].FindElement(".//w:rPr/w:i"))
}
