package handler_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/vortex/supercompare/internal/handler"
	"github.com/vortex/supercompare/internal/service"
	"github.com/vortex/supercompare/internal/store"
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

func buildDocx(t *testing.T, paragraphText string) []byte {
	t.Helper()
	docXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t xml:space="preserve">` + paragraphText + `</w:t></w:r></w:p></w:body>
</w:document>`

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
	write("word/document.xml", docXML)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestHandler(t *testing.T) *handler.CompareHandler {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "test.bolt"), 0o644, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storage, err := store.NewBoltStorage(db)
	require.NoError(t, err)
	jobs, err := store.NewJobs(db)
	require.NoError(t, err)

	return handler.NewCompareHandler(service.NewCompareService(storage, jobs))
}

func newCompareRequest(t *testing.T, original, modified []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("original", "original.docx")
	require.NoError(t, err)
	_, err = fw.Write(original)
	require.NoError(t, err)

	fw, err = w.CreateFormFile("modified", "modified.docx")
	require.NoError(t, err)
	_, err = fw.Write(modified)
	require.NoError(t, err)

	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCompareHandlerSuccess(t *testing.T) {
	h := newTestHandler(t)
	req := newCompareRequest(t,
		buildDocx(t, "The quick brown fox jumps over the lazy dog."),
		buildDocx(t, "The quick fox jumps over the lazy dog."),
	)
	rec := httptest.NewRecorder()

	h.Compare(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			ID       string `json:"id"`
			Download string `json:"download"`
			Stats    struct {
				Deletions int `json:"deletions"`
			} `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.Data.ID)
	assert.Equal(t, 1, body.Data.Stats.Deletions)
	assert.Contains(t, body.Data.Download, body.Data.ID)
}

func TestCompareHandlerMissingFileIsBadRequest(t *testing.T) {
	h := newTestHandler(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Compare(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareHandlerDownloadRoundTrip(t *testing.T) {
	h := newTestHandler(t)
	req := newCompareRequest(t,
		buildDocx(t, "Hello there."),
		buildDocx(t, "Hello there again."),
	)
	rec := httptest.NewRecorder()
	h.Compare(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", body.Data.ID)
	downloadReq := httptest.NewRequest(http.MethodGet, "/api/v1/compare/"+body.Data.ID, nil)
	downloadReq = downloadReq.WithContext(context.WithValue(downloadReq.Context(), chi.RouteCtxKey, rctx))
	downloadRec := httptest.NewRecorder()

	h.Download(downloadRec, downloadReq)

	assert.Equal(t, http.StatusOK, downloadRec.Code)
	assert.NotEmpty(t, downloadRec.Body.Bytes())
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		downloadRec.Header().Get("Content-Type"),
	)
}

func TestCompareHandlerDownloadMissingIsNotFound(t *testing.T) {
	h := newTestHandler(t)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "does-not-exist")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/compare/does-not-exist", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.Download(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
