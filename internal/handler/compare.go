package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vortex/supercompare/internal/compare/cmperr"
	"github.com/vortex/supercompare/internal/compare/engine"
	"github.com/vortex/supercompare/internal/service"
	"github.com/vortex/supercompare/internal/store"
	"github.com/vortex/supercompare/pkg/response"
)

// CompareHandler exposes the compare use case over HTTP.
type CompareHandler struct {
	svc *service.CompareService
}

// NewCompareHandler creates a handler backed by svc.
func NewCompareHandler(svc *service.CompareService) *CompareHandler {
	return &CompareHandler{svc: svc}
}

type compareResponse struct {
	ID       string       `json:"id"`
	Stats    engine.Stats `json:"stats"`
	Meta     engine.Meta  `json:"meta"`
	Download string       `json:"download"`
}

// Compare handles POST /api/v1/compare. It expects a multipart form with
// "original" and "modified" file fields, and returns the comparison's
// stats plus a link to download the rewritten document.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	original, err := readFormFile(r, "original")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "original: "+err.Error())
		return
	}
	modified, err := readFormFile(r, "modified")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "modified: "+err.Error())
		return
	}

	opts := engine.DefaultOptions()
	if r.FormValue("diffHeadersFooters") == "true" {
		opts.DiffHeadersFooters = true
	}

	job, _, err := h.svc.Compare(r.Context(), original, modified, opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, compareResponse{
		ID:       job.ID,
		Stats:    job.Stats,
		Meta:     job.Meta,
		Download: "/api/v1/compare/" + job.ID,
	})
}

// Download handles GET /api/v1/compare/{id}, streaming back the rewritten
// .docx produced by a prior Compare call.
func (h *CompareHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, doc, err := h.svc.Fetch(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "no comparison with that id")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.docx"`)
	_, _ = w.Write(doc)
}

// Meta handles GET /api/v1/compare/{id}/meta, returning the stats and
// warnings recorded for a prior Compare call without the document body.
func (h *CompareHandler) Meta(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, _, err := h.svc.Fetch(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "no comparison with that id")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, job)
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func writeEngineError(w http.ResponseWriter, err error) {
	kind, ok := cmperr.KindOf(err)
	if !ok {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusUnprocessableEntity
	if kind == cmperr.ConfigurationError {
		status = http.StatusBadRequest
	}
	response.Error(w, status, err.Error())
}
