// Package service implements the compare use case the HTTP surface calls
// into (the offline CLI calls the engine directly): run the engine, persist the rewritten document
// and its stats, and hand back a Job a caller can fetch again later.
package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thehowl/cford32"

	"github.com/vortex/supercompare/internal/compare/engine"
	"github.com/vortex/supercompare/internal/store"
)

// CompareService runs comparisons and persists their results.
type CompareService struct {
	storage store.Storage
	jobs    *store.Jobs
}

// NewCompareService wires a CompareService to its storage and metadata
// backends.
func NewCompareService(storage store.Storage, jobs *store.Jobs) *CompareService {
	return &CompareService{storage: storage, jobs: jobs}
}

// Compare runs the engine over original and modified, stores the rewritten
// document content-addressably, and records a Job for later retrieval. The
// id is deterministic in the input bytes and options, so re-submitting an
// identical pair is a cheap no-op read rather than a second compare.
func (s *CompareService) Compare(ctx context.Context, original, modified []byte, opts engine.Options) (*store.Job, []byte, error) {
	id := contentID(original, modified, opts)
	if existing, err := s.jobs.Get(id); err == nil && !existing.IsZero() {
		if doc, err := s.storage.Get(ctx, id); err == nil {
			return &existing, doc, nil
		}
	}

	result, err := engine.Compare(original, modified, opts)
	if err != nil {
		return nil, nil, err
	}

	if err := s.storage.Put(ctx, id, result.DocumentBytes); err != nil {
		return nil, nil, err
	}

	job := store.Job{
		ID:        id,
		RunID:     uuid.NewString(),
		CreatedAt: time.Now(),
		Stats:     result.Stats,
		Meta:      result.Meta,
	}
	if err := s.jobs.Put(job); err != nil {
		return nil, nil, err
	}

	return &job, result.DocumentBytes, nil
}

// Fetch retrieves a previously computed comparison by id.
func (s *CompareService) Fetch(ctx context.Context, id string) (*store.Job, []byte, error) {
	job, err := s.jobs.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if job.IsZero() {
		return nil, nil, store.ErrNotFound
	}
	doc, err := s.storage.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &job, doc, nil
}

// contentID derives a stable, human-typeable id from the input pair and
// options: the first 8 bytes of their combined SHA-256, cford32-encoded the
// same way diffy addresses uploaded archives.
func contentID(original, modified []byte, opts engine.Options) string {
	h := sha256.New()
	h.Write(original)
	h.Write([]byte{0})
	h.Write(modified)
	h.Write([]byte{0})
	fmt.Fprintf(h, "%+v", opts)
	sum := h.Sum(nil)
	return cford32.EncodeToStringLower(sum[:8])
}
