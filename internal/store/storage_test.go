package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/vortex/supercompare/internal/compare/engine"
	"github.com/vortex/supercompare/internal/store"
)

func openTestDB(t *testing.T) *bbolt.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bolt")
	db, err := bbolt.Open(path, 0o644, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoltStorageRoundTrip(t *testing.T) {
	db := openTestDB(t)
	s, err := store.NewBoltStorage(db)
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("rewritten docx bytes, repeated repeated repeated for compression")

	require.NoError(t, s.Put(ctx, "doc-1", data))

	got, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBoltStorageGetMissingReturnsErrNotFound(t *testing.T) {
	db := openTestDB(t)
	s, err := store.NewBoltStorage(db)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestBoltStorageDel(t *testing.T) {
	db := openTestDB(t)
	s, err := store.NewBoltStorage(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "doc-1", []byte("bytes")))
	require.NoError(t, s.Del(ctx, "doc-1"))

	_, err = s.Get(ctx, "doc-1")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestJobsPutGet(t *testing.T) {
	db := openTestDB(t)
	jobs, err := store.NewJobs(db)
	require.NoError(t, err)

	job := store.Job{
		ID:    "abc123",
		RunID: "run-1",
		Stats: engine.Stats{Insertions: 2, Deletions: 1, Total: 3},
	}
	require.NoError(t, jobs.Put(job))

	got, err := jobs.Get("abc123")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.Stats, got.Stats)
	assert.False(t, got.IsZero())
}

func TestJobsGetMissingIsZero(t *testing.T) {
	db := openTestDB(t)
	jobs, err := store.NewJobs(db)
	require.NoError(t, err)

	got, err := jobs.Get("missing")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
