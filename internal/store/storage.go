// Package store persists compare results: the rewritten .docx bytes in a
// content-addressable Storage, and per-result metadata (stats, timestamps)
// in a small bbolt-backed ledger. Rewritten documents are typically tens of
// KB to a few MB, so unlike diffy's upload blobs there is no in-memory
// cache tier here — just the two backends.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"
	"go.etcd.io/bbolt"
)

// ErrNotFound is returned by Storage.Get when id has no stored object.
var ErrNotFound = errors.New("store: not found")

// Storage persists rewritten document bytes keyed by content-addressed id.
type Storage interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, data []byte) error
	Del(ctx context.Context, id string) error
}

var documentsBucket = []byte("documents")

// BoltStorage stores documents as blobs in a bbolt bucket. It is the
// default backend: no external dependency, single file on disk.
type BoltStorage struct {
	db *bbolt.DB
}

var _ Storage = (*BoltStorage)(nil)

// NewBoltStorage wraps db, ensuring the documents bucket exists.
func NewBoltStorage(db *bbolt.DB) (*BoltStorage, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: creating documents bucket: %w", err)
	}
	return &BoltStorage{db: db}, nil
}

// gzipWriterPool reuses gzip.Writer instances across Put calls — documents
// rewritten by the engine are frequent enough that allocating a fresh
// writer (and its backing tables) per call shows up under load.
var gzipWriterPool = sync.Pool{
	New: func() any { return gzip.NewWriter(io.Discard) },
}

func (s *BoltStorage) Get(_ context.Context, id string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		val = append(val, tx.Bucket(documentsBucket).Get([]byte(id))...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(val) == 0 {
		return nil, ErrNotFound
	}
	return gunzip(val)
}

func (s *BoltStorage) Put(_ context.Context, id string, data []byte) error {
	compressed, err := gzipBytes(data)
	if err != nil {
		return fmt.Errorf("store: compressing document: %w", err)
	}
	return s.db.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).Put([]byte(id), compressed)
	})
}

// gzipBytes compresses data with a pooled gzip.Writer, keeping the local
// bbolt file small: rewritten .docx packages are themselves ZIPs of XML,
// but the revision markup this engine injects is highly repetitive text
// that gzip still shrinks meaningfully on top of the already-deflated
// package bytes.
func gzipBytes(data []byte) ([]byte, error) {
	gz := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(gz)

	var buf bytes.Buffer
	gz.Reset(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store: decompressing document: %w", err)
	}
	defer gr.Close()
	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("store: decompressing document: %w", err)
	}
	return out, nil
}

func (s *BoltStorage) Del(_ context.Context, id string) error {
	return s.db.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).Delete([]byte(id))
	})
}

// MinioStorage stores documents as objects in an S3-compatible bucket, for
// deployments that run the service behind multiple replicas sharing one
// object store instead of a local bbolt file.
type MinioStorage struct {
	cl         *minio.Client
	bucketName string
}

var _ Storage = (*MinioStorage)(nil)

// NewMinioStorage wraps an already-constructed minio client.
func NewMinioStorage(cl *minio.Client, bucketName string) *MinioStorage {
	return &MinioStorage{cl: cl, bucketName: bucketName}
}

func (s *MinioStorage) Get(ctx context.Context, id string) ([]byte, error) {
	obj, err := s.cl.GetObject(ctx, s.bucketName, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *MinioStorage) Put(ctx context.Context, id string, data []byte) error {
	_, err := s.cl.PutObject(ctx, s.bucketName, id,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		})
	return err
}

func (s *MinioStorage) Del(ctx context.Context, id string) error {
	return s.cl.RemoveObject(ctx, s.bucketName, id, minio.RemoveObjectOptions{})
}
