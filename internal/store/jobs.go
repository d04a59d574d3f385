package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vortex/supercompare/internal/compare/engine"
)

var jobsBucket = []byte("jobs")

// Job records one completed comparison: when it ran, what it produced, and
// a random per-run id distinct from the content-addressed ID.
type Job struct {
	ID        string       `json:"id"`
	RunID     string       `json:"runId"`
	CreatedAt time.Time    `json:"createdAt"`
	Stats     engine.Stats `json:"stats"`
	Meta      engine.Meta  `json:"meta"`
}

func (j Job) IsZero() bool { return j.ID == "" }

// Jobs is a bbolt-backed ledger of Job records, mirroring the Storage
// interface's persistence model but for structured metadata rather than
// document blobs.
type Jobs struct {
	db *bbolt.DB
}

// NewJobs wraps db, ensuring the jobs bucket exists.
func NewJobs(db *bbolt.DB) (*Jobs, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(jobsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: creating jobs bucket: %w", err)
	}
	return &Jobs{db: db}, nil
}

func (j *Jobs) Put(job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return j.db.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(jobsBucket).Put([]byte(job.ID), encoded)
	})
}

func (j *Jobs) Get(id string) (Job, error) {
	var buf []byte
	err := j.db.View(func(tx *bbolt.Tx) error {
		buf = append(buf, tx.Bucket(jobsBucket).Get([]byte(id))...)
		return nil
	})
	if err != nil || len(buf) == 0 {
		return Job{}, err
	}
	var job Job
	err = json.Unmarshal(buf, &job)
	return job, err
}
