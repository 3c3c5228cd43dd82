// Package bolt provides a bbolt-backed ProgressStore for deployments that
// keep ingestion progress outside the SQLite database.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure ProgressStore implements the interface.
var _ driven.ProgressStore = (*ProgressStore)(nil)

// ProgressFile is the database filename inside the data directory.
const ProgressFile = "progress.bolt"

const progressBucket = "ingestion_progress"

// ProgressStore persists progress records as JSON values keyed by document ID.
type ProgressStore struct {
	db *bolt.DB
}

// record is the stored JSON shape.
type record struct {
	Step      string    `json:"step"`
	Percent   int       `json:"percent"`
	Label     string    `json:"label"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgressStore opens (or creates) the progress database in dataDir.
func NewProgressStore(dataDir string) (*ProgressStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dataDir, ProgressFile)
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt progress %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(progressBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bbolt bucket: %w", err)
	}
	return &ProgressStore{db: db}, nil
}

// Set records the progress of a document, replacing any previous value.
func (s *ProgressStore) Set(_ context.Context, p domain.Progress) error {
	if p.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	data, err := json.Marshal(record{
		Step:      string(p.Step),
		Percent:   p.Percent,
		Label:     p.Label,
		Error:     p.Error,
		UpdatedAt: p.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(progressBucket)).Put([]byte(p.DocumentID), data)
	})
}

// Get returns the progress of a document or domain.ErrNotFound.
func (s *ProgressStore) Get(_ context.Context, documentID string) (*domain.Progress, error) {
	var rec record
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(progressBucket)).Get([]byte(documentID))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("reading progress: %w", err)
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &domain.Progress{
		DocumentID: documentID,
		Step:       domain.Step(rec.Step),
		Percent:    rec.Percent,
		Label:      rec.Label,
		Error:      rec.Error,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

// Delete removes the progress of a document.
func (s *ProgressStore) Delete(_ context.Context, documentID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(progressBucket)).Delete([]byte(documentID))
	})
}

// Close releases the database file lock.
func (s *ProgressStore) Close() error {
	return s.db.Close()
}
