package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// progressStore implements driven.ProgressStore.
type progressStore struct {
	store *Store
}

var _ driven.ProgressStore = (*progressStore)(nil)

// Set records the progress of a document, replacing any previous value.
func (s *progressStore) Set(ctx context.Context, p domain.Progress) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_progress (document_id, step, percent, label, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			step = excluded.step,
			percent = excluded.percent,
			label = excluded.label,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, p.DocumentID, string(p.Step), p.Percent, p.Label, p.Error, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// Get returns the progress of a document or domain.ErrNotFound.
func (s *progressStore) Get(ctx context.Context, documentID string) (*domain.Progress, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT document_id, step, percent, label, error, updated_at
		FROM ingestion_progress WHERE document_id = ?
	`, documentID)

	var p domain.Progress
	var step string
	var updatedAt sql.NullTime
	if err := row.Scan(&p.DocumentID, &step, &p.Percent, &p.Label, &p.Error, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning progress: %w", err)
	}
	p.Step = domain.Step(step)
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

// Delete removes the progress of a document.
func (s *progressStore) Delete(ctx context.Context, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM ingestion_progress WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	return nil
}
