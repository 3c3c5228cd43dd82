package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// mappingStore implements driven.MappingStore.
// UNIQUE(project_id, original_value) and UNIQUE(project_id, placeholder)
// back the uniqueness guarantees at the storage level.
type mappingStore struct {
	store *Store
}

var _ driven.MappingStore = (*mappingStore)(nil)

// List returns every mapping of a project in insertion order.
func (s *mappingStore) List(ctx context.Context, projectID string) ([]domain.EntityMapping, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_id, entity_type, original_value, placeholder, active, created_at
		FROM entity_mappings WHERE project_id = ?
		ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]domain.EntityMapping, 0)
	for rows.Next() {
		var m domain.EntityMapping
		var entityType string
		var createdAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.ProjectID, &entityType, &m.OriginalValue,
			&m.Placeholder, &m.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		m.EntityType = domain.EntityType(entityType)
		if createdAt.Valid {
			m.CreatedAt = createdAt.Time
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}
	return mappings, nil
}

// CountByType returns the number of persisted mappings per entity type.
func (s *mappingStore) CountByType(ctx context.Context, projectID string) (map[domain.EntityType]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT entity_type, COUNT(*) FROM entity_mappings
		WHERE project_id = ? GROUP BY entity_type
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("counting mappings: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.EntityType]int)
	for rows.Next() {
		var entityType string
		var n int
		if err := rows.Scan(&entityType, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[domain.EntityType(entityType)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// Insert persists new mappings in one transaction.
func (s *mappingStore) Insert(ctx context.Context, mappings []domain.EntityMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entity_mappings (id, project_id, entity_type, original_value, placeholder, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range mappings {
		m := &mappings[i]
		if m.ID == "" || m.ProjectID == "" || m.OriginalValue == "" || m.Placeholder == "" {
			return domain.ErrInvalidInput
		}
		createdAt := m.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.ProjectID, string(m.EntityType),
			m.OriginalValue, m.Placeholder, m.Active, createdAt); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, m.Placeholder)
			}
			return fmt.Errorf("inserting mapping: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SetActive enables or disables the mapping of an original value.
func (s *mappingStore) SetActive(ctx context.Context, projectID, originalValue string, active bool) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE entity_mappings SET active = ? WHERE project_id = ? AND original_value = ?",
		active, projectID, originalValue)
	if err != nil {
		return fmt.Errorf("updating mapping: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating mapping: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteProject removes every mapping of a project.
func (s *mappingStore) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM entity_mappings WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("deleting mappings: %w", err)
	}
	return nil
}
