package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rfpvault/internal/adapters/driven/vector"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex with brute-force cosine search.
// Collections are rows sharing a collection name; dropping one deletes its rows.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert inserts or replaces records in a collection.
func (v *vectorIndex) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (collection, id, embedding, content, document_id, document_name,
			category, page_number, section_title, chunk_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			embedding = excluded.embedding,
			content = excluded.content,
			document_id = excluded.document_id,
			document_name = excluded.document_name,
			category = excluded.category,
			page_number = excluded.page_number,
			section_title = excluded.section_title,
			chunk_index = excluded.chunk_index
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		m := r.Metadata
		if _, err := stmt.ExecContext(ctx, collection, r.ID, encodeVector(r.Embedding), r.Content,
			m.DocumentID, m.DocumentName, m.Category, m.PageNumber, m.SectionTitle, m.ChunkIndex); err != nil {
			return fmt.Errorf("saving vector: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns the k records nearest to embedding.
func (v *vectorIndex) Query(
	ctx context.Context, collection string, embedding []float32, k int, filter driven.VectorFilter,
) ([]driven.VectorHit, error) {
	query := `
		SELECT id, embedding, content, document_id, document_name, category,
			page_number, section_title, chunk_index
		FROM vectors WHERE collection = ?`
	args := []any{collection}
	if filter.DocumentID != "" {
		query += " AND document_id = ?"
		args = append(args, filter.DocumentID)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	hits := make([]driven.VectorHit, 0)
	for rows.Next() {
		var hit driven.VectorHit
		var blob []byte
		m := &hit.Metadata
		if err := rows.Scan(&hit.ID, &blob, &hit.Content, &m.DocumentID, &m.DocumentName,
			&m.Category, &m.PageNumber, &m.SectionTitle, &m.ChunkIndex); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		hit.Distance = vector.CosineDistance(embedding, decodeVector(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return vector.TopK(hits, k), nil
}

// DeleteWhere removes every record of a collection matching the filter.
func (v *vectorIndex) DeleteWhere(ctx context.Context, collection string, filter driven.VectorFilter) error {
	query := "DELETE FROM vectors WHERE collection = ?"
	args := []any{collection}
	if filter.DocumentID != "" {
		query += " AND document_id = ?"
		args = append(args, filter.DocumentID)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if _, err := v.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// DeleteCollection drops a collection and all of its records.
func (v *vectorIndex) DeleteCollection(ctx context.Context, collection string) error {
	if _, err := v.store.db.ExecContext(ctx, "DELETE FROM vectors WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the connection.
func (v *vectorIndex) Close() error {
	return nil
}
