package services

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

var docLog = logger.For("document")

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages documents within projects.
type DocumentService struct {
	docStore driven.DocumentStore
	blobs    driven.BlobStore
	mappings driven.MappingStore
	progress driven.ProgressStore
	search   *SearchService
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	blobs driven.BlobStore,
	mappings driven.MappingStore,
	progress driven.ProgressStore,
	search *SearchService,
) *DocumentService {
	if search == nil {
		search = NewSearchService(nil, nil)
	}
	return &DocumentService{
		docStore: docStore,
		blobs:    blobs,
		mappings: mappings,
		progress: progress,
		search:   search,
	}
}

// List returns all documents of a project.
func (s *DocumentService) List(ctx context.Context, projectID string) ([]domain.Document, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	return s.docStore.ListDocuments(ctx, projectID)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetChunks returns the chunks of a document in index order.
func (s *DocumentService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetChunks(ctx, documentID)
}

// GetImages returns the images extracted from a document.
func (s *DocumentService) GetImages(ctx context.Context, documentID string) ([]domain.DocumentImage, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetImages(ctx, documentID)
}

// Delete removes a document with its chunks, images, stored files and vectors.
// Vector removal is best-effort; file removal errors are joined and returned
// after the rows are gone.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	s.search.DeleteByDocument(ctx, doc.ProjectID, doc.ID)

	var errs []error
	images, err := s.docStore.GetImages(ctx, doc.ID)
	if err != nil {
		errs = append(errs, fmt.Errorf("list images: %w", err))
	}
	for _, img := range images {
		if err := s.blobs.Delete(ctx, img.FilePath); err != nil {
			errs = append(errs, fmt.Errorf("delete image %s: %w", img.StoredFilename, err))
		}
	}
	if err := s.blobs.DeletePrefix(ctx, ImagePrefix(doc)); err != nil {
		errs = append(errs, fmt.Errorf("delete image dir: %w", err))
	}
	if doc.FilePath != "" {
		if err := s.blobs.Delete(ctx, doc.FilePath); err != nil {
			errs = append(errs, fmt.Errorf("delete upload: %w", err))
		}
	}

	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		return errors.Join(append(errs, fmt.Errorf("delete document: %w", err))...)
	}
	if err := s.progress.Delete(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		docLog.Warn("Removing progress of %s: %v", doc.ID, err)
	}

	docLog.Info("Deleted document %s (%s)", doc.ID, doc.OriginalFilename)
	return errors.Join(errs...)
}

// DeleteProject removes every document, mapping and vector of a project.
func (s *DocumentService) DeleteProject(ctx context.Context, projectID string) error {
	docs, err := s.List(ctx, projectID)
	if err != nil {
		return err
	}

	var errs []error
	for _, doc := range docs {
		if err := s.Delete(ctx, doc.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.mappings.DeleteProject(ctx, projectID); err != nil {
		errs = append(errs, fmt.Errorf("delete mappings: %w", err))
	}
	s.search.DeleteProject(ctx, projectID)
	if err := s.blobs.DeletePrefix(ctx, path.Clean(projectID)+"/"); err != nil {
		errs = append(errs, fmt.Errorf("delete project files: %w", err))
	}

	docLog.Info("Deleted project %s (%d documents)", projectID, len(docs))
	return errors.Join(errs...)
}
