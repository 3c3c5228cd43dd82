package mcp

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	projectID string
	opts      domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	projectID string,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.projectID = projectID
	m.opts = opts
	return m.results, m.err
}

// mockAnonymizationService is a mock implementation of driving.AnonymizationService.
type mockAnonymizationService struct {
	report *domain.MappingReport
	err    error
}

func (m *mockAnonymizationService) AnonymizeText(_ context.Context, _, text string) (string, error) {
	return "anon(" + text + ")", m.err
}

func (m *mockAnonymizationService) AnonymizeBatch(_ context.Context, _ string, texts []string) ([]string, error) {
	return texts, m.err
}

func (m *mockAnonymizationService) DeanonymizeText(_ context.Context, _, text string) (string, error) {
	return "deanon(" + text + ")", m.err
}

func (m *mockAnonymizationService) MappingReport(_ context.Context, _ string) (*domain.MappingReport, error) {
	return m.report, m.err
}

func (m *mockAnonymizationService) SetMappingActive(_ context.Context, _, _ string, _ bool) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.Chunk
	err       error
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) GetImages(_ context.Context, _ string) ([]domain.DocumentImage, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) DeleteProject(_ context.Context, _ string) error {
	return m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	progress *domain.Progress
	err      error
}

func (m *mockIngestionService) Upload(_ context.Context, _ driving.UploadRequest) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockIngestionService) Process(_ context.Context, _ string) error { return m.err }

func (m *mockIngestionService) Start(_ context.Context, _ string) error { return m.err }

func (m *mockIngestionService) Progress(_ context.Context, _ string) (*domain.Progress, error) {
	return m.progress, m.err
}

func (m *mockIngestionService) Wait() {}

func validPorts() *Ports {
	return &Ports{
		Search:        &mockSearchService{},
		Anonymization: &mockAnonymizationService{},
	}
}
