package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					ChunkID:      "chunk-1",
					DocumentID:   "doc-1",
					DocumentName: "ao_2023.pdf",
					Category:     domain.CategoryOldRFP,
					PageNumber:   4,
					SectionTitle: "Exigences",
					Content:      "Le titulaire [ENTREPRISE_1] assure la maintenance.",
					Score:        0.91,
				},
			},
		}
		ports := validPorts()
		ports.Search = mockSearch
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{ProjectID: "p1", Query: "maintenance", TopK: 3, Category: "old_rfp"}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "doc-1", output.Results[0].DocumentID)
		assert.Equal(t, "ao_2023.pdf", output.Results[0].DocumentName)
		assert.Equal(t, "old_rfp", output.Results[0].Category)
		assert.Equal(t, 4, output.Results[0].PageNumber)
		assert.Equal(t, 0.91, output.Results[0].Score)
		assert.Equal(t, "p1", mockSearch.projectID)
		assert.Equal(t, domain.SearchOptions{TopK: 3, Category: domain.CategoryOldRFP}, mockSearch.opts)
	})

	t.Run("default top k", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		ports := validPorts()
		ports.Search = mockSearch
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{ProjectID: "p1", Query: "x"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, domain.DefaultTopK, mockSearch.opts.TopK)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		ports := validPorts()
		ports.Search = &mockSearchService{err: errors.New("search failed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		assert.ErrorContains(t, err, "search failed")
	})
}

func TestServer_handleAnonymize(t *testing.T) {
	server, err := NewServer(validPorts())
	require.NoError(t, err)

	_, out, err := server.handleAnonymize(context.Background(), nil, TextInput{ProjectID: "p1", Text: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "anon(Acme)", out.Text)

	_, out, err = server.handleDeanonymize(context.Background(), nil, TextInput{ProjectID: "p1", Text: "[ENTREPRISE_1]"})
	require.NoError(t, err)
	assert.Equal(t, "deanon([ENTREPRISE_1])", out.Text)
}

func TestServer_handleAnonymize_Error(t *testing.T) {
	ports := validPorts()
	ports.Anonymization = &mockAnonymizationService{err: domain.ErrInvalidInput}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, _, err = server.handleAnonymize(context.Background(), nil, TextInput{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServer_handleMappings(t *testing.T) {
	report := domain.NewMappingReport("p1", []domain.EntityMapping{
		{EntityType: domain.EntityPerson, OriginalValue: "Jean Dupont", Placeholder: "[PERSONNE_1]", Active: true},
		{EntityType: domain.EntityCompany, OriginalValue: "Beta", Placeholder: "[ENTREPRISE_2]", Active: false},
		{EntityType: domain.EntityCompany, OriginalValue: "Acme", Placeholder: "[ENTREPRISE_1]", Active: true},
	})
	ports := validPorts()
	ports.Anonymization = &mockAnonymizationService{report: &report}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleMappings(context.Background(), nil, MappingsInput{ProjectID: "p1"})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, []MappingOutput{
		{EntityType: "company", Placeholder: "[ENTREPRISE_1]", Active: true},
		{EntityType: "company", Placeholder: "[ENTREPRISE_2]", Active: false},
		{EntityType: "person", Placeholder: "[PERSONNE_1]", Active: true},
	}, out.Mappings)
}

func TestServer_handleProgress(t *testing.T) {
	progress := domain.FailedProgress("doc-1", "boom")
	ports := validPorts()
	ports.Ingestion = &mockIngestionService{progress: &progress}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleProgress(context.Background(), nil, ProgressInput{DocumentID: "doc-1"})

	require.NoError(t, err)
	assert.Equal(t, "failed", out.Step)
	assert.Equal(t, -1, out.Percent)
	assert.Equal(t, "Échec: boom", out.Label)
	assert.Equal(t, "boom", out.Error)
}

func TestServer_handleProgress_NotConfigured(t *testing.T) {
	server, err := NewServer(validPorts())
	require.NoError(t, err)

	_, _, err = server.handleProgress(context.Background(), nil, ProgressInput{DocumentID: "doc-1"})
	assert.ErrorContains(t, err, "not configured")
}
