package mcp

import (
	"context"
	"errors"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project whose documents are searched"`
	Query     string `json:"query" jsonschema:"the search query"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Category  string `json:"category,omitempty" jsonschema:"restrict to old_rfp, old_response or new_rfp"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Category     string  `json:"category"`
	PageNumber   int     `json:"page_number"`
	SectionTitle string  `json:"section_title,omitempty"`
	Content      string  `json:"content"`
	Score        float64 `json:"score"`
}

// TextInput is the input schema for the anonymize and deanonymize tools.
type TextInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project that scopes the placeholders"`
	Text      string `json:"text" jsonschema:"the text to convert"`
}

// TextOutput is the output schema for the anonymize and deanonymize tools.
type TextOutput struct {
	Text string `json:"text"`
}

// MappingsInput is the input schema for the mappings tool.
type MappingsInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project whose mappings are listed"`
}

// MappingsOutput is the output schema for the mappings tool.
type MappingsOutput struct {
	ProjectID string          `json:"project_id"`
	Total     int             `json:"total"`
	Mappings  []MappingOutput `json:"mappings"`
}

// MappingOutput represents one placeholder mapping. Original values are
// not exposed.
type MappingOutput struct {
	EntityType  string `json:"entity_type"`
	Placeholder string `json:"placeholder"`
	Active      bool   `json:"active"`
}

// ProgressInput is the input schema for the progress tool.
type ProgressInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document being ingested"`
}

// ProgressOutput is the output schema for the progress tool.
type ProgressOutput struct {
	DocumentID string `json:"document_id"`
	Step       string `json:"step"`
	Percent    int    `json:"percent"`
	Label      string `json:"label"`
	Error      string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search over the anonymized chunks of a project's tender documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "anonymize",
		Description: "Replace sensitive values in text with the project's placeholders",
	}, s.handleAnonymize)

	if s.reveal {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "deanonymize",
			Description: "Restore original values for the project's placeholders found in text",
		}, s.handleDeanonymize)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "mappings",
		Description: "List the placeholders allocated in a project, grouped by entity type",
	}, s.handleMappings)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "progress",
			Description: "Report the ingestion progress of a document",
		}, s.handleProgress)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		TopK:     input.TopK,
		Category: domain.Category(input.Category),
	}
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultTopK
	}

	results, err := s.ports.Search.Search(ctx, input.ProjectID, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:      results[i].ChunkID,
			DocumentID:   results[i].DocumentID,
			DocumentName: results[i].DocumentName,
			Category:     results[i].Category.String(),
			PageNumber:   results[i].PageNumber,
			SectionTitle: results[i].SectionTitle,
			Content:      results[i].Content,
			Score:        results[i].Score,
		}
	}

	return nil, output, nil
}

func (s *Server) handleAnonymize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TextInput,
) (*mcp.CallToolResult, TextOutput, error) {
	text, err := s.ports.Anonymization.AnonymizeText(ctx, input.ProjectID, input.Text)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: text}, nil
}

func (s *Server) handleDeanonymize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TextInput,
) (*mcp.CallToolResult, TextOutput, error) {
	text, err := s.ports.Anonymization.DeanonymizeText(ctx, input.ProjectID, input.Text)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: text}, nil
}

func (s *Server) handleMappings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MappingsInput,
) (*mcp.CallToolResult, MappingsOutput, error) {
	report, err := s.ports.Anonymization.MappingReport(ctx, input.ProjectID)
	if err != nil {
		return nil, MappingsOutput{}, err
	}

	output := MappingsOutput{
		ProjectID: report.ProjectID,
		Total:     report.Total,
		Mappings:  make([]MappingOutput, 0, report.Total),
	}
	for _, t := range domain.AllEntityTypes() {
		mappings := report.ByType[t]
		sort.Slice(mappings, func(i, j int) bool { return mappings[i].Placeholder < mappings[j].Placeholder })
		for _, m := range mappings {
			output.Mappings = append(output.Mappings, MappingOutput{
				EntityType:  t.String(),
				Placeholder: m.Placeholder,
				Active:      m.Active,
			})
		}
	}

	return nil, output, nil
}

func (s *Server) handleProgress(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProgressInput,
) (*mcp.CallToolResult, ProgressOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, ProgressOutput{}, errors.New("ingestion service not configured")
	}

	p, err := s.ports.Ingestion.Progress(ctx, input.DocumentID)
	if err != nil {
		return nil, ProgressOutput{}, err
	}

	return nil, ProgressOutput{
		DocumentID: p.DocumentID,
		Step:       p.Step.String(),
		Percent:    p.Percent,
		Label:      p.Label,
		Error:      p.Error,
	}, nil
}
