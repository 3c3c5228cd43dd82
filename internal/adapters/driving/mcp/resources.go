package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for rfpvault resources.
	uriScheme = "rfpvault://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Document == nil {
		return
	}

	// Template for project documents.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/documents",
		Name:        "project-documents",
		Description: "Documents uploaded to a tender project with their processing status",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for anonymized document chunks.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/chunks",
		Name:        "document-chunks",
		Description: "Anonymized text chunks of a document",
		MIMEType:    "application/json",
	}, s.handleChunksResource)
}

// handleDocumentsResource returns the documents of a project.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract projectId from URI: rfpvault://projects/{projectId}/documents
	projectID := extractProjectID(req.Params.URI)
	if projectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Document.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID         string `json:"id"`
		Filename   string `json:"filename"`
		Category   string `json:"category"`
		Status     string `json:"status"`
		PageCount  int    `json:"page_count"`
		ChunkCount int    `json:"chunk_count"`
		Error      string `json:"error,omitempty"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:         docs[i].ID,
			Filename:   docs[i].OriginalFilename,
			Category:   docs[i].Category.String(),
			Status:     docs[i].Status.String(),
			PageCount:  docs[i].PageCount,
			ChunkCount: docs[i].ChunkCount,
			Error:      docs[i].Error,
		}
	}

	return jsonResource(req.Params.URI, infos, "documents")
}

// handleChunksResource returns the anonymized chunks of a document.
func (s *Server) handleChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract documentId from URI: rfpvault://documents/{documentId}/chunks
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunks, err := s.ports.Document.GetChunks(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document chunks: %w", err)
	}

	type chunkInfo struct {
		Index        int    `json:"index"`
		PageNumber   int    `json:"page_number"`
		SectionTitle string `json:"section_title,omitempty"`
		Content      string `json:"content"`
	}

	infos := make([]chunkInfo, len(chunks))
	for i, c := range chunks {
		infos[i] = chunkInfo{
			Index:        c.ChunkIndex,
			PageNumber:   c.PageNumber,
			SectionTitle: c.SectionTitle,
			Content:      c.AnonymizedContent,
		}
	}

	return jsonResource(req.Params.URI, infos, "chunks")
}

func jsonResource(uri string, v any, what string) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", what, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractProjectID extracts the project ID from a URI like rfpvault://projects/{projectId}/documents.
func extractProjectID(uri string) string {
	return between(uri, uriScheme+"projects/", "/documents")
}

// extractDocumentID extracts the document ID from a URI like rfpvault://documents/{documentId}/chunks.
func extractDocumentID(uri string) string {
	return between(uri, uriScheme+"documents/", "/chunks")
}

func between(uri, prefix, suffix string) string {
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	id := strings.TrimSuffix(uri, suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
