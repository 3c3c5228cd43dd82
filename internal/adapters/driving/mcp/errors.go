// Package mcp provides an MCP (Model Context Protocol) server adapter for rfpvault.
// It lets AI assistants search anonymized tender documents and convert text
// to and from project placeholders.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingAnonymizationService is returned when the anonymization service is not provided.
var ErrMissingAnonymizationService = errors.New("mcp: anonymization service is required")
