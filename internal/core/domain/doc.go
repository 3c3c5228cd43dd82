// Package domain holds the types every other package shares: projects'
// documents and their chunks, entity mappings with their placeholders,
// ingestion progress and settings. It imports only the standard library.
package domain
