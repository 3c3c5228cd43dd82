// Package connectors provides sources that feed documents into ingestion.
// The filesystem connector watches a drop folder for new or changed files.
package connectors
