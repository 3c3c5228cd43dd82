// Package driven holds the outbound ports: everything the services need from
// storage, models and the filesystem.
//
// Always wired: Normaliser and NormaliserRegistry, DocumentStore,
// MappingStore, ProgressStore, BlobStore and ConfigStore.
//
// May be nil: EntityModel (detection falls back to the regex rules),
// EmbeddingService and VectorIndex (no indexing, no search). ImageExtractor
// is an extra interface some normalisers implement.
//
// This package imports domain and nothing else from internal/.
package driven
