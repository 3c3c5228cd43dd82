// Package normalisers provides text extractors for the uploaded file
// formats. Each sub-package implements driven.Normaliser for one family of
// formats; the ones whose containers embed pictures also implement
// driven.ImageExtractor.
//
// Normalisers are registered with a Registry at startup, keyed by
// domain.FileType.
package normalisers
