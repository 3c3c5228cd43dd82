// Package hugot runs a token classification model in-process through
// knights-analytics/hugot using the pure Go backend.
package hugot

import (
	"context"
	"fmt"
	"strings"

	khugot "github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

// Ensure Model implements the interface.
var _ driven.EntityModel = (*Model)(nil)

// DefaultOnnxFilename is used when the configuration leaves it empty.
const DefaultOnnxFilename = "model.onnx"

// Config holds configuration for the hugot entity model.
type Config struct {
	// ModelPath is the directory holding the exported model and tokenizer.
	ModelPath string

	// OnnxFilename selects the ONNX file inside ModelPath.
	OnnxFilename string
}

// Model wraps a hugot token classification pipeline.
type Model struct {
	session  *khugot.Session
	pipeline *pipelines.TokenClassificationPipeline
	name     string
}

// tagLabels maps the tags emitted by common NER checkpoints to detector labels.
var tagLabels = map[string]string{
	"PER":          "person",
	"PERSON":       "person",
	"ORG":          "organization",
	"ORGANIZATION": "organization",
	"COMPANY":      "company",
	"LOC":          "address",
	"LOCATION":     "address",
	"ADDRESS":      "address",
	"EMAIL":        "email address",
	"PHONE":        "phone number",
	"MONEY":        "monetary amount",
}

// NewModel loads the model. Loading is slow; callers construct one Model
// per process and share it.
func NewModel(cfg Config) (*Model, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: model path is required", domain.ErrModelUnavailable)
	}
	if cfg.OnnxFilename == "" {
		cfg.OnnxFilename = DefaultOnnxFilename
	}

	session, err := khugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("%w: creating hugot session: %v", domain.ErrModelUnavailable, err)
	}

	name := fmt.Sprintf("%s:%s", cfg.ModelPath, cfg.OnnxFilename)
	pipeline, err := khugot.NewPipeline(session, khugot.TokenClassificationConfig{
		ModelPath:    cfg.ModelPath,
		OnnxFilename: cfg.OnnxFilename,
		Name:         name,
	})
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("%w: creating token classification pipeline: %v", domain.ErrModelUnavailable, err)
	}
	// Groups B-/I- tokens into whole entities; must be upper case.
	pipeline.AggregationStrategy = "SIMPLE"

	logger.Info("Loaded entity model %s", name)
	return &Model{session: session, pipeline: pipeline, name: name}, nil
}

// Predict runs the pipeline over every text in one batch.
func (m *Model) Predict(ctx context.Context, texts []string, labels []string, threshold float64) ([][]domain.EntitySpan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]domain.EntitySpan{}, nil
	}

	output, err := m.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("running token classification: %w", err)
	}
	if len(output.Entities) != len(texts) {
		return nil, fmt.Errorf("token classification returned %d results for %d texts", len(output.Entities), len(texts))
	}

	results := make([][]domain.EntitySpan, len(texts))
	for i, entities := range output.Entities {
		results[i] = toSpans(texts[i], entities, labels, threshold)
	}
	return results, nil
}

// Name returns the model identifier.
func (m *Model) Name() string {
	return m.name
}

// Close destroys the hugot session.
func (m *Model) Close() error {
	return m.session.Destroy()
}

// toSpans converts pipeline entities into spans, keeping those whose mapped
// label was requested and whose score reaches threshold.
func toSpans(text string, entities []pipelines.Entity, labels []string, threshold float64) []domain.EntitySpan {
	allowed := make(map[string]bool, len(labels))
	for _, l := range labels {
		allowed[l] = true
	}

	spans := make([]domain.EntitySpan, 0, len(entities))
	for _, e := range entities {
		if float64(e.Score) < threshold {
			continue
		}
		label, ok := mapTag(e.Entity)
		if !ok || !allowed[label] {
			continue
		}
		start, end := int(e.Start), int(e.End)
		if start < 0 || end > len(text) || start >= end {
			continue
		}
		spans = append(spans, domain.EntitySpan{
			Text:  text[start:end],
			Label: label,
			Start: start,
			End:   end,
			Score: float64(e.Score),
		})
	}
	return spans
}

// mapTag normalises a model tag such as "B-PER" or "org" to a detector label.
func mapTag(tag string) (string, bool) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if i := strings.IndexByte(tag, '-'); i == 1 {
		tag = tag[2:]
	}
	label, ok := tagLabels[tag]
	return label, ok
}
