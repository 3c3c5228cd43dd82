package services

import (
	"context"
	"regexp"
	"sort"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

var nerLog = logger.For("ner")

// DetectionLabels is the label set the learned model is constrained to.
var DetectionLabels = []string{
	"person",
	"organization",
	"company",
	"email address",
	"phone number",
	"address",
	"project code",
	"solution name",
	"monetary amount",
}

// Default inference parameters.
const (
	DefaultDetectionThreshold = 0.4
	DefaultInferenceWindow    = 150
	DefaultInferenceOverlap   = 20
)

var (
	wordPattern  = regexp.MustCompile(`\S+`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(?:\+33|0)\s*[1-9](?:[\s.-]*\d{2}){4}`)
)

// regexRules are applied to every text regardless of model confidence.
var regexRules = []struct {
	label   string
	pattern *regexp.Regexp
}{
	{label: string(domain.EntityEmail), pattern: emailPattern},
	{label: string(domain.EntityPhone), pattern: phonePattern},
}

// EntityDetector finds sensitive values using an optional learned model
// and deterministic regex rules.
type EntityDetector struct {
	model        driven.EntityModel
	threshold    float64
	windowWords  int
	overlapWords int
}

// DetectorOption configures an EntityDetector.
type DetectorOption func(*EntityDetector)

// WithThreshold sets the minimum model confidence.
func WithThreshold(threshold float64) DetectorOption {
	return func(d *EntityDetector) {
		if threshold > 0 && threshold <= 1 {
			d.threshold = threshold
		}
	}
}

// WithInferenceWindow sets the inference window size and overlap in words.
func WithInferenceWindow(words, overlap int) DetectorOption {
	return func(d *EntityDetector) {
		if words > 0 {
			d.windowWords = words
		}
		if overlap >= 0 {
			d.overlapWords = overlap
		}
	}
}

// NewEntityDetector creates a detector. A nil model means regex rules only.
func NewEntityDetector(model driven.EntityModel, opts ...DetectorOption) *EntityDetector {
	d := &EntityDetector{
		model:        model,
		threshold:    DefaultDetectionThreshold,
		windowWords:  DefaultInferenceWindow,
		overlapWords: DefaultInferenceOverlap,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.overlapWords >= d.windowWords {
		d.overlapWords = d.windowWords / 4
	}
	return d
}

// HasModel reports whether a learned model is attached.
func (d *EntityDetector) HasModel() bool {
	return d.model != nil
}

// Detect returns the entities found in one text, sorted by start offset.
func (d *EntityDetector) Detect(ctx context.Context, text string) []domain.EntitySpan {
	return d.DetectBatch(ctx, []string{text})[0]
}

// inferenceWindow is a model-sized slice of one input text.
type inferenceWindow struct {
	textIndex int
	offset    int
	text      string
}

// DetectBatch detects entities in many texts with a single model call.
// The i-th result belongs to the i-th text.
func (d *EntityDetector) DetectBatch(ctx context.Context, texts []string) [][]domain.EntitySpan {
	results := make([][]domain.EntitySpan, len(texts))

	if d.model != nil {
		var windows []inferenceWindow
		for i, text := range texts {
			windows = append(windows, d.windows(i, text)...)
		}
		if len(windows) > 0 {
			d.predict(ctx, texts, windows, results)
		}
	}

	for i, text := range texts {
		results[i] = resolveOverlaps(augmentWithRules(text, results[i]))
	}
	return results
}

// predict runs the model over every window and maps detections back to
// absolute offsets of their owning text. Failures leave results untouched.
func (d *EntityDetector) predict(ctx context.Context, texts []string, windows []inferenceWindow, results [][]domain.EntitySpan) {
	inputs := make([]string, len(windows))
	for i, w := range windows {
		inputs[i] = w.text
	}

	predictions, err := d.model.Predict(ctx, inputs, DetectionLabels, d.threshold)
	if err != nil {
		nerLog.Error("Entity model %s failed, using regex rules only: %v", d.model.Name(), err)
		return
	}
	if len(predictions) != len(windows) {
		nerLog.Error("Entity model %s returned %d results for %d windows, using regex rules only",
			d.model.Name(), len(predictions), len(windows))
		return
	}

	type spanKey struct {
		text  string
		start int
	}
	seen := make([]map[spanKey]bool, len(texts))

	for i, w := range windows {
		if seen[w.textIndex] == nil {
			seen[w.textIndex] = make(map[spanKey]bool)
		}
		owner := texts[w.textIndex]
		for _, span := range predictions[i] {
			if span.Start < 0 || span.End > len(w.text) || span.Start >= span.End {
				continue
			}
			span.Start += w.offset
			span.End += w.offset
			if span.End > len(owner) {
				continue
			}
			span.Source = domain.SpanSourceModel
			key := spanKey{text: span.Text, start: span.Start}
			if seen[w.textIndex][key] {
				continue
			}
			seen[w.textIndex][key] = true
			results[w.textIndex] = append(results[w.textIndex], span)
		}
	}
}

// windows splits a text into overlapping word windows for inference.
// Texts that fit in one window are passed whole.
func (d *EntityDetector) windows(textIndex int, text string) []inferenceWindow {
	words := wordPattern.FindAllStringIndex(text, -1)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= d.windowWords {
		return []inferenceWindow{{textIndex: textIndex, offset: 0, text: text}}
	}

	step := d.windowWords - d.overlapWords
	var windows []inferenceWindow
	for i := 0; i < len(words); i += step {
		end := i + d.windowWords
		if end > len(words) {
			end = len(words)
		}
		start, stop := words[i][0], words[end-1][1]
		windows = append(windows, inferenceWindow{textIndex: textIndex, offset: start, text: text[start:stop]})
		if end == len(words) {
			break
		}
	}
	return windows
}

// augmentWithRules adds every regex match except those a model detection
// already found at the same place with the same text. Every occurrence is
// kept; resolveOverlaps settles the remaining clashes.
func augmentWithRules(text string, spans []domain.EntitySpan) []domain.EntitySpan {
	detected := len(spans)
	for _, rule := range regexRules {
		for _, loc := range rule.pattern.FindAllStringIndex(text, -1) {
			match := domain.EntitySpan{
				Text:   text[loc[0]:loc[1]],
				Label:  rule.label,
				Start:  loc[0],
				End:    loc[1],
				Score:  1,
				Source: domain.SpanSourceRegex,
			}
			if coveredByModel(spans[:detected], match) {
				continue
			}
			spans = append(spans, match)
		}
	}
	return spans
}

func coveredByModel(spans []domain.EntitySpan, match domain.EntitySpan) bool {
	for _, s := range spans {
		if s.Source == domain.SpanSourceModel && s.Text == match.Text && s.Overlaps(match) {
			return true
		}
	}
	return false
}

// resolveOverlaps keeps a non-overlapping subset of spans sorted by start.
// The longer span wins; on equal length model detections beat regex
// matches, then the earlier start wins. Spans inside a kept span are dropped.
func resolveOverlaps(spans []domain.EntitySpan) []domain.EntitySpan {
	if len(spans) == 0 {
		return []domain.EntitySpan{}
	}

	ranked := make([]domain.EntitySpan, len(spans))
	copy(ranked, spans)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Source != b.Source {
			return a.Source == domain.SpanSourceModel
		}
		return a.Start < b.Start
	})

	kept := make([]domain.EntitySpan, 0, len(ranked))
	for _, candidate := range ranked {
		clash := false
		for _, k := range kept {
			if k.Overlaps(candidate) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, candidate)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})
	return kept
}
