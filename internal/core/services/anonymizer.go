package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

var anonLog = logger.For("anon")

// Ensure AnonymizationService implements the interface.
var _ driving.AnonymizationService = (*AnonymizationService)(nil)

// minEntityLength filters one-character detections.
const minEntityLength = 2

// AnonymizationService replaces sensitive values with project-scoped
// placeholders and restores them on demand.
type AnonymizationService struct {
	detector *EntityDetector
	mappings driven.MappingStore
	locks    *keyedMutex
}

// NewAnonymizationService creates a new anonymization service.
func NewAnonymizationService(detector *EntityDetector, mappings driven.MappingStore) *AnonymizationService {
	if detector == nil {
		detector = NewEntityDetector(nil)
	}
	return &AnonymizationService{
		detector: detector,
		mappings: mappings,
		locks:    newKeyedMutex(),
	}
}

// AnonymizeText replaces detected sensitive values in text with placeholders.
func (s *AnonymizationService) AnonymizeText(ctx context.Context, projectID, text string) (string, error) {
	out, err := s.AnonymizeBatch(ctx, projectID, []string{text})
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// AnonymizeBatch anonymizes texts against one shared mapping set. The set is
// loaded once and new mappings are persisted once, while the project lock is held.
func (s *AnonymizationService) AnonymizeBatch(ctx context.Context, projectID string, texts []string) ([]string, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	out := make([]string, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	spans := s.detector.DetectBatch(ctx, texts)

	unlock := s.locks.Lock(projectID)
	defer unlock()

	set, err := s.loadMappingSet(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for i, text := range texts {
		out[i] = set.apply(text, spans[i])
	}

	if len(set.pending) > 0 {
		if err := s.mappings.Insert(ctx, set.pending); err != nil {
			return nil, fmt.Errorf("persist mappings: %w", err)
		}
		anonLog.Debug("Project %s: %d new mappings", projectID, len(set.pending))
	}

	return out, nil
}

// DeanonymizeText restores the original value of every active placeholder in
// text. Tokens that were never allocated are left untouched.
func (s *AnonymizationService) DeanonymizeText(ctx context.Context, projectID, text string) (string, error) {
	if projectID == "" {
		return "", fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	mappings, err := s.mappings.List(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("load mappings: %w", err)
	}

	pairs := make([]string, 0, len(mappings)*2)
	for _, m := range mappings {
		if m.Active {
			pairs = append(pairs, m.Placeholder, m.OriginalValue)
		}
	}
	if len(pairs) == 0 {
		return text, nil
	}
	return strings.NewReplacer(pairs...).Replace(text), nil
}

// MappingReport returns the project's mappings grouped by entity type.
func (s *AnonymizationService) MappingReport(ctx context.Context, projectID string) (*domain.MappingReport, error) {
	mappings, err := s.mappings.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	report := domain.NewMappingReport(projectID, mappings)
	return &report, nil
}

// SetMappingActive enables or disables the mapping of an original value.
func (s *AnonymizationService) SetMappingActive(ctx context.Context, projectID, originalValue string, active bool) error {
	original := strings.TrimSpace(originalValue)
	if projectID == "" || original == "" {
		return fmt.Errorf("%w: project id and value required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(projectID)
	defer unlock()

	if err := s.mappings.SetActive(ctx, projectID, original, active); err != nil {
		return fmt.Errorf("set mapping state: %w", err)
	}
	return nil
}

// loadMappingSet reads the project's mappings and seeds per-type counters
// from the persisted counts.
func (s *AnonymizationService) loadMappingSet(ctx context.Context, projectID string) (*mappingSet, error) {
	existing, err := s.mappings.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	counts, err := s.mappings.CountByType(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("count mappings: %w", err)
	}
	if counts == nil {
		counts = make(map[domain.EntityType]int)
	}

	set := &mappingSet{
		projectID:    projectID,
		byOriginal:   make(map[string]domain.EntityMapping, len(existing)),
		placeholders: make(map[string]bool, len(existing)),
		counters:     counts,
	}
	for _, m := range existing {
		set.byOriginal[m.OriginalValue] = m
		set.placeholders[m.Placeholder] = true
	}
	return set, nil
}

// mappingSet is the working copy of a project's mappings during one call.
type mappingSet struct {
	projectID    string
	byOriginal   map[string]domain.EntityMapping
	placeholders map[string]bool
	counters     map[domain.EntityType]int
	pending      []domain.EntityMapping
}

type replacement struct {
	start, end  int
	placeholder string
}

// apply replaces spans in text, allocating placeholders for new values.
func (m *mappingSet) apply(text string, spans []domain.EntitySpan) string {
	var repls []replacement
	for _, span := range spans {
		if span.Start < 0 || span.End > len(text) || span.Start >= span.End {
			continue
		}
		raw := text[span.Start:span.End]
		original := strings.TrimSpace(raw)
		if len([]rune(original)) < minEntityLength {
			continue
		}

		mapping, ok := m.byOriginal[original]
		if !ok {
			mapping = m.allocate(original, domain.EntityTypeFromLabel(span.Label))
		}
		if !mapping.Active {
			continue
		}

		lead := strings.Index(raw, original)
		start := span.Start + lead
		repls = append(repls, replacement{
			start:       start,
			end:         start + len(original),
			placeholder: mapping.Placeholder,
		})
	}

	sort.Slice(repls, func(i, j int) bool { return repls[i].start < repls[j].start })

	result := text
	for i := len(repls) - 1; i >= 0; i-- {
		r := repls[i]
		result = result[:r.start] + r.placeholder + result[r.end:]
	}
	return result
}

// allocate creates the next placeholder of a type and records the mapping.
func (m *mappingSet) allocate(original string, entityType domain.EntityType) domain.EntityMapping {
	var placeholder string
	for {
		m.counters[entityType]++
		placeholder = domain.FormatPlaceholder(entityType, m.counters[entityType])
		if !m.placeholders[placeholder] {
			break
		}
	}

	mapping := domain.EntityMapping{
		ID:            uuid.New().String(),
		ProjectID:     m.projectID,
		EntityType:    entityType,
		OriginalValue: original,
		Placeholder:   placeholder,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}
	m.byOriginal[original] = mapping
	m.placeholders[placeholder] = true
	m.pending = append(m.pending, mapping)
	return mapping
}
