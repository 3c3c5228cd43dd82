package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntityType is the category of a sensitive value.
// Each type has a fixed placeholder prefix.
type EntityType string

// Entity types.
const (
	EntityCompany      EntityType = "company"
	EntityPerson       EntityType = "person"
	EntityEmail        EntityType = "email"
	EntityPhone        EntityType = "phone"
	EntityAddress      EntityType = "address"
	EntityProjectCode  EntityType = "project_code"
	EntityRFPCode      EntityType = "rfp_code"
	EntitySolutionName EntityType = "solution_name"
	EntityDate         EntityType = "date"
	EntityAmount       EntityType = "amount"
	EntityOther        EntityType = "other"
)

var entityPrefixes = map[EntityType]string{
	EntityCompany:      "ENTREPRISE",
	EntityPerson:       "PERSONNE",
	EntityEmail:        "EMAIL",
	EntityPhone:        "TELEPHONE",
	EntityAddress:      "ADRESSE",
	EntityProjectCode:  "CODE_PROJET",
	EntityRFPCode:      "CODE_AO",
	EntitySolutionName: "SOLUTION",
	EntityDate:         "DATE",
	EntityAmount:       "MONTANT",
	EntityOther:        "ENTITE",
}

// AllEntityTypes returns every entity type in display order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityCompany, EntityPerson, EntityEmail, EntityPhone, EntityAddress,
		EntityProjectCode, EntityRFPCode, EntitySolutionName, EntityDate,
		EntityAmount, EntityOther,
	}
}

// IsValid returns true if the entity type is recognised.
func (t EntityType) IsValid() bool {
	_, ok := entityPrefixes[t]
	return ok
}

// Prefix returns the placeholder prefix for the type.
// Unknown types use the prefix of EntityOther.
func (t EntityType) Prefix() string {
	if p, ok := entityPrefixes[t]; ok {
		return p
	}
	return entityPrefixes[EntityOther]
}

// String returns the string representation.
func (t EntityType) String() string {
	return string(t)
}

// EntityTypeFromLabel classifies a detector label into an entity type.
// Matching is case-insensitive; unmapped labels fall back to EntityOther.
func EntityTypeFromLabel(label string) EntityType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "person", "per":
		return EntityPerson
	case "organization", "organisation", "company", "org":
		return EntityCompany
	case "email address", "email":
		return EntityEmail
	case "phone number", "phone":
		return EntityPhone
	case "address", "location", "loc":
		return EntityAddress
	case "project code":
		return EntityProjectCode
	case "rfp code":
		return EntityRFPCode
	case "solution name":
		return EntitySolutionName
	case "date":
		return EntityDate
	case "monetary amount", "amount":
		return EntityAmount
	default:
		return EntityOther
	}
}

// EntityTypeFromPrefix returns the type owning a placeholder prefix.
func EntityTypeFromPrefix(prefix string) (EntityType, bool) {
	for t, p := range entityPrefixes {
		if p == prefix {
			return t, true
		}
	}
	return "", false
}

// ParsePlaceholder splits a [PREFIX_n] token into its type and number.
func ParsePlaceholder(token string) (EntityType, int, bool) {
	inner, ok := strings.CutPrefix(token, "[")
	if !ok {
		return "", 0, false
	}
	inner, ok = strings.CutSuffix(inner, "]")
	if !ok {
		return "", 0, false
	}
	cut := strings.LastIndexByte(inner, '_')
	if cut <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(inner[cut+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	t, ok := EntityTypeFromPrefix(inner[:cut])
	return t, n, ok
}

// FormatPlaceholder builds the placeholder token [PREFIX_n].
func FormatPlaceholder(t EntityType, n int) string {
	return fmt.Sprintf("[%s_%d]", t.Prefix(), n)
}

// SpanSource records which detection path produced a span.
type SpanSource string

// Span sources.
const (
	SpanSourceModel SpanSource = "model"
	SpanSourceRegex SpanSource = "regex"
)

// EntitySpan is a detected sensitive value inside a specific text.
// Start and End are byte offsets into that text. Spans are never persisted.
type EntitySpan struct {
	Text   string
	Label  string
	Start  int
	End    int
	Score  float64
	Source SpanSource
}

// Len returns the span length in bytes.
func (s EntitySpan) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one byte.
func (s EntitySpan) Overlaps(o EntitySpan) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely within s.
func (s EntitySpan) Contains(o EntitySpan) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// EntityMapping is the persisted correspondence between an original value
// and its placeholder inside one project.
type EntityMapping struct {
	// ID is the unique identifier for the mapping row.
	ID string

	// ProjectID scopes the mapping.
	ProjectID string

	// EntityType is the classified type of the original value.
	EntityType EntityType

	// OriginalValue is the trimmed sensitive value, unique per project.
	OriginalValue string

	// Placeholder is the [PREFIX_n] token, unique per project.
	Placeholder string

	// Active is false when the mapping has been soft-disabled.
	Active bool

	// CreatedAt is when the mapping was first allocated.
	CreatedAt time.Time
}

// MappingReport groups a project's mappings by entity type.
type MappingReport struct {
	ProjectID string
	Total     int
	ByType    map[EntityType][]EntityMapping
}

// NewMappingReport builds a report from a flat list of mappings.
func NewMappingReport(projectID string, mappings []EntityMapping) MappingReport {
	report := MappingReport{
		ProjectID: projectID,
		Total:     len(mappings),
		ByType:    make(map[EntityType][]EntityMapping),
	}
	for _, m := range mappings {
		report.ByType[m.EntityType] = append(report.ByType[m.EntityType], m)
	}
	return report
}
