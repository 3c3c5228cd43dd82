package domain

import (
	"time"
	"unicode/utf8"
)

// Step is a stage of an ingestion run reported to the progress store.
type Step string

// Ingestion steps in execution order.
const (
	StepPending          Step = "pending"
	StepReading          Step = "reading"
	StepExtractingText   Step = "extracting_text"
	StepExtractingImages Step = "extracting_images"
	StepChunking         Step = "chunking"
	StepAnonymizing      Step = "anonymizing"
	StepIndexing         Step = "indexing"
	StepCompleted        Step = "completed"
	StepFailed           Step = "failed"
)

// MaxProgressErrorLength bounds the error text stored with a failed step.
const MaxProgressErrorLength = 120

// Percent returns the completion percentage of the step, -1 for failed.
func (s Step) Percent() int {
	switch s {
	case StepPending:
		return 0
	case StepReading:
		return 10
	case StepExtractingText:
		return 30
	case StepExtractingImages:
		return 50
	case StepChunking:
		return 65
	case StepAnonymizing:
		return 75
	case StepIndexing:
		return 90
	case StepCompleted:
		return 100
	case StepFailed:
		return -1
	default:
		return 0
	}
}

// Label returns the user-facing label of the step.
func (s Step) Label() string {
	switch s {
	case StepPending:
		return "En attente"
	case StepReading:
		return "Lecture du fichier"
	case StepExtractingText:
		return "Extraction du texte"
	case StepExtractingImages:
		return "Extraction des images"
	case StepChunking:
		return "Découpage en chunks"
	case StepAnonymizing:
		return "Anonymisation"
	case StepIndexing:
		return "Indexation vectorielle"
	case StepCompleted:
		return "Terminé"
	case StepFailed:
		return "Échec"
	default:
		return string(s)
	}
}

// String returns the string representation.
func (s Step) String() string {
	return string(s)
}

// Progress is the latest reported step of a document's ingestion run.
type Progress struct {
	DocumentID string
	Step       Step
	Percent    int
	Label      string
	Error      string
	UpdatedAt  time.Time
}

// NewProgress builds the progress record for a step.
func NewProgress(documentID string, step Step) Progress {
	return Progress{
		DocumentID: documentID,
		Step:       step,
		Percent:    step.Percent(),
		Label:      step.Label(),
		UpdatedAt:  time.Now().UTC(),
	}
}

// FailedProgress builds a failed progress record with a truncated error.
func FailedProgress(documentID, errMsg string) Progress {
	msg := TruncateRunes(errMsg, MaxProgressErrorLength)
	p := NewProgress(documentID, StepFailed)
	p.Error = msg
	p.Label = StepFailed.Label() + ": " + msg
	return p
}

// IsTerminal returns true once the run has completed or failed.
func (p Progress) IsTerminal() bool {
	return p.Step == StepCompleted || p.Step == StepFailed
}

// TruncateRunes shortens s to at most n runes.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
