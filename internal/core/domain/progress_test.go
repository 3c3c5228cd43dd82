package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_PercentAndLabel(t *testing.T) {
	tests := []struct {
		step    Step
		percent int
		label   string
	}{
		{StepPending, 0, "En attente"},
		{StepReading, 10, "Lecture du fichier"},
		{StepExtractingText, 30, "Extraction du texte"},
		{StepExtractingImages, 50, "Extraction des images"},
		{StepChunking, 65, "Découpage en chunks"},
		{StepAnonymizing, 75, "Anonymisation"},
		{StepIndexing, 90, "Indexation vectorielle"},
		{StepCompleted, 100, "Terminé"},
		{StepFailed, -1, "Échec"},
	}

	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			assert.Equal(t, tt.percent, tt.step.Percent())
			assert.Equal(t, tt.label, tt.step.Label())
		})
	}
}

func TestNewProgress(t *testing.T) {
	p := NewProgress("doc-1", StepChunking)

	assert.Equal(t, "doc-1", p.DocumentID)
	assert.Equal(t, StepChunking, p.Step)
	assert.Equal(t, 65, p.Percent)
	assert.Equal(t, "Découpage en chunks", p.Label)
	assert.False(t, p.UpdatedAt.IsZero())
	assert.False(t, p.IsTerminal())
}

func TestFailedProgress_TruncatesError(t *testing.T) {
	long := strings.Repeat("é", 300)

	p := FailedProgress("doc-1", long)

	assert.Equal(t, -1, p.Percent)
	assert.Equal(t, MaxProgressErrorLength, len([]rune(p.Error)))
	assert.True(t, strings.HasPrefix(p.Label, "Échec: "))
	assert.True(t, p.IsTerminal())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "éé", TruncateRunes("ééé", 2))
	assert.Equal(t, "", TruncateRunes("", 2))
}
