package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "progress", "missing", "--follow=false")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get progress")
}

func TestProgressCmd_CompletedDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	docID := ingestTenderFile(t, "prog-proj")

	out, err := execute(t, "progress", docID, "--follow=false")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: "+docID)
	assert.Contains(t, out, "Progress: 100%")
	assert.Contains(t, out, "Terminé")
}

func TestProgressCmd_FollowStopsAtTerminalStep(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	docID := ingestTenderFile(t, "follow-proj")

	out, err := execute(t, "progress", docID, "--follow")

	require.NoError(t, err)
	assert.Contains(t, out, "100%  Terminé")
}
