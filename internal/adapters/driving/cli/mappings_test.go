package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingsCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range mappingsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"disable", "enable"}, names)
}

func TestMappingsCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "mappings", "-p", "none", "-o", "table")

	require.NoError(t, err)
	assert.Contains(t, out, "No mappings for project none.")
}

func TestMappingsCmd_ListsByType(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "anonymize", "-p", "map-proj", "a@b.fr puis 06 11 22 33 44")
	require.NoError(t, err)

	out, err := execute(t, "mappings", "-p", "map-proj", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "[email]")
	assert.Contains(t, out, "[EMAIL_1]")
	assert.Contains(t, out, "a@b.fr")
	assert.Contains(t, out, "[phone]")
	assert.Contains(t, out, "Total: 2 mappings")

	out, err = execute(t, "mappings", "-p", "map-proj", "-o", "json")
	require.NoError(t, err)

	var view mappingReportView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "map-proj", view.ProjectID)
	assert.Equal(t, 2, view.Total)
	require.Len(t, view.ByType["email"], 1)
	assert.True(t, view.ByType["email"][0].Active)
}

func TestMappingsCmd_DisableStopsReplacement(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "anonymize", "-p", "dis-proj", "a@b.fr")
	require.NoError(t, err)

	out, err := execute(t, "mappings", "disable", "-p", "dis-proj", "a@b.fr")
	require.NoError(t, err)
	assert.Contains(t, out, `Mapping for "a@b.fr" disabled.`)

	out, err = execute(t, "anonymize", "-p", "dis-proj", "écrire à a@b.fr")
	require.NoError(t, err)
	assert.Equal(t, "écrire à a@b.fr", strings.TrimSpace(out))

	out, err = execute(t, "mappings", "-p", "dis-proj", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "(disabled)")

	_, err = execute(t, "mappings", "enable", "-p", "dis-proj", "a@b.fr")
	require.NoError(t, err)

	out, err = execute(t, "anonymize", "-p", "dis-proj", "a@b.fr")
	require.NoError(t, err)
	assert.Equal(t, "[EMAIL_1]", strings.TrimSpace(out))
}
