package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"empty", "", "(not set)"},
		{"short", "abc123", "********"},
		{"twelve chars", "0123456789ab", "********"},
		{"openai style", "sk-proj-1234567890abcdefghijklmnop", "sk-****mnop"},
		{"qdrant style", "qd_9f8e7d6c5b4a3210", "qd_****3210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskSecret(tt.secret))
		})
	}
}

func TestSettingsCmd_NoServiceConfigured(t *testing.T) {
	SetServices(nil)

	for _, args := range [][]string{
		{"settings"},
		{"settings", "get", "chunking.window"},
		{"settings", "set", "chunking.window", "200"},
		{"settings", "keys"},
		{"settings", "validate"},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "settings service not configured")
	}
}

func TestSettingsCmd_SetThenGet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "set", "chunking.window", "180")
	require.NoError(t, err, out)
	assert.Contains(t, out, "chunking.window = 180")

	out, err = execute(t, "settings", "get", "chunking.window")
	require.NoError(t, err)
	assert.Equal(t, "180\n", out)
}

func TestSettingsCmd_Reset(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "settings", "set", "chunking.window", "180")
	require.NoError(t, err)

	out, err := execute(t, "settings", "reset", "chunking.window")
	require.NoError(t, err, out)
	assert.Contains(t, out, "chunking.window = 350 (default)")

	_, err = execute(t, "settings", "reset", "chunking.nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsCmd_Set_Rejects(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown key", []string{"settings", "set", "ner.colour", "blue"}, "unknown setting"},
		{"not a number", []string{"settings", "set", "chunking.overlap", "lots"}, "non-negative integer"},
		{"plain key needs a value", []string{"settings", "set", "embedding.model"}, "a value is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettingsCmd_SecretFromStdin(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	const key = "sk-test-0123456789abcdef"
	out, err := executeWithInput(t, key+"\n", "settings", "set", "embedding.api_key")
	require.NoError(t, err, out)
	assert.Contains(t, out, "embedding.api_key = sk-****cdef")
	assert.NotContains(t, out, key)

	out, err = execute(t, "settings", "get", "embedding.api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-****cdef\n", out)

	_, err = executeWithInput(t, "\n", "settings", "set", "vector_index.api_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value entered")
}

func TestSettingsCmd_Get_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "settings", "get", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown setting "nope"`)
}

func TestSettingsCmd_Keys(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "keys")

	require.NoError(t, err)
	for _, k := range []string{"chunking.window", "ner.provider", "embedding.api_key", "vector_index.backend", "progress.backend"} {
		assert.Contains(t, out, k+"\n")
	}
}

func TestSettingsCmd_Show(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	for _, section := range []string{"[Storage]", "[Chunking]", "[Entity Recognition]", "[Embedding]", "[Vector Index]", "[Progress]"} {
		assert.Contains(t, out, section)
	}
}
