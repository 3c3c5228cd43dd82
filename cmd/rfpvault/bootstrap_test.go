package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/cli"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
	"github.com/custodia-labs/rfpvault/internal/core/services"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv(envDataDir, "/srv/rfpvault")
	t.Setenv(envOpenAIKey, "sk-env")
	t.Setenv(envQdrantKey, "qd-env")
	t.Setenv(envOllamaHost, "http://gpu:11434")

	t.Run("fills unset values", func(t *testing.T) {
		s := domain.DefaultAppSettings()
		applyEnv(&s)

		assert.Equal(t, "/srv/rfpvault", s.DataDir)
		assert.Equal(t, "sk-env", s.Embedding.APIKey)
		assert.Equal(t, "qd-env", s.VectorIndex.APIKey)
		assert.Equal(t, "http://gpu:11434", s.Embedding.BaseURL)
		assert.Equal(t, "http://gpu:11434", s.NER.BaseURL)
	})

	t.Run("stored keys win", func(t *testing.T) {
		s := domain.DefaultAppSettings()
		s.Embedding.APIKey = "sk-stored"
		s.Embedding.BaseURL = "http://local:11434"
		applyEnv(&s)

		assert.Equal(t, "sk-stored", s.Embedding.APIKey)
		assert.Equal(t, "http://local:11434", s.Embedding.BaseURL)
	})
}

func TestResolveDataDir(t *testing.T) {
	s := domain.DefaultAppSettings()
	assert.Equal(t, "/cfg", resolveDataDir("", &s, "/cfg"))

	s.DataDir = "/data"
	assert.Equal(t, "/data", resolveDataDir("", &s, "/cfg"))
	assert.Equal(t, "/flag", resolveDataDir("/flag", &s, "/cfg"))
}

func TestClosers_RunInReverse(t *testing.T) {
	var order []int
	var c closers
	c.add(func() { order = append(order, 1) })
	c.add(func() { order = append(order, 2) })
	c.run()

	assert.Equal(t, []int{2, 1}, order)
}

// offlineConfig stores settings that need no model server.
func offlineConfig(t *testing.T, dir string, extra map[string]string) {
	t.Helper()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	settings := services.NewSettingsService(store, nil)
	require.NoError(t, settings.Set("embedding.provider", "openai"))
	for k, v := range extra {
		require.NoError(t, settings.Set(k, v))
	}
}

func TestBootstrap_WiresServices(t *testing.T) {
	t.Setenv(envDataDir, "")
	t.Setenv(envOpenAIKey, "")
	dir := t.TempDir()
	offlineConfig(t, dir, nil)

	svc, cleanup, err := bootstrap(cli.Options{DataDir: dir})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer cleanup()

	require.NotNil(t, svc.Ingestion)
	require.NotNil(t, svc.Anonymization)
	require.NotNil(t, svc.Search)
	require.NotNil(t, svc.Document)
	require.NotNil(t, svc.Settings)
	assert.FileExists(t, filepath.Join(dir, sqlite.DatabaseFile))

	ctx := context.Background()
	out, err := svc.Anonymization.AnonymizeText(ctx, "p1", "mail: a@b.fr")
	require.NoError(t, err)
	assert.Equal(t, "mail: [EMAIL_1]", out)

	doc, err := svc.Ingestion.Upload(ctx, driving.UploadRequest{
		ProjectID: "p1",
		Category:  domain.CategoryNewRFP,
		Filename:  "cctp.txt",
		Content:   []byte("cahier des clauses techniques"),
	})
	require.NoError(t, err)
	_, err = os.Stat(doc.FilePath)
	assert.NoError(t, err)
}

func TestBootstrap_AlternativeBackends(t *testing.T) {
	t.Setenv(envDataDir, "")
	t.Setenv(envOpenAIKey, "")
	dir := t.TempDir()
	offlineConfig(t, dir, map[string]string{
		"progress.backend":     "bolt",
		"vector_index.backend": "memory",
	})

	svc, cleanup, err := bootstrap(cli.Options{DataDir: dir})
	require.NoError(t, err)
	defer cleanup()

	results, err := svc.Search.Search(context.Background(), "p1", "maintenance", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
