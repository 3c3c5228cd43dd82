package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rfpvault/internal/core/services"
	"github.com/custodia-labs/rfpvault/internal/normalisers"
	"github.com/custodia-labs/rfpvault/internal/postprocessors/chunker"
)

// testEmbedder returns a fixed-direction vector so every chunk matches.
type testEmbedder struct{}

func (testEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (testEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (testEmbedder) Dimensions() int              { return 3 }
func (testEmbedder) ModelName() string            { return "test-embed" }
func (testEmbedder) Ping(_ context.Context) error { return nil }
func (testEmbedder) Close() error                 { return nil }

// setupTestServices wires real services over in-memory adapters.
func setupTestServices() func() {
	docStore := memory.NewDocumentStore()
	blobs := memory.NewBlobStore()
	mappings := memory.NewMappingStore()
	progress := memory.NewProgressStore()

	search := services.NewSearchService(memory.NewVectorIndex(), testEmbedder{})
	anonymizer := services.NewAnonymizationService(services.NewEntityDetector(nil), mappings)
	ingestion := services.NewIngestionOrchestrator(
		docStore, blobs, normalisers.NewDefaultRegistry(), chunker.New(), progress, anonymizer, search,
	)

	SetServices(&Services{
		Ingestion:     ingestion,
		Anonymization: anonymizer,
		Search:        search,
		Document:      services.NewDocumentService(docStore, blobs, mappings, progress, search),
		Settings:      services.NewSettingsService(memory.NewConfigStore(), nil),
	})

	return func() {
		ingestion.Wait()
		SetServices(nil)
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

// executeWithInput runs the root command with stdin holding input.
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// tenderText is long enough to produce one chunk and holds one email.
const tenderText = "Le présent appel d'offres porte sur la maintenance applicative du système " +
	"de gestion des marchés publics. Le titulaire assure le support de niveau deux " +
	"et la tierce maintenance. Contact technique: jean.dupont@acme-industrie.fr pour " +
	"toute question relative au cahier des charges."

// writeTenderFile creates a text file holding tenderText.
func writeTenderFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(tenderText), 0o600))
	return path
}

// ingestTenderFile ingests one text file into project and returns its document id.
func ingestTenderFile(t *testing.T, project string) string {
	t.Helper()

	out, err := execute(t, "ingest", "-p", project, "-c", "old_rfp", writeTenderFile(t, "ao.txt"))
	require.NoError(t, err, out)

	docs, err := documentService.List(context.Background(), project)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0].ID
}
