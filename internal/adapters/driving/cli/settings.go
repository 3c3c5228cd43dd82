package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change chunking, entity recognition, embedding, vector index
and progress store settings.

Settings are stored in ~/.rfpvault/config.toml under dotted keys such as
ner.provider or embedding.model.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Validate and persist one setting.

When the key is a secret (an api_key) and no value is given, the value is
read from the terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore the default of one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsReset,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported setting keys",
	RunE:  runSettingsKeys,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check settings and ping configured models",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", settings.DataDir)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Window: %d words\n", settings.Chunking.Window)
	cmd.Printf("  Overlap: %d words\n", settings.Chunking.Overlap)
	cmd.Printf("  Min words: %d\n", settings.Chunking.MinWords)
	cmd.Println()

	cmd.Println("[Entity Recognition]")
	cmd.Printf("  Provider: %s\n", settings.NER.Provider.Description())
	switch settings.NER.Provider {
	case domain.NERProviderHugot:
		cmd.Printf("  Model path: %s\n", valueOrUnset(settings.NER.ModelPath))
		cmd.Printf("  ONNX file: %s\n", settings.NER.OnnxFilename)
	case domain.NERProviderOllama:
		cmd.Printf("  Model: %s\n", settings.NER.Model)
		cmd.Printf("  Base URL: %s\n", valueOrUnset(settings.NER.BaseURL))
	}
	cmd.Printf("  Threshold: %.2f\n", settings.NER.Threshold)
	cmd.Printf("  Window: %d words (overlap %d)\n", settings.NER.WindowWords, settings.NER.OverlapWords)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", valueOrUnset(settings.Embedding.BaseURL))
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskSecret(settings.Embedding.APIKey))
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Vector Index]")
	cmd.Printf("  Backend: %s\n", settings.VectorIndex.Backend)
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant {
		cmd.Printf("  URL: %s\n", valueOrUnset(settings.VectorIndex.URL))
		if settings.VectorIndex.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskSecret(settings.VectorIndex.APIKey))
		}
	}
	cmd.Println()

	cmd.Println("[Progress]")
	cmd.Printf("  Backend: %s\n", settings.Progress.Backend)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'rfpvault settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	if !isKnownKey(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	value := settingValue(settings, key)
	if isSecretKey(key) {
		value = maskSecret(value)
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !isSecretKey(key) {
			return fmt.Errorf("a value is required for %s", key)
		}
		cmd.Printf("Enter value for %s: ", key)
		secret, err := readSecret(cmd)
		if err != nil {
			return err
		}
		if secret == "" {
			return errors.New("no value entered")
		}
		value = secret
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if isSecretKey(key) {
		shown = maskSecret(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	if err := settingsService.Reset(key); err != nil {
		return fmt.Errorf("failed to reset %s: %w", key, err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	shown := settingValue(settings, key)
	if isSecretKey(key) {
		shown = maskSecret(shown)
	}
	cmd.Printf("%s = %s (default)\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cmd.Println("Settings: OK")

	var failed bool
	cmd.Print("Entity recognition... ")
	if err := settingsService.ValidateNERConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	cmd.Print("Embedding... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	if failed {
		return errors.New("model validation failed")
	}
	return nil
}

// settingValue renders the current value of a dotted key.
func settingValue(s *domain.AppSettings, key string) string {
	switch key {
	case "data_dir":
		return s.DataDir
	case "chunking.window":
		return fmt.Sprint(s.Chunking.Window)
	case "chunking.overlap":
		return fmt.Sprint(s.Chunking.Overlap)
	case "chunking.min_words":
		return fmt.Sprint(s.Chunking.MinWords)
	case "ner.provider":
		return s.NER.Provider.String()
	case "ner.model_path":
		return s.NER.ModelPath
	case "ner.onnx_filename":
		return s.NER.OnnxFilename
	case "ner.base_url":
		return s.NER.BaseURL
	case "ner.model":
		return s.NER.Model
	case "ner.threshold":
		return fmt.Sprint(s.NER.Threshold)
	case "ner.window_words":
		return fmt.Sprint(s.NER.WindowWords)
	case "ner.overlap_words":
		return fmt.Sprint(s.NER.OverlapWords)
	case "embedding.provider":
		return s.Embedding.Provider.String()
	case "embedding.model":
		return s.Embedding.Model
	case "embedding.base_url":
		return s.Embedding.BaseURL
	case "embedding.api_key":
		return s.Embedding.APIKey
	case "embedding.document_prefix":
		return s.Embedding.DocumentPrefix
	case "embedding.query_prefix":
		return s.Embedding.QueryPrefix
	case "vector_index.backend":
		return s.VectorIndex.Backend.String()
	case "vector_index.url":
		return s.VectorIndex.URL
	case "vector_index.api_key":
		return s.VectorIndex.APIKey
	case "progress.backend":
		return s.Progress.Backend.String()
	default:
		return ""
	}
}

func isKnownKey(key string) bool {
	for _, k := range settingsService.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// readSecret reads one line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// maskSecret keeps just enough of a key to tell two keys apart.
func maskSecret(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 12:
		return "********"
	default:
		return secret[:3] + "****" + secret[len(secret)-4:]
	}
}
