// Package cli provides the cobra command tree of rfpvault.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

// version is overridden at build time via SetVersion.
var version = "dev"

var (
	verbose bool
	dataDir string
)

// Services bundles the driving ports used by commands.
type Services struct {
	Ingestion     driving.IngestionService
	Anonymization driving.AnonymizationService
	Search        driving.SearchService
	Document      driving.DocumentService
	Settings      driving.SettingsService
}

// Options carries global flag values to the Bootstrapper.
type Options struct {
	DataDir string
	Verbose bool
}

// Bootstrapper builds services once flags are parsed. The returned cleanup
// runs after the command completes.
type Bootstrapper func(opts Options) (*Services, func(), error)

var (
	ingestionService     driving.IngestionService
	anonymizationService driving.AnonymizationService
	searchService        driving.SearchService
	documentService      driving.DocumentService
	settingsService      driving.SettingsService

	bootstrap Bootstrapper
	cleanup   func()
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "rfpvault",
	Short: "Anonymized document vault for tender responses",
	Long: `rfpvault ingests calls for tenders and past responses, replaces sensitive
values (companies, people, contacts, project codes) with stable placeholders,
and indexes the anonymized text for semantic search.

Documents are grouped by project. Placeholders are scoped to a project and
can be restored in generated text with the deanonymize command.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.rfpvault)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Close releases resources acquired by the bootstrapper. It is safe to
// call more than once.
func Close() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// SetBootstrapper registers the function that builds services.
func SetBootstrapper(b Bootstrapper) {
	bootstrap = b
}

// SetServices installs the driving ports used by commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestionService = s.Ingestion
	anonymizationService = s.Anonymization
	searchService = s.Search
	documentService = s.Document
	settingsService = s.Settings
}

func servicesConfigured() bool {
	return ingestionService != nil || anonymizationService != nil || searchService != nil ||
		documentService != nil || settingsService != nil
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil || servicesConfigured() {
		return nil
	}

	services, done, err := bootstrap(Options{DataDir: dataDir, Verbose: verbose})
	if err != nil {
		return err
	}
	if services == nil {
		return errors.New("bootstrap returned no services")
	}
	SetServices(services)
	cleanup = done
	return nil
}
