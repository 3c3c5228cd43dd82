package driving

import "github.com/custodia-labs/rfpvault/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Set validates and persists a single setting by dotted key.
	Set(key, value string) error

	// Reset removes a stored setting so its default applies again.
	Reset(key string) error

	// Keys returns every supported setting key.
	Keys() []string

	// Validate checks that current settings are coherent.
	Validate() error

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateNERConfig validates the current entity recognition configuration.
	ValidateNERConfig() error
}
