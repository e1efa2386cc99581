package domain

import "fmt"

// Archive backends.
const (
	ArchiveJSON   = "json"
	ArchiveSQLite = "sqlite"
)

// RecognitionConfig configures the vision recognition client.
type RecognitionConfig struct {
	// APIKey authenticates against the recognition API. Empty disables
	// image ingestion.
	APIKey string

	// Model is the vision model identifier.
	Model string

	// BaseURL overrides the API endpoint. Empty uses the default.
	BaseURL string

	// RequestsPerMinute throttles recognition calls. Zero means
	// unlimited.
	RequestsPerMinute int
}

// Config is the full application configuration.
type Config struct {
	// ArchiveBackend selects the persistence backend, json or sqlite.
	ArchiveBackend string

	// ArchivePath is the archive file location. Empty uses the default
	// under the application home directory.
	ArchivePath string

	// Settings are the dedup engine parameters.
	Settings Settings

	// Recognition configures the vision client.
	Recognition RecognitionConfig
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		ArchiveBackend: ArchiveJSON,
		Settings:       DefaultSettings(),
		Recognition: RecognitionConfig{
			Model:             "openai/gpt-4o-mini",
			RequestsPerMinute: 20,
		},
	}
}

// Validate checks the configuration. Invalid configuration is fatal at
// startup.
func (c Config) Validate() error {
	if c.ArchiveBackend != ArchiveJSON && c.ArchiveBackend != ArchiveSQLite {
		return fmt.Errorf("%w: unknown archive backend %q", ErrInvalidConfig, c.ArchiveBackend)
	}
	if c.Recognition.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: negative recognition rate limit", ErrInvalidConfig)
	}
	return c.Settings.Validate()
}
