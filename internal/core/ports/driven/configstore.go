package driven

import "qbank/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and defaulting;
// validation is the caller's responsibility.
type ConfigStore interface {
	// Load reads the configuration. A missing file yields the defaults,
	// not an error.
	Load() (domain.Config, error)

	// Save persists the configuration.
	Save(cfg domain.Config) error

	// Path returns the configuration file path.
	Path() string
}
