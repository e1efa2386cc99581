// Package file is a TOML-backed implementation of driven.ConfigStore.
// Configuration lives at ~/.qbank/config.toml.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/textnorm"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// fileConfig is the TOML document layout. The dedup numbers are
// pointers so a configured zero is distinguishable from an absent key;
// zero is a valid threshold and an invalid weight, and both must reach
// Validate instead of being silently defaulted.
type fileConfig struct {
	Archive struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
	} `toml:"archive"`

	Dedup struct {
		SimilarityThreshold *float64 `toml:"similarity_threshold"`
		QuestionWeight      *float64 `toml:"question_weight"`
		OptionsWeight       *float64 `toml:"options_weight"`
		PunctuationMode     string   `toml:"punctuation_mode"`
	} `toml:"dedup"`

	Recognition struct {
		APIKey            string `toml:"api_key"`
		Model             string `toml:"model"`
		BaseURL           string `toml:"base_url"`
		RequestsPerMinute int    `toml:"requests_per_minute"`
	} `toml:"recognition"`
}

// ConfigStore is a file-based implementation of driven.ConfigStore
// using TOML.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.qbank.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".qbank")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &ConfigStore{filePath: filepath.Join(configDir, "config.toml")}, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load reads the configuration file. A missing file yields the
// defaults. Values are not validated here; callers validate and treat
// violations as fatal.
func (s *ConfigStore) Load() (domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return domain.Config{}, fmt.Errorf("reading config: %w", err)
	}

	var doc fileConfig
	if err := toml.Unmarshal(data, &doc); err != nil {
		return domain.Config{}, fmt.Errorf("parsing config %s: %w", s.filePath, err)
	}

	if doc.Archive.Backend != "" {
		cfg.ArchiveBackend = doc.Archive.Backend
	}
	if doc.Archive.Path != "" {
		cfg.ArchivePath = doc.Archive.Path
	}
	if doc.Dedup.SimilarityThreshold != nil {
		cfg.Settings.SimilarityThreshold = *doc.Dedup.SimilarityThreshold
	}
	if doc.Dedup.QuestionWeight != nil {
		cfg.Settings.Weights.Question = *doc.Dedup.QuestionWeight
	}
	if doc.Dedup.OptionsWeight != nil {
		cfg.Settings.Weights.Options = *doc.Dedup.OptionsWeight
	}
	if doc.Dedup.PunctuationMode != "" {
		cfg.Settings.Punctuation = textnorm.Mode(doc.Dedup.PunctuationMode)
	}
	if doc.Recognition.APIKey != "" {
		cfg.Recognition.APIKey = doc.Recognition.APIKey
	}
	if doc.Recognition.Model != "" {
		cfg.Recognition.Model = doc.Recognition.Model
	}
	if doc.Recognition.BaseURL != "" {
		cfg.Recognition.BaseURL = doc.Recognition.BaseURL
	}
	if doc.Recognition.RequestsPerMinute != 0 {
		cfg.Recognition.RequestsPerMinute = doc.Recognition.RequestsPerMinute
	}

	return cfg, nil
}

// Save persists the configuration with owner-only permissions; the
// file can hold an API key.
func (s *ConfigStore) Save(cfg domain.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc fileConfig
	doc.Archive.Backend = cfg.ArchiveBackend
	doc.Archive.Path = cfg.ArchivePath
	doc.Dedup.SimilarityThreshold = &cfg.Settings.SimilarityThreshold
	doc.Dedup.QuestionWeight = &cfg.Settings.Weights.Question
	doc.Dedup.OptionsWeight = &cfg.Settings.Weights.Options
	doc.Dedup.PunctuationMode = cfg.Settings.Punctuation.String()
	doc.Recognition.APIKey = cfg.Recognition.APIKey
	doc.Recognition.Model = cfg.Recognition.Model
	doc.Recognition.BaseURL = cfg.Recognition.BaseURL
	doc.Recognition.RequestsPerMinute = cfg.Recognition.RequestsPerMinute

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
