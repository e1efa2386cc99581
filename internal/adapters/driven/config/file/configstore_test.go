package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qbank/internal/core/domain"
	"qbank/internal/similarity"
	"qbank/internal/textnorm"
)

func TestConfigStore_LoadMissingFileGivesDefaults(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestConfigStore_SaveLoadRoundTrip(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg := domain.Config{
		ArchiveBackend: domain.ArchiveSQLite,
		ArchivePath:    "/tmp/custom.db",
		Settings: domain.Settings{
			SimilarityThreshold: 0.75,
			Weights:             similarity.Weights{Question: 0.7, Options: 0.3},
			Punctuation:         textnorm.ModeToNarrow,
		},
		Recognition: domain.RecognitionConfig{
			APIKey:            "sk-test",
			Model:             "openai/gpt-4o",
			RequestsPerMinute: 5,
		},
	}

	require.NoError(t, s.Save(cfg))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.ArchiveBackend, got.ArchiveBackend)
	assert.Equal(t, cfg.ArchivePath, got.ArchivePath)
	assert.Equal(t, cfg.Settings, got.Settings)
	assert.Equal(t, cfg.Recognition.APIKey, got.Recognition.APIKey)
	assert.Equal(t, cfg.Recognition.Model, got.Recognition.Model)
	assert.Equal(t, 5, got.Recognition.RequestsPerMinute)
}

func TestConfigStore_SaveRestrictsPermissions(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(domain.DefaultConfig()))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	payload := "[dedup]\nsimilarity_threshold = 0.9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(payload), 0600))

	got, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Settings.SimilarityThreshold)
	assert.Equal(t, domain.DefaultConfig().Settings.Weights, got.Settings.Weights)
	assert.Equal(t, domain.DefaultConfig().Recognition.Model, got.Recognition.Model)
}

func TestConfigStore_ZeroThresholdIsHonoured(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	payload := "[dedup]\nsimilarity_threshold = 0.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(payload), 0600))

	got, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Settings.SimilarityThreshold)
	assert.NoError(t, got.Validate())
}

func TestConfigStore_ZeroWeightsSurfaceAtValidate(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	payload := "[dedup]\nquestion_weight = 0.0\noptions_weight = 0.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(payload), 0600))

	got, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Settings.Weights.Sum())
	assert.ErrorIs(t, got.Validate(), domain.ErrInvalidConfig)
}

func TestConfigStore_SingleWeightOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	payload := "[dedup]\nquestion_weight = 1.0\noptions_weight = 0.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(payload), 0600))

	got, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, similarity.Weights{Question: 1.0, Options: 0.0}, got.Settings.Weights)
	assert.NoError(t, got.Validate())
}

func TestConfigStore_RejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("= broken"), 0600))

	_, err = s.Load()

	assert.Error(t, err)
}

func TestConfigStore_InvalidModeSurfacesAtValidate(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	payload := "[dedup]\npunctuation_mode = \"fullwidth\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(payload), 0600))

	cfg, err := s.Load()
	require.NoError(t, err)

	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig)
}
