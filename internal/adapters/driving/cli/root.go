// Package cli implements the qbank command line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"qbank/internal/adapters/driven/archive/jsonfile"
	"qbank/internal/adapters/driven/archive/sqlite"
	"qbank/internal/adapters/driven/config/file"
	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/core/ports/driving"
	"qbank/internal/core/services"
	"qbank/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Wired services. Tests swap these directly; normal runs wire them in
// initApp.
var (
	appConfig     domain.Config
	librarian     driving.Librarian
	ingestor      driving.Ingestor
	arbiter       driving.Arbiter
	archiveCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "qbank",
	Short: "Question bank with automatic deduplication",
	Long: `qbank collects multiple-choice questions from recognised text and
images, deduplicates them by content fingerprint and queues near-duplicates
for interactive arbitration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		if librarian != nil {
			return nil
		}
		return initApp()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.qbank)")
}

// Execute runs the CLI.
func Execute() error {
	defer func() {
		if archiveCloser != nil {
			archiveCloser.Close()
		}
	}()
	return rootCmd.Execute()
}

// initApp loads configuration, opens the archive and wires the core
// services. Configuration violations are fatal; values are never
// clamped into range.
func initApp() error {
	cfgStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	cfg, err := cfgStore.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", cfgStore.Path(), err)
	}
	appConfig = cfg

	archive, err := openArchive(cfg)
	if err != nil {
		return err
	}

	snap, err := archive.Load(context.Background())
	if err != nil {
		return err
	}

	store := services.NewStore()
	store.Restore(snap)
	logger.Debug("loaded %d questions", len(snap.Questions))

	queue := services.NewDecisionQueue()
	librarian = services.NewLibrarianService(store, archive)
	ingestor = services.NewIngestService(store, queue, cfg.Settings)
	arbiter = services.NewArbitrationService(store, queue)
	return nil
}

func openArchive(cfg domain.Config) (driven.QuestionArchive, error) {
	switch cfg.ArchiveBackend {
	case domain.ArchiveSQLite:
		a, err := sqlite.New(cfg.ArchivePath)
		if err != nil {
			return nil, err
		}
		archiveCloser = a
		return a, nil
	default:
		a, err := jsonfile.New(cfg.ArchivePath)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}
