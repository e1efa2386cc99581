package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"qbank/internal/adapters/driving/tui"
	"qbank/internal/logger"
)

var reviewCmd = &cobra.Command{
	Use:   "review [files...]",
	Short: "Ingest with interactive arbitration",
	Long: `Runs ingestion and the arbitration panel together: candidates are
classified in the background while near-duplicate conflicts appear in
the panel, one at a time. Ingestion is never blocked by an open
conflict; the queue absorbs new ones until you decide.

Accepts the same inputs as 'qbank ingest'. Without arguments, only the
panel runs (useful with a second process writing into --watch).`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(&ingestImages, "images", false, "treat arguments as images and run text recognition")
	reviewCmd.Flags().BoolVar(&ingestPages, "pages", false, "with --images, merge the images as overlapping pages of one capture")
	reviewCmd.Flags().StringVar(&ingestWatch, "watch", "", "watch a directory for new .txt files")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if ingestor == nil || arbiter == nil {
		return errors.New("services not configured")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("review needs an interactive terminal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Producer: ingestion runs in its own goroutine while the panel
	// polls the decision queue.
	ingestDone := make(chan error, 1)
	if len(args) > 0 || ingestWatch != "" {
		src, closeSrc, err := buildSource(args)
		if err != nil {
			return err
		}
		if closeSrc != nil {
			defer closeSrc()
		}
		go func() {
			report, err := ingestor.Run(ctx, src)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("ingestion stopped: %v", err)
			}
			logger.Debug("ingestion finished: %d candidates", report.Total())
			ingestDone <- err
		}()
	} else {
		ingestDone <- nil
	}

	model := tui.NewReview(arbiter, librarian)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("arbitration panel: %w", err)
	}

	cancel()
	if err := <-ingestDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return librarian.Persist(context.Background())
}
