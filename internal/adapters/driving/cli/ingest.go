package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"qbank/internal/adapters/driven/candidates"
	"qbank/internal/adapters/driven/recognition/openrouter"
	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/core/ports/driving"
)

var (
	ingestImages bool
	ingestPages  bool
	ingestWatch  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest questions from text files or images",
	Long: `Extracts questions from recognised-text files (or images, with
--images) and classifies each against the stored questions. Exact
duplicates are dropped, near-duplicates are queued for 'qbank review'.

With --watch, ingests .txt files as they appear in a directory until
interrupted.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestImages, "images", false, "treat arguments as images and run text recognition")
	ingestCmd.Flags().BoolVar(&ingestPages, "pages", false, "with --images, merge the images as overlapping pages of one capture")
	ingestCmd.Flags().StringVar(&ingestWatch, "watch", "", "watch a directory for new .txt files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingestion service not configured")
	}
	if ingestWatch == "" && len(args) == 0 {
		return errors.New("nothing to ingest: pass files or --watch")
	}

	src, closeSrc, err := buildSource(args)
	if err != nil {
		return err
	}
	if closeSrc != nil {
		defer closeSrc()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := ingestor.Run(ctx, src)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printReport(cmd, report)
	return librarian.Persist(context.Background())
}

func buildSource(args []string) (driven.CandidateSource, func() error, error) {
	if ingestWatch != "" {
		src, err := candidates.NewWatch(ingestWatch)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}

	if !ingestImages {
		return candidates.NewTextFiles(args), nil, nil
	}

	rec, err := openrouter.New(openrouter.Config{
		APIKey:            appConfig.Recognition.APIKey,
		BaseURL:           appConfig.Recognition.BaseURL,
		Model:             appConfig.Recognition.Model,
		RequestsPerMinute: appConfig.Recognition.RequestsPerMinute,
	})
	if errors.Is(err, domain.ErrRecognitionUnavailable) {
		return nil, nil, fmt.Errorf("set recognition.api_key in the config to ingest images: %w", err)
	}
	if err != nil {
		return nil, nil, err
	}

	if ingestPages {
		return candidates.NewImagePages(rec, args), nil, nil
	}
	return candidates.NewImages(rec, args), nil, nil
}

func printReport(cmd *cobra.Command, r driving.IngestReport) {
	cmd.Printf("Processed %d candidates: %d new, %d duplicates, %d similar, %d invalid\n",
		r.Total(), r.New, r.Duplicates, r.Similar, r.Invalid)
	if r.Similar > 0 {
		cmd.Println("Similar candidates need arbitration; rerun through 'qbank review' to resolve them.")
	}
}
