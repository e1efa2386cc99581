package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if librarian == nil {
		return errors.New("library service not configured")
	}

	stats, err := librarian.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Printf("Questions:   %d live, %d superseded (%d total)\n", stats.Live, stats.Superseded, stats.Total)
	cmd.Printf("Imported:    %d\n", stats.Imported)
	cmd.Printf("Unanswered:  %d\n", stats.Unanswered)
	cmd.Printf("Next ID:     %d\n", stats.NextID)
	if len(stats.Sources) > 0 {
		cmd.Printf("Sources:     %s\n", strings.Join(stats.Sources, ", "))
	}
	return nil
}
