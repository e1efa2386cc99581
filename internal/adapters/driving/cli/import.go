package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge another question archive",
	Long: `Merges a JSON question archive into the store. Every imported
question gets a fresh identifier and an imported provenance tag;
identifiers from the source archive are never reused.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if librarian == nil {
		return errors.New("library service not configured")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	report, err := librarian.Import(context.Background(), f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d questions as batch %s", report.Imported, report.BatchID)
	if report.Skipped > 0 {
		cmd.Printf(" (%d malformed records skipped)", report.Skipped)
	}
	cmd.Println()

	return librarian.Persist(context.Background())
}
