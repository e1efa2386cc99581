package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qbank/internal/core/ports/driving"
)

var (
	exportNoAnswers bool
	exportNoNotes   bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export questions as numbered text",
	Long: `Writes the live questions in numbered text form:

  1.(A)question text
  A.option B.option C.option D.option
  Note: annotation

Writes to stdout when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportNoAnswers, "no-answers", false, "omit correct answers")
	exportCmd.Flags().BoolVar(&exportNoNotes, "no-notes", false, "omit notes")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if librarian == nil {
		return errors.New("library service not configured")
	}

	opts := driving.ExportOptions{
		IncludeAnswers: !exportNoAnswers,
		IncludeNotes:   !exportNoNotes,
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		defer f.Close()
		out = f
	}

	n, err := librarian.Export(context.Background(), out, opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if len(args) == 1 {
		cmd.Printf("Exported %d questions to %s\n", n, args[0])
	}
	return nil
}
