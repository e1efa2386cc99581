package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored questions",
	Long:  `Searches question text and option values for a keyword.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if librarian == nil {
		return errors.New("library service not configured")
	}

	results, err := librarian.Search(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No matches.")
		return nil
	}

	for _, q := range results {
		printQuestion(cmd, q)
	}
	cmd.Printf("%d match(es)\n", len(results))
	return nil
}
