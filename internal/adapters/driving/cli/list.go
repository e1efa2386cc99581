package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"qbank/internal/core/domain"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored questions",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum number of questions to show (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if librarian == nil {
		return errors.New("library service not configured")
	}

	questions, err := librarian.List(context.Background())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	if len(questions) == 0 {
		cmd.Println("No questions stored.")
		return nil
	}

	if listLimit > 0 && len(questions) > listLimit {
		questions = questions[:listLimit]
	}
	for _, q := range questions {
		printQuestion(cmd, q)
	}
	return nil
}

func printQuestion(cmd *cobra.Command, q domain.Question) {
	header := fmt.Sprintf("#%d", q.ID)
	if q.Answer != "" {
		header += fmt.Sprintf(" (%s)", q.Answer)
	}
	if q.Imported {
		header += " [imported]"
	}
	cmd.Printf("%s %s\n", header, q.Text)

	parts := make([]string, 0, len(q.Options))
	for _, label := range q.OptionLabels() {
		parts = append(parts, fmt.Sprintf("%s. %s", label, q.Options[label]))
	}
	cmd.Printf("    %s\n", strings.Join(parts, "  "))
	if q.Note != "" {
		cmd.Printf("    Note: %s\n", q.Note)
	}
}
