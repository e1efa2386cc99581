package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer [id] [labels]",
	Short: "Set the correct answer for a question",
	Long: `Records the correct answer label(s) for a stored question, e.g.
'qbank answer 12 A' or 'qbank answer 12 AC' for multi-answer questions.
The answer and the note are the only fields that can change after a
question is stored.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnswer,
}

var noteCmd = &cobra.Command{
	Use:   "note [id] [text...]",
	Short: "Attach a note to a question",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNote,
}

func init() {
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(noteCmd)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	if librarian == nil {
		return errors.New("library service not configured")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := librarian.SetAnswer(context.Background(), id, args[1]); err != nil {
		return fmt.Errorf("set answer: %w", err)
	}

	cmd.Printf("Question %d answered.\n", id)
	return librarian.Persist(context.Background())
}

func runNote(cmd *cobra.Command, args []string) error {
	if librarian == nil {
		return errors.New("library service not configured")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := librarian.SetNote(context.Background(), id, strings.Join(args[1:], " ")); err != nil {
		return fmt.Errorf("set note: %w", err)
	}

	cmd.Printf("Question %d annotated.\n", id)
	return librarian.Persist(context.Background())
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid question id %q", arg)
	}
	return id, nil
}
