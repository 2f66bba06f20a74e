package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	askConversation string
	askAnswer       bool
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about ingested filings",
	Long: `Classifies the question, retrieves evidence with the plan of its
category and records the turn in the conversation.

Pass --conversation to continue an earlier conversation so that follow-up
questions are classified with its history. Pass --answer to compose a
written answer from the evidence (requires a completion provider).`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "conversation to continue (default: a new one)")
	askCmd.Flags().BoolVarP(&askAnswer, "answer", "a", false, "compose an answer from the evidence")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	id := askConversation
	if id == "" {
		id = uuid.NewString()
	}

	ask := queryService.Ask
	if askAnswer {
		ask = queryService.Answer
	}
	result, err := ask(cmd.Context(), id, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, result)
	}
	outputResult(cmd, result)
	return nil
}
