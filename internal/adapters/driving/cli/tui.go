package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui"
)

var (
	tuiConversation string
	tuiAnswer       bool
)

// runApp starts the program; replaced in tests.
var runApp = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Ask questions in an interactive terminal interface",
	Long: `Opens a full-screen interface for asking questions about ingested
filings. Each answer shows the classified category, the confidence and the
retrieved passages, which can be browsed and expanded.

Press ctrl+a to toggle answer composition, h to show the conversation
history and n to start a new conversation.`,
	Args: cobra.NoArgs,
	RunE: runTUICmd,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiConversation, "conversation", "c", "", "conversation to continue (default: a new one)")
	tuiCmd.Flags().BoolVarP(&tuiAnswer, "answer", "a", false, "compose an answer for every question")
	rootCmd.AddCommand(tuiCmd)
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	if queryService == nil || historyService == nil {
		return errors.New("query service not configured")
	}

	app, err := tui.NewApp(&tui.Ports{
		Query:   queryService,
		History: historyService,
	}, tui.Options{
		ConversationID: tuiConversation,
		Answer:         tuiAnswer,
	})
	if err != nil {
		return fmt.Errorf("starting tui: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runApp(app); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	cmd.Printf("Conversation %s\n", app.ConversationID())
	return nil
}
