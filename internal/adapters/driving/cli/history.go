package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history [conversation]",
	Short: "Show the remembered turns of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var clearCmd = &cobra.Command{
	Use:   "clear [conversation]",
	Short: "Forget a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output the turns as JSON")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("conversation history not configured")
	}

	turns := historyService.History(args[0])
	if historyJSON {
		return outputJSON(cmd, turns)
	}
	outputTurns(cmd, args[0], turns)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("conversation history not configured")
	}

	n := len(historyService.History(args[0]))
	historyService.Clear(args[0])
	cmd.Printf("Cleared %d turns from conversation %s.\n", n, args[0])
	return nil
}
