package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	classifyConversation string
	classifyJSON         bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [question]",
	Short: "Classify a question without retrieving evidence",
	Long: `Labels the question as DIRECT_LOOKUP, CROSS_ENTITY_COMPARISON,
TEMPORAL_TREND or CONVERSATIONAL. Nothing is recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyConversation, "conversation", "c", "", "conversation whose history informs the label")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output the classification as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if classifierService == nil {
		return errors.New("classifier service not configured")
	}

	summary := ""
	if classifyConversation != "" && historyService != nil {
		summary = historyService.Summary(classifyConversation)
	}
	c := classifierService.Classify(cmd.Context(), args[0], summary)

	if classifyJSON {
		return outputJSON(cmd, c)
	}
	outputClassification(cmd, c)
	return nil
}
