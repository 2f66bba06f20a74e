package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

var (
	retrieveCategory string
	retrieveJSON     bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [question]",
	Short: "Retrieve evidence with the plan of a category",
	Long: `Runs retrieval for the question with the plan of the given category,
skipping classification. Useful to inspect fan-out and scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVar(&retrieveCategory, "category", string(domain.CategoryDirectLookup), "question category whose plan is used")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output the evidence as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	category, ok := domain.ParseQueryCategory(retrieveCategory)
	if !ok {
		return fmt.Errorf("unknown category %q: %w", retrieveCategory, domain.ErrInvalidInput)
	}
	plan := retrievalService.Plan(category)
	ev := retrievalService.Retrieve(cmd.Context(), args[0], plan)

	if retrieveJSON {
		return outputJSON(cmd, struct {
			Plan     domain.RetrievalPlan `json:"plan"`
			Evidence domain.EvidenceSet   `json:"evidence"`
		}{plan, ev})
	}
	cmd.Printf("Plan: %s, top_k %d, max %d, entity fan-out %t, temporal fan-out %t\n",
		plan.Category, plan.TopK, plan.MaxResults, plan.EntityFanOut, plan.TemporalFanOut)
	outputEvidence(cmd, ev)
	return nil
}
