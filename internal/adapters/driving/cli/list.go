package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested filings",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output the catalog as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	records, err := ingestService.Filings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list filings: %w", err)
	}

	if listJSON {
		return outputJSON(cmd, records)
	}
	if len(records) == 0 {
		cmd.Println("No filings ingested.")
		return nil
	}

	cmd.Printf("Filings (%d):\n\n", len(records))
	for _, r := range records {
		cmd.Printf("  %-8s %-6s %-10s %5d chunks", r.Company, r.FilingType, r.FiscalPeriod, r.Chunks)
		if r.Failed > 0 {
			cmd.Printf(" (%d failed)", r.Failed)
		}
		cmd.Printf("  %s\n", r.IngestedAt.Local().Format("2006-01-02 15:04"))
		if r.SourceID != "" {
			cmd.Printf("      Source: %s\n", r.SourceID)
		}
	}
	return nil
}
