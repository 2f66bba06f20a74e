package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/filings-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// watchExtensions are the file types picked up by --watch.
var watchExtensions = []string{".txt", ".text", ".md", ".markdown", ".htm", ".html", ".xhtml", ".docx"}

var (
	ingestCompany   string
	ingestForm      string
	ingestPeriod    string
	ingestAccession string
	ingestWatch     string
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Segment filings and add them to the index",
	Long: `Reads each file, strips HTML and page furniture, splits it into
sections and chunks, and upserts the chunks into the index.

Identity comes from the flags, or from file names of the form
COMPANY_FORM_PERIOD[_ACCESSION].ext, e.g. AAPL_10-K_FY2023.htm.
Re-ingesting the same filing replaces its chunks.

With --watch DIR, every supported file already in DIR is ingested and
then files written into DIR are ingested as they appear.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCompany, "company", "", "issuer identifier, e.g. AAPL")
	ingestCmd.Flags().StringVar(&ingestForm, "form", "", "filing type, e.g. 10-K")
	ingestCmd.Flags().StringVar(&ingestPeriod, "period", "", "fiscal period, e.g. FY2023 or 2023-Q2")
	ingestCmd.Flags().StringVar(&ingestAccession, "accession", "", "accession number used as the source identity")
	ingestCmd.Flags().StringVarP(&ingestWatch, "watch", "w", "", "ingest a directory and keep watching it")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output reports as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestWatch == "" && len(args) == 0 {
		return errors.New("requires at least one file or --watch")
	}

	filing := domain.Filing{
		Company:      strings.ToUpper(ingestCompany),
		FilingType:   strings.ToUpper(ingestForm),
		FiscalPeriod: ingestPeriod,
		SourceID:     ingestAccession,
	}

	var failed int
	for _, path := range args {
		if !ingestOne(cmd, path, filing) {
			failed++
		}
	}

	if ingestWatch != "" {
		// Identity flags name one filing; watched files are named by file name.
		if err := watchDir(cmd, ingestWatch); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(args))
	}
	return nil
}

// ingestOne ingests path and prints its report. It reports success.
func ingestOne(cmd *cobra.Command, path string, filing domain.Filing) bool {
	report, err := ingestService.IngestFile(cmd.Context(), path, filing)
	if ingestJSON {
		out := struct {
			Path   string              `json:"path"`
			Report domain.IngestReport `json:"report"`
			Error  string              `json:"error,omitempty"`
		}{Path: path, Report: report}
		if err != nil {
			out.Error = err.Error()
		}
		_ = outputJSON(cmd, out)
		return err == nil
	}

	if err != nil && report.Upserted == 0 {
		cmd.PrintErrf("Failed %s: %v\n", path, err)
		return false
	}
	cmd.Printf("Ingested %s as %s: %d chunks, %d upserted", path, report.FilingKey, report.Chunks, report.Upserted)
	if report.Failed > 0 {
		cmd.Printf(", %d failed", report.Failed)
	}
	cmd.Println()
	if err != nil {
		cmd.PrintErrf("  %v\n", err)
		return false
	}
	return true
}

func watchDir(cmd *cobra.Command, dir string) error {
	w := filesystem.New(dir, watchExtensions)
	defer w.Close()

	existing, err := w.Existing()
	if err != nil {
		return err
	}
	for _, path := range existing {
		ingestOne(cmd, path, domain.Filing{})
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for filings (Ctrl-C to stop)\n", dir)

	for change := range changes {
		ingestOne(cmd, change.Path, domain.Filing{})
	}
	return nil
}
