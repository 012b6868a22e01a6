package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

var (
	batchExport     string
	batchSkipHidden bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Ingest and process every document in a directory",
	Long: `Register each supported file under <dir>, process the new ones and
print a summary. Files seen before (same content) are skipped.

Examples:
  bolctl batch attachments
  bolctl batch attachments --export shipments.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		results, stats, err := a.ingestor.IngestDirectory(ctx, args[0], batchSkipHidden)
		if err != nil {
			return err
		}

		var processed, rejected, failures int
		for _, r := range results {
			if r.Err != "" || r.Deduplicated {
				continue
			}
			out, err := a.processor.ProcessDocument(ctx, r.DocumentID)
			if err != nil {
				logger.Error("failed to process document", "path", r.SourcePath, "error", err)
				failures++
				continue
			}
			switch out.Status {
			case constants.LogStatusProcessed:
				processed++
			case constants.LogStatusRejected:
				rejected++
			}
		}

		if batchExport != "" {
			b, err := a.exports.ShipmentsXLSX(ctx, defaultExportRows)
			if err != nil {
				return err
			}
			if err := os.WriteFile(batchExport, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", batchExport, err)
			}
		}

		logger.Info("batch processing complete",
			"matched", stats.Matched, "deduplicated", stats.Deduplicated,
			"processed", processed, "rejected", rejected, "failures", failures)

		fmt.Printf("Batch processing complete!\n")
		fmt.Printf("- Files matched: %d\n", stats.Matched)
		fmt.Printf("- Already seen: %d\n", stats.Deduplicated)
		fmt.Printf("- Processed: %d\n", processed)
		fmt.Printf("- Rejected: %d\n", rejected)
		fmt.Printf("- Failures: %d\n", failures+int(stats.Failed))
		if batchExport != "" {
			fmt.Printf("- Output: %s\n", batchExport)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchExport, "export", "", "write shipments and the processing log to this XLSX file")
	batchCmd.Flags().BoolVar(&batchSkipHidden, "skip-hidden", true, "skip hidden files and directories")
}
