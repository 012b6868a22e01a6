package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// defaultExportRows caps each sheet of an export.
const defaultExportRows = 1000

var exportLimit int

var exportCmd = &cobra.Command{
	Use:   "export [out.xlsx]",
	Short: "Write shipments and the processing log to an XLSX workbook",
	Long: `Write the newest shipments and processing log entries to a workbook.
The path defaults to export.xlsx_path from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cfg.Export.XLSXPath
		if len(args) == 1 {
			out = args[0]
		}
		if out == "" {
			return fmt.Errorf("no output path: pass one or set export.xlsx_path")
		}

		ctx := cmd.Context()
		a, err := openApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.exports.ShipmentsXLSX(ctx, exportLimit)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("Exported to %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportLimit, "limit", defaultExportRows, "maximum rows per sheet")
}
