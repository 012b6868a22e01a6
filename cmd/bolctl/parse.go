package main

import (
	"encoding/json"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/bol"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/pipeline"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/textsource"
)

var parseWorkers int

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Print the extracted record for one or more documents",
	Long: `Extract text from each file and print the parsed record as JSON.
Nothing is written to the database.

Examples:
  bolctl parse load.pdf
  bolctl parse attachments/*.pdf --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		parser, err := newParser(cfg.Parser, logger)
		if err != nil {
			return err
		}
		text := textsource.NewExtractor(textsource.Config{Pdftotext: cfg.TextSource.PDFToText, Timeout: cfg.TextSource.Timeout}, logger)

		texts := make([]string, len(args))
		for i, path := range args {
			res, err := text.Extract(ctx, path)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				logger.Warn("text extraction warning", "path", path, "warning", w)
			}
			texts[i] = res.Text
		}

		records, err := pipeline.ParseAll(ctx, parser, texts, parseWorkers)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(records) == 1 {
			return enc.Encode(records[0])
		}
		type fileRecord struct {
			File   string     `json:"file"`
			Record bol.Record `json:"record"`
		}
		out := make([]fileRecord, len(records))
		for i, rec := range records {
			out[i] = fileRecord{File: args[i], Record: rec}
		}
		return enc.Encode(out)
	},
}

func init() {
	parseCmd.Flags().IntVar(&parseWorkers, "workers", runtime.NumCPU(), "parallel parse workers")
}
