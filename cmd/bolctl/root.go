package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
)

var (
	cfgFile   string
	plainLogs bool
	verbose   bool

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bolctl",
	Short: "Bill of lading field extraction and order logging",
	Long: `bolctl turns bill of lading documents (PDF or text) into shipment records.

It extracts text, pulls out the fifteen shipment fields, stores processed
shipments, logs every attempt and reports rejected documents.

Configuration is read from --config, ./bol.yaml or ~/.bol/bol.yaml, and
BOL_* environment variables (for example BOL_DATABASE_DSN).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		logger = newLogger(plainLogs || cfg.Server.PlainLogs, verbose)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./bol.yaml or ~/.bol/bol.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&plainLogs, "plain-logs", false, "log as text instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(parseCmd, batchCmd, serveCmd, reportCmd, exportCmd, configCmd, dbCmd)
}

// Logs go to stderr so command output on stdout stays clean.
func newLogger(plain, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if plain {
		// message and attributes only
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		}
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
