package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/report"
)

var (
	reportDaily bool
	reportDays  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the processing dashboard or today's summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if reportDaily {
			d, err := a.reports.Daily(ctx)
			if err != nil {
				return err
			}
			return d.Render(os.Stdout)
		}
		d, err := a.reports.Dashboard(ctx, reportDays)
		if err != nil {
			return err
		}
		return d.Render(os.Stdout)
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportDaily, "daily", false, "print today's summary instead of the dashboard")
	reportCmd.Flags().IntVar(&reportDays, "days", report.DefaultWindowDays, "dashboard window in days")
}
