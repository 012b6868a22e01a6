package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/schedule"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and report template placeholders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var problems []string

		rep := common.CheckPlaceholders(cfg)
		for _, w := range rep.Warnings {
			fmt.Printf("warning: %s\n", w.Error())
		}
		for _, e := range rep.Errors {
			problems = append(problems, e.Error())
		}
		if err := cfg.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
		specs := []struct{ key, spec string }{
			{"schedule.inbox_sweep", cfg.Schedule.InboxSweep},
			{"schedule.daily_report", cfg.Schedule.DailyReport},
		}
		for _, s := range specs {
			if err := schedule.Validate(s.spec); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", s.key, err))
			}
		}

		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Printf("error: %s\n", p)
			}
			return errors.New("configuration check failed")
		}
		fmt.Println("configuration OK")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd)
}
