package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
)

var dbHealthTimeout time.Duration

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Ping the database and print row counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.HealthCheck(ctx, dbHealthTimeout); err != nil {
			fmt.Printf("DB health: FAIL (%v)\n", err)
			return err
		}
		fmt.Printf("DB health: OK (%s)\n", db.Dialect())

		if err := db.Migrate(ctx); err != nil {
			return err
		}
		counts, err := repository.NewStatsRepository(db, logger).Counts(ctx, time.Time{})
		if err != nil {
			return err
		}
		fmt.Printf("order log entries: %d (%d processed, %d rejected)\n", counts.Total, counts.Processed, counts.Rejected)
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the documents, shipments and order_log tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		fmt.Println("migration complete")
		return nil
	},
}

func init() {
	dbHealthCmd.Flags().DurationVar(&dbHealthTimeout, "timeout", 3*time.Second, "ping timeout")
	dbCmd.AddCommand(dbHealthCmd, dbMigrateCmd)
}
