package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "client-tasks.com/client-tasks/internal/configs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the clients and tasks tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if err := config.Migrate(db); err != nil {
			return err
		}

		log.Info("schema migrated", zap.String("driver", cfg.DatabaseDriver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
