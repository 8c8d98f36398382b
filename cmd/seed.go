package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "client-tasks.com/client-tasks/internal/configs"
	repository "client-tasks.com/client-tasks/internal/repositories"
)

var seedNames []string

var seedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Create clients (the API itself never creates them)",
	Example: "  tasks-api seed --name Acme --name Globex",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(seedNames) == 0 {
			return errors.New("at least one --name is required")
		}

		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if err := config.Migrate(db); err != nil {
			return err
		}

		clients := repository.NewClientRepository(db)
		for _, name := range seedNames {
			name = strings.TrimSpace(name)
			if name == "" {
				return errors.New("client name must not be empty")
			}

			client, err := clients.Create(cmd.Context(), name)
			if err != nil {
				return err
			}
			log.Info("client created", zap.String("id", client.ID), zap.String("name", client.Name))
		}

		return nil
	},
}

func init() {
	seedCmd.Flags().StringArrayVar(&seedNames, "name", nil, "client name (repeatable)")
	rootCmd.AddCommand(seedCmd)
}
