package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	config "client-tasks.com/client-tasks/internal/configs"
	"client-tasks.com/client-tasks/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "tasks-api",
	Short:         "Client tasks REST API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (config.Config, *zap.Logger, *gorm.DB, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if envErr != nil {
		log.Debug(".env file not found, using environment variables")
	}

	db, err := config.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	return cfg, log, db, nil
}
