package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/config"
	"github.com/qs-lzh/cinema-booking/internal/database"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "cinema",
	Short: "Cinema booking service",
	Long: `Cinema booking service: auditoriums, movies, schedules, tickets,
super tickets and user balances behind a JSON HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file before .env")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// setup loads the configuration, builds the logger and opens the database.
func setup() (*config.Config, *zap.Logger, *gorm.DB, error) {
	if envFile != "" {
		if err := util.LoadEnv(envFile); err != nil {
			return nil, nil, nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := util.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
