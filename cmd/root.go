// Package cmd holds the command line entry points: serve, migrate and seed.
package cmd

import (
	"fmt"
	"os"

	"github.com/kasuganosora/middleearth/config"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "middleearth",
	Short:        "Middle-earth character backend",
	Long:         `Accounts, races and classes, character creation and progression, and a leaderboard over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml",
		"YAML config file; empty uses defaults and RPG_* environment variables")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the config, builds the logger and opens the migrated
// database. The caller owns both and must close them.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}

	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, fmt.Errorf("db: %w", err)
	}
	logger.Info("database opened", zap.String("mode", cfg.Database.Mode))
	return cfg, logger, db, nil
}
