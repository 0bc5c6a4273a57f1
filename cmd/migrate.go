package cmd

import (
	"fmt"

	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/model"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer dbadapter.Close(db)

		if err := model.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema migrated")
		return nil
	},
}
