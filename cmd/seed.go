package cmd

import (
	"fmt"

	"github.com/kasuganosora/middleearth/catalog"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the built-in races and classes",
	Long:  `Migrates the schema, then inserts any missing races and classes. Running it again changes nothing.`,
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
		res, err := catalog.Seed(cmd.Context(), db)
		if err != nil {
			return err
		}
		races, classes, err := catalog.Counts(cmd.Context(), db)
		if err != nil {
			return err
		}
		logger.Info("catalog seeded",
			zap.Int64("races_added", res.Races), zap.Int64("classes_added", res.Classes),
			zap.Int64("races", races), zap.Int64("classes", classes))
		fmt.Fprintf(cmd.OutOrStdout(), "races: %d (+%d), classes: %d (+%d)\n", races, res.Races, classes, res.Classes)
		return nil
	},
}
