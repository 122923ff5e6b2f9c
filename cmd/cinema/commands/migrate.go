package commands

import (
	"github.com/spf13/cobra"

	"github.com/qs-lzh/cinema-booking/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer closeDB(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Info("database migrated")
		return nil
	},
}
