package commands

import (
	"github.com/spf13/cobra"

	"github.com/qs-lzh/cinema-booking/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the minimum auditoriums and the admin account",
	Long: `Seed tops the auditoriums up to the required minimum and, when ADMIN_EMAIL
and ADMIN_PASSWORD are set, creates the admin account. Running it twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer closeDB(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(db, database.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return err
		}
		logger.Info("database seeded")
		return nil
	},
}
