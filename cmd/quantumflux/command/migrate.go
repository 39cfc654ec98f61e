package command

import (
	"quantumflux/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.Migrate(cmd.Context(), db, log)
	},
}
