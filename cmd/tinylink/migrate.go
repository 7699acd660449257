package main

import (
	"github.com/sainath9392/tinylink/internal/database/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply every pending migration to the configured PostgreSQL database.
With --down, revert all of them instead, dropping the links table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := c.cfg.Postgres.DSN()

			if down {
				if err := postgres.RollbackMigrations(dsn); err != nil {
					return err
				}
				cmd.Println("migrations rolled back")
				return nil
			}

			if err := postgres.RunMigrations(dsn); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "revert all migrations")

	return cmd
}
