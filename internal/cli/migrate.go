package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockbook/internal/infrastructure/config"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/sqlite"
)

func migrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the counter schema",
		Long: `Apply pending schema migrations of the SQL counter stores.

Redis and memory stores have no schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			log := o.logger()
			defer log.Sync()

			out := cmd.OutOrStdout()
			switch cfg.Storage.Driver {
			case config.DriverPostgres:
				if err := postgres.Migrate(cmd.Context(), cfg.Storage.Postgres.DSN, log); err != nil {
					return err
				}
			case config.DriverSQLite:
				// Opening applies the embedded schema.
				store, err := sqlite.Open(cmd.Context(), cfg.Storage.SQLite.Path)
				if err != nil {
					return err
				}
				if err := store.Close(); err != nil {
					return err
				}
			default:
				_, err := fmt.Fprintf(out, "driver %s has no schema\n", cfg.Storage.Driver)
				return err
			}

			_, err = fmt.Fprintln(out, "schema is up to date")
			return err
		},
	}
}
