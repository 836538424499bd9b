package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var schemaVersion int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade a database from a schema file",
		Long: `Open the database, creating it and its declared stores if needed.

When --schema-version exceeds the version stored in the database, the
schema upgrade runs before the command returns: new stores and indexes
are created, existing stores and their data are left untouched. Opening
with a version lower than the stored one fails.`,
		Example: `  # Create lode.db from schema.yaml at version 1
  lode init

  # Upgrade an existing database to schema version 2
  lode init --schema-version 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), schemaVersion)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := db.Version(cmd.Context())
			if err != nil {
				return err
			}

			names := make([]string, 0, len(db.Stores()))
			for name := range db.Stores() {
				names = append(names, name)
			}
			log.Info().
				Str("db", dbPath).
				Int("version", version).
				Strs("stores", names).
				Msg("Database ready")

			if jsonOutput {
				return printResult(map[string]any{
					"db":      dbPath,
					"version": version,
					"stores":  names,
				})
			}
			fmt.Printf("%s at schema version %d with %d stores\n", dbPath, version, len(names))
			return nil
		},
	}

	cmd.Flags().IntVar(&schemaVersion, "schema-version", 0, "requested schema version (0 = schema file version)")

	return cmd
}

func newStoresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List the stores recorded in the database catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), 0)
			if err != nil {
				return err
			}
			defer db.Close()

			catalog, err := db.ListCatalog(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return printResult(catalog)
			}
			for _, cs := range catalog {
				fmt.Printf("%s\tprimary key: %s\tsince version %d\n", cs.Name, cs.PrimaryKey, cs.SchemaVersion)
			}
			return nil
		},
	}
}
