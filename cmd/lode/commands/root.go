package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbPath     string
	schemaPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lode",
		Short: "LodeStore - embedded schema-driven record stores",
		Long: `LodeStore manages named record stores inside a single SQLite database
file. Stores are declared in a YAML schema list with a primary key and
indexed columns, created or upgraded on open, and manipulated through
a small CRUD vocabulary (add, get, list, keys, remove, count, clear).`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "lode.db", "database file path")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "schema.yaml", "schema file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newStoresCommand())
	rootCmd.AddCommand(newAddCommand())
	rootCmd.AddCommand(newGetCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newKeysCommand())
	rootCmd.AddCommand(newRemoveCommand())
	rootCmd.AddCommand(newCountCommand())
	rootCmd.AddCommand(newClearCommand())

	return rootCmd
}
