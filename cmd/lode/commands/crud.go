package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lodestore/lodestore/pkg/stores"
)

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <store> <record-json>",
		Short: "Add or replace a record",
		Long: `Upsert a record into a store. The record is a JSON object; its value
under the store's primary-key field becomes the record key. A missing
primary-key field gets a generated UUID.`,
		Example: `  lode add users '{"id": "u1", "email": "u1@example.com"}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec stores.Record
			if err := json.Unmarshal([]byte(args[1]), &rec); err != nil {
				return fmt.Errorf("invalid record JSON: %w", err)
			}

			db, store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			key, err := store.Add(cmd.Context(), rec)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printResult(map[string]string{"key": key})
			}
			fmt.Println(key)
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get <store> <key>",
		Short:   "Get a record by primary key",
		Example: `  lode get users u1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			rec, err := store.Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return printResult(rec)
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <store>",
		Short: "List all records in a store, in key order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := store.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(records)
		},
	}
}

func newKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <store>",
		Short: "List all primary keys in a store, in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			keys, err := store.GetAllKeys(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return printResult(keys)
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <store> <key>",
		Short: "Remove a record by primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			return store.Remove(cmd.Context(), args[1])
		},
	}
}

func newCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <store> <index>",
		Short: "Count entries under a secondary index",
		Long: `Count the records whose indexed field holds a value. The index name
is the column name declared in the schema.`,
		Example: `  lode count users email`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := store.Count(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			if jsonOutput {
				return printResult(map[string]int64{"count": n})
			}
			fmt.Println(n)
			return nil
		},
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <store>",
		Short: "Delete every record in a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			return store.Clear(cmd.Context())
		},
	}
}
