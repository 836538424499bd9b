package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lodestore/lodestore/pkg/schema"
	"github.com/lodestore/lodestore/pkg/stores"
	"github.com/lodestore/lodestore/pkg/telemetry"
)

// openDB loads and validates the schema file, then opens the database.
// A zero version falls back to the version declared in the schema file
// (and from there to the package default of 1).
func openDB(ctx context.Context, version int) (*stores.DB, error) {
	schemas, fileVersion, err := schema.LoadFile(schemaPath)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(schemas); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if version == 0 {
		version = fileVersion
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
		Level:  level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, err
	}

	return stores.Open(ctx, stores.Config{
		Path:    dbPath,
		Version: version,
		Schemas: schemas,
		Logger:  logger,
	})
}

// openStore opens the database and returns the named store facade.
func openStore(ctx context.Context, name string) (*stores.DB, *stores.Store, error) {
	db, err := openDB(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	s, err := db.Store(name)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, s, nil
}

// printResult writes a value to stdout, as indented JSON when --json
// is set or the value is structured.
func printResult(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
