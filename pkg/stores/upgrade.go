package stores

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lodestore/lodestore/pkg/schema"
)

// runUpgrade creates one table per schema entry, attaches its declared
// indexes, records the layout in the catalog, and bumps the stored
// version, all inside a single transaction. Any failure rolls the
// whole upgrade back.
func runUpgrade(ctx context.Context, db *sql.DB, version int, schemas schema.Schemas) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpgradeFailed, err)
	}
	defer tx.Rollback()

	for _, s := range schemas {
		if err := createStore(ctx, tx, version, s); err != nil {
			return fmt.Errorf("%w: store %q: %v", ErrUpgradeFailed, s.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO _catalog_meta (id, version, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET version = excluded.version, updated_at = excluded.updated_at
	`, version); err != nil {
		return fmt.Errorf("%w: failed to record version: %v", ErrUpgradeFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrUpgradeFailed, err)
	}
	return nil
}

// createStore creates the table and indexes for one store declaration.
// IF NOT EXISTS keeps re-declared stores from earlier versions intact,
// so an upgrade that adds a store leaves existing data untouched.
func createStore(ctx context.Context, tx *sql.Tx, version int, s schema.StoreSchema) error {
	var ddl strings.Builder
	ddl.WriteString("CREATE TABLE IF NOT EXISTS ")
	ddl.WriteString(quoteIdent(s.Name))
	ddl.WriteString(" (")
	ddl.WriteString(quoteIdent(s.PrimaryKey))
	ddl.WriteString(" TEXT PRIMARY KEY")
	for _, c := range s.Columns {
		ddl.WriteString(", ")
		ddl.WriteString(quoteIdent(c.Name))
	}
	ddl.WriteString(", ")
	ddl.WriteString(recordColumn)
	ddl.WriteString(" TEXT NOT NULL)")

	if _, err := tx.ExecContext(ctx, ddl.String()); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	for _, c := range s.Columns {
		unique := ""
		if c.Unique {
			unique = "UNIQUE "
		}
		stmt := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
			unique,
			quoteIdent(fmt.Sprintf("idx_%s_%s", s.Name, c.Name)),
			quoteIdent(s.Name),
			quoteIdent(c.Name))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index on %q: %w", c.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO _catalog_stores (name, primary_key, schema_version, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET primary_key = excluded.primary_key, schema_version = excluded.schema_version
	`, s.Name, s.PrimaryKey, version); err != nil {
		return fmt.Errorf("failed to record store in catalog: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM _catalog_columns WHERE store = ?", s.Name); err != nil {
		return fmt.Errorf("failed to reset catalog columns: %w", err)
	}
	for i, c := range s.Columns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO _catalog_columns (store, name, is_unique, position)
			VALUES (?, ?, ?, ?)
		`, s.Name, c.Name, c.Unique, i); err != nil {
			return fmt.Errorf("failed to record column %q in catalog: %w", c.Name, err)
		}
	}

	return nil
}

// CatalogStore is one store row from the catalog, as recorded by the
// most recent upgrade that touched it.
type CatalogStore struct {
	Name          string
	PrimaryKey    string
	SchemaVersion int
}

// ListCatalog returns the stores recorded in the catalog, in name
// order. This reflects what upgrades have created, which may be a
// superset of the schema list the database was last opened with.
func (d *DB) ListCatalog(ctx context.Context) ([]CatalogStore, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT name, primary_key, schema_version FROM _catalog_stores ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	defer rows.Close()

	var out []CatalogStore
	for rows.Next() {
		var cs CatalogStore
		if err := rows.Scan(&cs.Name, &cs.PrimaryKey, &cs.SchemaVersion); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}
	return out, nil
}
