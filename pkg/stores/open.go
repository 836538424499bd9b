package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/lodestore/lodestore/pkg/schema"
	"github.com/lodestore/lodestore/pkg/telemetry"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds the parameters for opening a database.
type Config struct {
	// Path is the database file path, or ":memory:" for a transient
	// database.
	Path string

	// Version is the requested schema version. Zero means version 1.
	Version int

	// Schemas declares the record stores of the database. One facade is
	// returned per entry, whether or not an upgrade runs.
	Schemas schema.Schemas

	// Connection pool settings. Zero values pick the defaults.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Logger receives structured logs. Nil discards them.
	Logger *telemetry.Logger

	// Metrics records operation counters and latencies. Nil disables
	// instrumentation.
	Metrics *telemetry.Metrics
}

// DB is an open LodeStore database: a shared engine handle plus one
// facade per declared store. The handle is owned by DB and shared by
// reference with every facade; Close releases it.
type DB struct {
	db      *sql.DB
	path    string
	stores  map[string]*Store
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// Open opens or creates the database at cfg.Path and brings its schema
// to cfg.Version. The upgrade is a separate phase ordered strictly
// before any facade is returned: Open resolves only after the catalog
// bootstrap and any pending schema upgrade have committed.
//
// Opening with a version lower than the stored one fails with
// ErrVersionTooOld. Opening with the stored version runs no upgrade;
// stores and data persist across opens.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	version := cfg.Version
	if version == 0 {
		version = 1
	}
	if version < 0 {
		return nil, fmt.Errorf("schema version must be positive, got %d", cfg.Version)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.Discard()
	}
	logger = logger.NewComponentLogger("stores")

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_txlock=immediate", cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 5
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime == 0 {
		lifetime = 5 * time.Minute
	}
	// An in-memory database exists per connection; a pool larger than
	// one would hand out connections to different empty databases.
	if strings.Contains(cfg.Path, ":memory:") {
		maxOpen = 1
		maxIdle = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Connection-level setting; the DSN parameter alone does not cover
	// pooled connections on every driver.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrateCatalog(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	stored, err := storedVersion(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if version < stored {
		_ = db.Close()
		return nil, fmt.Errorf("%w: requested %d, stored %d", ErrVersionTooOld, version, stored)
	}

	if version > stored {
		logger.WithField("from", stored).WithField("to", version).Info("Upgrading database schema")
		if err := runUpgrade(ctx, db, version, cfg.Schemas); err != nil {
			_ = db.Close()
			return nil, err
		}
		cfg.Metrics.RecordUpgrade(stored, version)
	}

	stores := make(map[string]*Store, len(cfg.Schemas))
	for _, s := range cfg.Schemas {
		stores[s.Name] = newStore(db, s, logger, cfg.Metrics)
	}
	cfg.Metrics.AddOpenStores(float64(len(stores)))

	logger.WithField("path", cfg.Path).WithField("version", version).
		Debugf("Opened database with %d stores", len(stores))

	return &DB{
		db:      db,
		path:    cfg.Path,
		stores:  stores,
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// migrateCatalog bootstraps the wrapper's own catalog tables from the
// embedded migration files.
func migrateCatalog(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}

	return nil
}

// storedVersion reads the schema version recorded in the catalog. A
// fresh database has no meta row and reports version zero.
func storedVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT version FROM _catalog_meta WHERE id = 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stored version: %w", err)
	}
	return version, nil
}

// Store returns the facade for the named store.
func (d *DB) Store(name string) (*Store, error) {
	s, ok := d.stores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, name)
	}
	return s, nil
}

// Stores returns the facades keyed by store name. The map is a copy;
// mutating it does not affect the DB.
func (d *DB) Stores() map[string]*Store {
	out := make(map[string]*Store, len(d.stores))
	for name, s := range d.stores {
		out[name] = s
	}
	return out
}

// Version reports the schema version currently stored in the catalog.
func (d *DB) Version(ctx context.Context) (int, error) {
	return storedVersion(ctx, d.db)
}

// HealthCheck verifies the engine connection is healthy.
func (d *DB) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close releases the engine handle. Facades obtained from this DB are
// unusable afterwards.
func (d *DB) Close() error {
	d.metrics.AddOpenStores(-float64(len(d.stores)))
	return d.db.Close()
}
