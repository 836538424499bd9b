package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lodestore/lodestore/pkg/schema"
	"github.com/lodestore/lodestore/pkg/telemetry"
)

// Store is the facade for one named record store. It holds the shared
// engine handle and its own identity; it caches no data and keeps no
// in-memory mirror. Every operation runs in its own transaction: each
// call issues exactly one statement, which the engine executes in a
// dedicated implicit transaction. Reads therefore never take a write
// lock, and a failed call settles with an error without affecting
// other in-flight or future calls.
type Store struct {
	db         *sql.DB
	name       string
	primaryKey string
	columns    []schema.StoreColumn
	indexed    map[string]bool
	logger     *telemetry.Logger
	metrics    *telemetry.Metrics
}

func newStore(db *sql.DB, s schema.StoreSchema, logger *telemetry.Logger, metrics *telemetry.Metrics) *Store {
	indexed := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		indexed[c.Name] = true
	}
	return &Store{
		db:         db,
		name:       s.Name,
		primaryKey: s.PrimaryKey,
		columns:    s.Columns,
		indexed:    indexed,
		logger:     logger.WithStore(s.Name),
		metrics:    metrics,
	}
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// PrimaryKey returns the primary-key field name.
func (s *Store) PrimaryKey() string { return s.primaryKey }

// Add upserts a record keyed by its primary-key field. A missing or
// empty primary-key value is filled with a generated UUID. The
// canonical key is returned. A nil record is treated as empty.
func (s *Store) Add(ctx context.Context, rec Record) (string, error) {
	start := time.Now()

	stored := make(Record, len(rec)+1)
	for k, v := range rec {
		stored[k] = v
	}

	var key string
	if v, ok := stored[s.primaryKey]; ok && v != nil && v != "" {
		var err error
		key, err = canonicalKey(v)
		if err != nil {
			return "", s.settle("add", start, err)
		}
	} else {
		key = uuid.NewString()
	}
	stored[s.primaryKey] = key

	doc, err := json.Marshal(stored)
	if err != nil {
		return "", s.settle("add", start, fmt.Errorf("failed to encode record: %w", err))
	}

	cols := []string{quoteIdent(s.primaryKey)}
	args := []any{key}
	var updates []string
	for _, c := range s.columns {
		v, err := columnValue(stored[c.Name])
		if err != nil {
			return "", s.settle("add", start, err)
		}
		cols = append(cols, quoteIdent(c.Name))
		args = append(args, v)
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", quoteIdent(c.Name), quoteIdent(c.Name)))
	}
	cols = append(cols, recordColumn)
	args = append(args, string(doc))
	updates = append(updates, fmt.Sprintf("%s = excluded.%s", recordColumn, recordColumn))

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		quoteIdent(s.name),
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", "),
		quoteIdent(s.primaryKey),
		strings.Join(updates, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isConstraintErr(err) {
			err = fmt.Errorf("%w: %v", ErrConstraint, err)
		} else {
			err = fmt.Errorf("failed to add record: %w", err)
		}
		return "", s.settle("add", start, err)
	}

	return key, s.settle("add", start, nil)
}

// Get returns the record stored under the given primary-key value, or
// ErrKeyNotFound when absent.
func (s *Store) Get(ctx context.Context, key any) (Record, error) {
	start := time.Now()

	k, err := canonicalKey(key)
	if err != nil {
		return nil, s.settle("get", start, err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		recordColumn, quoteIdent(s.name), quoteIdent(s.primaryKey))

	var doc string
	err = s.db.QueryRowContext(ctx, query, k).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.settle("get", start, fmt.Errorf("%w: %s", ErrKeyNotFound, k))
	}
	if err != nil {
		return nil, s.settle("get", start, fmt.Errorf("failed to get record: %w", err))
	}

	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, s.settle("get", start, fmt.Errorf("failed to decode record: %w", err))
	}
	return rec, s.settle("get", start, nil)
}

// GetAll returns every record in the store in ascending primary-key
// order. An empty store yields an empty slice.
func (s *Store) GetAll(ctx context.Context) ([]Record, error) {
	start := time.Now()

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC",
		recordColumn, quoteIdent(s.name), quoteIdent(s.primaryKey))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, s.settle("getAll", start, fmt.Errorf("failed to list records: %w", err))
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, s.settle("getAll", start, fmt.Errorf("failed to scan record: %w", err))
		}
		var rec Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, s.settle("getAll", start, fmt.Errorf("failed to decode record: %w", err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.settle("getAll", start, fmt.Errorf("error iterating records: %w", err))
	}
	return records, s.settle("getAll", start, nil)
}

// GetAllKeys returns every primary key in the store in ascending order.
func (s *Store) GetAllKeys(ctx context.Context) ([]string, error) {
	start := time.Now()

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC",
		quoteIdent(s.primaryKey), quoteIdent(s.name), quoteIdent(s.primaryKey))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, s.settle("getAllKeys", start, fmt.Errorf("failed to list keys: %w", err))
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, s.settle("getAllKeys", start, fmt.Errorf("failed to scan key: %w", err))
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, s.settle("getAllKeys", start, fmt.Errorf("error iterating keys: %w", err))
	}
	return keys, s.settle("getAllKeys", start, nil)
}

// Remove deletes the record stored under the given primary-key value.
// Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key any) error {
	start := time.Now()

	k, err := canonicalKey(key)
	if err != nil {
		return s.settle("remove", start, err)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		quoteIdent(s.name), quoteIdent(s.primaryKey))
	if _, err := s.db.ExecContext(ctx, query, k); err != nil {
		return s.settle("remove", start, fmt.Errorf("failed to remove record: %w", err))
	}
	return s.settle("remove", start, nil)
}

// Count returns the number of entries present under the named index,
// that is, records whose indexed field holds a non-null value. The
// index name is the declared column name; an undeclared name fails
// with ErrIndexNotFound.
func (s *Store) Count(ctx context.Context, index string) (int64, error) {
	start := time.Now()

	if !s.indexed[index] {
		return 0, s.settle("count", start, fmt.Errorf("%w: %s on store %s", ErrIndexNotFound, index, s.name))
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL",
		quoteIdent(s.name), quoteIdent(index))

	var n int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, s.settle("count", start, fmt.Errorf("failed to count index entries: %w", err))
	}
	return n, s.settle("count", start, nil)
}

// Clear deletes every record in the store.
func (s *Store) Clear(ctx context.Context) error {
	start := time.Now()

	query := fmt.Sprintf("DELETE FROM %s", quoteIdent(s.name))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return s.settle("clear", start, fmt.Errorf("failed to clear store: %w", err))
	}
	return s.settle("clear", start, nil)
}

// settle records the outcome of one operation and passes the error
// through, so every code path resolves the call exactly once.
func (s *Store) settle(op string, start time.Time, err error) error {
	s.metrics.ObserveOperation(s.name, op, err, time.Since(start).Seconds())
	if err != nil {
		s.logger.WithOp(op).WithError(err).Debug("Store operation failed")
	}
	return err
}
