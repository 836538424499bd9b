package stores

import "errors"

// Error taxonomy. Connection errors surface from Open, upgrade errors
// wrap ErrUpgradeFailed, and per-operation errors wrap one of the
// operation sentinels. Every failure is returned on the call that
// triggered it; nothing is retried and nothing panics.
var (
	// ErrVersionTooOld is returned by Open when the requested schema
	// version is lower than the version already stored in the database.
	ErrVersionTooOld = errors.New("requested schema version is older than stored version")

	// ErrUpgradeFailed wraps any failure while creating stores or
	// indexes during a version upgrade. The upgrade transaction is
	// rolled back; nothing is partially applied.
	ErrUpgradeFailed = errors.New("schema upgrade failed")

	// ErrStoreNotFound is returned by DB.Store for a name not present
	// in the schema list the database was opened with.
	ErrStoreNotFound = errors.New("store not found")

	// ErrKeyNotFound is returned by Get for an absent primary key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrIndexNotFound is returned by Count for an index name that no
	// declared column carries.
	ErrIndexNotFound = errors.New("index not found")

	// ErrInvalidKey is returned when a key value cannot be canonicalized
	// to a string (only strings and numbers are valid keys).
	ErrInvalidKey = errors.New("invalid key")

	// ErrConstraint wraps engine constraint violations, such as adding
	// two records with the same value under a unique index.
	ErrConstraint = errors.New("constraint violation")
)
