// Package stores implements the LodeStore persistence layer: named,
// schema-declared record stores over an embedded SQLite database.
// Open creates or upgrades a versioned database from a schema list and
// returns one Store facade per declared store. Each facade operation
// runs in its own transaction against the engine; the package adds no
// caching, batching, or retry on top of what SQLite provides.
package stores
