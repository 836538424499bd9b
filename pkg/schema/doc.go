// Package schema defines the store schema types for LodeStore.
// A schema list declares the named record stores a database holds,
// each with a primary-key field and a set of indexed columns. Schemas
// can be built in code or loaded from YAML files, and validated before
// being handed to the connection opener.
package schema
