package schema

// StoreColumn declares a secondary index over a record field.
type StoreColumn struct {
	// Name is the record field the index is built over. It is also the
	// index name used by Store.Count.
	Name string `json:"name" yaml:"name" validate:"required,ident"`

	// Unique enforces at most one record per distinct value of the field.
	Unique bool `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// StoreSchema declares one named record store.
type StoreSchema struct {
	// Name uniquely identifies the store within a database.
	Name string `json:"name" yaml:"name" validate:"required,ident"`

	// PrimaryKey is the record field whose value identifies a record.
	PrimaryKey string `json:"primaryKey" yaml:"primaryKey" validate:"required,ident"`

	// Columns lists the secondary indexes of the store, in declaration order.
	Columns []StoreColumn `json:"columns,omitempty" yaml:"columns,omitempty" validate:"dive"`
}

// Schemas is an ordered list of store declarations for one database.
type Schemas []StoreSchema
