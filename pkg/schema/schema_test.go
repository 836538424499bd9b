package schema

import (
	"strings"
	"testing"
)

func validSchemas() Schemas {
	return Schemas{
		{
			Name:       "users",
			PrimaryKey: "id",
			Columns: []StoreColumn{
				{Name: "email", Unique: true},
				{Name: "team"},
			},
		},
		{
			Name:       "sessions",
			PrimaryKey: "token",
		},
	}
}

func TestValidateAccepted(t *testing.T) {
	if err := Validate(validSchemas()); err != nil {
		t.Fatalf("expected valid schemas, got: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		schemas Schemas
		wantSub string
	}{
		{
			name:    "missing store name",
			schemas: Schemas{{PrimaryKey: "id"}},
			wantSub: "Name",
		},
		{
			name:    "missing primary key",
			schemas: Schemas{{Name: "users"}},
			wantSub: "PrimaryKey",
		},
		{
			name:    "reserved underscore prefix",
			schemas: Schemas{{Name: "_users", PrimaryKey: "id"}},
			wantSub: "ident",
		},
		{
			name:    "non identifier store name",
			schemas: Schemas{{Name: "users; DROP TABLE x", PrimaryKey: "id"}},
			wantSub: "ident",
		},
		{
			name: "column shadows primary key",
			schemas: Schemas{{
				Name:       "users",
				PrimaryKey: "id",
				Columns:    []StoreColumn{{Name: "id"}},
			}},
			wantSub: "duplicates the primary key",
		},
		{
			name: "duplicate column",
			schemas: Schemas{{
				Name:       "users",
				PrimaryKey: "id",
				Columns:    []StoreColumn{{Name: "email"}, {Name: "email"}},
			}},
			wantSub: "duplicate column",
		},
		{
			name: "duplicate store name",
			schemas: Schemas{
				{Name: "users", PrimaryKey: "id"},
				{Name: "users", PrimaryKey: "uid"},
			},
			wantSub: "duplicate store name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schemas)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("expected error containing %q, got: %v", tt.wantSub, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	doc := `
version: 3
stores:
  - name: users
    primaryKey: id
    columns:
      - name: email
        unique: true
      - name: team
  - name: sessions
    primaryKey: token
`
	schemas, version, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse schema: %v", err)
	}
	if version != 3 {
		t.Errorf("expected version 3, got %d", version)
	}
	if len(schemas) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(schemas))
	}
	if schemas[0].Name != "users" || schemas[0].PrimaryKey != "id" {
		t.Errorf("unexpected first store: %+v", schemas[0])
	}
	if len(schemas[0].Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(schemas[0].Columns))
	}
	if !schemas[0].Columns[0].Unique {
		t.Error("expected email column to be unique")
	}
	if schemas[0].Columns[1].Unique {
		t.Error("expected team column to be non-unique")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, _, err := Parse([]byte("stores: []")); err == nil {
		t.Fatal("expected error for schema with no stores")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, _, err := LoadFile("does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
