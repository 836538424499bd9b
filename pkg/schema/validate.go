package schema

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// identPattern matches SQL-safe identifiers. A leading underscore is
// rejected; underscore-prefixed names are reserved for the catalog
// tables and the record payload column.
var identPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag name.
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return identPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a schema list for structural problems: missing or
// non-identifier names, a column shadowing the primary key, duplicate
// columns within a store, and duplicate store names across the list.
// The connection opener does not call this; callers that want early
// diagnostics (the CLI does) run it before opening.
func Validate(schemas Schemas) error {
	v := newValidator()

	seenStores := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		if err := v.Struct(s); err != nil {
			return fmt.Errorf("store %q: %w", s.Name, err)
		}
		if seenStores[s.Name] {
			return fmt.Errorf("duplicate store name %q", s.Name)
		}
		seenStores[s.Name] = true

		seenCols := make(map[string]bool, len(s.Columns))
		for _, c := range s.Columns {
			if c.Name == s.PrimaryKey {
				return fmt.Errorf("store %q: column %q duplicates the primary key", s.Name, c.Name)
			}
			if seenCols[c.Name] {
				return fmt.Errorf("store %q: duplicate column %q", s.Name, c.Name)
			}
			seenCols[c.Name] = true
		}
	}
	return nil
}
