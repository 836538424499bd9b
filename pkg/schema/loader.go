package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk layout of a schema file.
type schemaFile struct {
	Version int     `yaml:"version,omitempty"`
	Stores  Schemas `yaml:"stores"`
}

// Parse decodes a YAML schema document. The document holds a `stores`
// list and an optional `version` number, which callers may use as the
// requested database version.
func Parse(data []byte) (Schemas, int, error) {
	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, 0, fmt.Errorf("failed to parse schema: %w", err)
	}
	if len(f.Stores) == 0 {
		return nil, 0, fmt.Errorf("schema declares no stores")
	}
	return f.Stores, f.Version, nil
}

// LoadFile reads and parses a YAML schema file.
func LoadFile(path string) (Schemas, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}
