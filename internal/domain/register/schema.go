package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrSchemaNotFound = fmt.Errorf("schema not found")

// ColumnDef is one entry of a register schema. Type is optional and only
// consulted when no register rule knows the column name.
type ColumnDef struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Schema is the ordered column list of a register.
type Schema struct {
	Register string      `json:"-" yaml:"-"`
	Columns  []ColumnDef `json:"columns" yaml:"columns"`
}

// Has reports whether the schema contains a column called name.
func (s *Schema) Has(name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

var schemaExtensions = []string{".json", ".yaml", ".yml"}

// LoadSchema reads <dir>/<register>.json, falling back to .yaml and .yml.
func LoadSchema(dir, register string) (*Schema, error) {
	for _, ext := range schemaExtensions {
		path := filepath.Join(dir, register+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read schema for register '%s': %w", register, err)
		}

		schema := &Schema{Register: register}
		if ext == ".json" {
			err = json.Unmarshal(data, schema)
		} else {
			err = yaml.Unmarshal(data, schema)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema for register '%s' at %s: %w", register, path, err)
		}
		return schema, nil
	}

	path := filepath.Join(dir, register+schemaExtensions[0])
	return nil, fmt.Errorf("schema file for register '%s' not found at path: %s: %w", register, path, ErrSchemaNotFound)
}
