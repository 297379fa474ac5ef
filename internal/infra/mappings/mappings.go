package mappings

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

var ErrUnknownTable = fmt.Errorf("unknown mapping table")

//go:embed defaults/*.json
var defaults embed.FS

// Tables are the code tables every catalog carries.
var Tables = []string{
	"socio13", "civst", "fm_mark", "hustype", "plads", "reg",
	"statsb", "jobkat", "tilknyt", "pre_socio", "beskst13", "scd",
}

type table struct {
	labels map[string]string
	keys   []string
}

// Catalog holds code-to-label tables. It is read-only after Load.
type Catalog struct {
	tables map[string]table
}

// Load reads the embedded tables and replaces any of them for which dir
// holds a <table>.json file. An empty dir uses the embedded tables only.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]table, len(Tables))}

	for _, name := range Tables {
		data, source, err := readTable(dir, name)
		if err != nil {
			return nil, err
		}

		labels := make(map[string]string)
		if err := json.Unmarshal(data, &labels); err != nil {
			return nil, fmt.Errorf("failed to parse mapping %q from %s: %w", name, source, err)
		}
		if len(labels) == 0 {
			return nil, fmt.Errorf("mapping %q from %s is empty", name, source)
		}

		keys := make([]string, 0, len(labels))
		for k := range labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		c.tables[name] = table{labels: labels, keys: keys}
	}

	return c, nil
}

func readTable(dir, name string) ([]byte, string, error) {
	file := name + ".json"
	if dir != "" {
		path := filepath.Join(dir, file)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, fmt.Errorf("failed to read mapping %q: %w", name, err)
		}
	}

	data, err := defaults.ReadFile("defaults/" + file)
	if err != nil {
		return nil, "embedded defaults", fmt.Errorf("failed to read embedded mapping %q: %w", name, err)
	}
	return data, "embedded defaults", nil
}

// Keys returns the codes of a table in sorted order.
func (c *Catalog) Keys(name string) ([]string, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownTable)
	}
	return t.keys, nil
}

// Label returns the label of key in table name.
func (c *Catalog) Label(name, key string) (string, bool) {
	label, ok := c.tables[name].labels[key]
	return label, ok
}
