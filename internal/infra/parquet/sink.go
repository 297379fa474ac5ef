package parquet

import (
	"context"
	"fmt"
	"path/filepath"

	"cdef_data_generator/internal/domain/dataset"
)

// Sink writes each generated unit to <dir>/<register>/<year>.parquet.
// Population tables (bef) are stamped with the December snapshot, so their
// files are named <year>12.parquet.
type Sink struct {
	dir string
}

func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

func (s *Sink) Name() string { return "parquet" }

// Path returns the file a unit is written to.
func (s *Sink) Path(unit dataset.Unit) string {
	name := fmt.Sprintf("%d.parquet", unit.Year)
	if unit.Register == "bef" {
		name = fmt.Sprintf("%d12.parquet", unit.Year)
	}
	return filepath.Join(s.dir, unit.Register, name)
}

func (s *Sink) Write(ctx context.Context, unit dataset.Unit, table *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFile(s.Path(unit), table)
}
