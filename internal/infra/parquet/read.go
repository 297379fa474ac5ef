package parquet

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"cdef_data_generator/internal/domain/dataset"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ReadFile loads one Parquet file.
func ReadFile(ctx context.Context, path string) (*dataset.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, file, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer tbl.Release()

	out := &dataset.Table{Columns: make([]dataset.Column, 0, tbl.NumCols())}
	for i := 0; i < int(tbl.NumCols()); i++ {
		c, err := fromColumn(tbl.Column(i))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out.Columns = append(out.Columns, c)
	}
	return out, nil
}

// Files lists the Parquet files below dir in lexical order.
func Files(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && parquetFiles.Match(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadDir loads every Parquet file below dir, recursing into
// subdirectories, and stacks them into one table.
func ReadDir(ctx context.Context, dir string) (*dataset.Table, error) {
	paths, err := Files(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoParquetFiles)
	}

	tables := make([]*dataset.Table, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := ReadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return dataset.Concat(tables...)
}

func fromColumn(col *arrow.Column) (dataset.Column, error) {
	out := dataset.Column{Name: col.Name(), Values: make([]any, 0, col.Len())}

	switch col.DataType().ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		out.Type = dataset.String
	case arrow.INT8:
		out.Type = dataset.Int8
	case arrow.INT16:
		out.Type = dataset.Int16
	case arrow.INT32:
		out.Type = dataset.Int32
	case arrow.INT64:
		out.Type = dataset.Int64
	case arrow.FLOAT64:
		out.Type = dataset.Float64
	default:
		return out, fmt.Errorf("column %q of type %s: %w", col.Name(), col.DataType(), ErrUnsupportedType)
	}

	for _, chunk := range col.Data().Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				out.Values = append(out.Values, nil)
				continue
			}
			switch a := chunk.(type) {
			case *array.String:
				out.Values = append(out.Values, a.Value(i))
			case *array.LargeString:
				out.Values = append(out.Values, a.Value(i))
			case *array.Int8:
				out.Values = append(out.Values, a.Value(i))
			case *array.Int16:
				out.Values = append(out.Values, a.Value(i))
			case *array.Int32:
				out.Values = append(out.Values, a.Value(i))
			case *array.Int64:
				out.Values = append(out.Values, a.Value(i))
			case *array.Float64:
				out.Values = append(out.Values, a.Value(i))
			}
		}
	}
	return out, nil
}
