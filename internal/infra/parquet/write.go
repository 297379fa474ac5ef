package parquet

import (
	"fmt"
	"os"
	"path/filepath"

	"cdef_data_generator/internal/domain/dataset"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/gobwas/glob"
)

var (
	ErrUnsupportedType = fmt.Errorf("unsupported column type")
	ErrNoParquetFiles  = fmt.Errorf("no parquet files found")
)

// parquetFiles matches the base names this package reads and purges.
var parquetFiles = glob.MustCompile("*.parquet")

var arrowTypes = map[dataset.ColumnType]arrow.DataType{
	dataset.String:  arrow.BinaryTypes.String,
	dataset.Int8:    arrow.PrimitiveTypes.Int8,
	dataset.Int16:   arrow.PrimitiveTypes.Int16,
	dataset.Int32:   arrow.PrimitiveTypes.Int32,
	dataset.Int64:   arrow.PrimitiveTypes.Int64,
	dataset.Float64: arrow.PrimitiveTypes.Float64,
}

// WriteFile writes table to path as a single Parquet file, creating parent
// directories as needed.
func WriteFile(path string, table *dataset.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	mem := memory.NewGoAllocator()
	record, err := toRecord(mem, table)
	if err != nil {
		return err
	}
	defer record.Release()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer, err := pqarrow.NewFileWriter(
		record.Schema(),
		file,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy), parquet.WithAllocator(mem)),
		pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem), pqarrow.WithStoreSchema()),
	)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer for %s: %w", path, err)
	}
	return nil
}

// WritePartitioned splits table into chunks of chunkSize rows and writes
// them as <baseDir>/dataset=<datasetID>/part-NNNNN.parquet. Parquet files
// left in that directory by an earlier run are removed first. A chunkSize
// of zero or less writes one part.
func WritePartitioned(baseDir, datasetID string, table *dataset.Table, chunkSize int) ([]string, error) {
	dir := filepath.Join(baseDir, "dataset="+datasetID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	if err := purge(dir); err != nil {
		return nil, err
	}

	rows := table.NumRows()
	if chunkSize <= 0 || chunkSize > rows {
		chunkSize = max(rows, 1)
	}

	var parts []string
	for start, part := 0, 0; start < rows || part == 0; start, part = start+chunkSize, part+1 {
		end := min(start+chunkSize, rows)
		path := filepath.Join(dir, fmt.Sprintf("part-%05d.parquet", part))
		if err := WriteFile(path, table.Slice(start, end)); err != nil {
			return parts, err
		}
		parts = append(parts, path)
	}
	return parts, nil
}

func purge(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && parquetFiles.Match(e.Name()) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return fmt.Errorf("failed to remove stale part: %w", err)
			}
		}
	}
	return nil
}

func toRecord(mem memory.Allocator, table *dataset.Table) (arrow.Record, error) {
	fields := make([]arrow.Field, len(table.Columns))
	cols := make([]arrow.Array, 0, len(table.Columns))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for i, c := range table.Columns {
		typ, ok := arrowTypes[c.Type]
		if !ok {
			return nil, fmt.Errorf("column %q of type %q: %w", c.Name, c.Type, ErrUnsupportedType)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: typ, Nullable: true}

		arr, err := buildArray(mem, c)
		if err != nil {
			return nil, err
		}
		cols = append(cols, arr)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewRecord(schema, cols, int64(table.NumRows())), nil
}

func buildArray(mem memory.Allocator, c dataset.Column) (arrow.Array, error) {
	builder := array.NewBuilder(mem, arrowTypes[c.Type])
	defer builder.Release()
	builder.Reserve(c.Len())

	for i, v := range c.Values {
		if v == nil {
			builder.AppendNull()
			continue
		}

		var ok bool
		switch b := builder.(type) {
		case *array.StringBuilder:
			var s string
			if s, ok = v.(string); ok {
				b.Append(s)
			}
		case *array.Int8Builder:
			var n int8
			if n, ok = v.(int8); ok {
				b.Append(n)
			}
		case *array.Int16Builder:
			var n int16
			if n, ok = v.(int16); ok {
				b.Append(n)
			}
		case *array.Int32Builder:
			var n int32
			if n, ok = v.(int32); ok {
				b.Append(n)
			}
		case *array.Int64Builder:
			var n int64
			if n, ok = v.(int64); ok {
				b.Append(n)
			}
		case *array.Float64Builder:
			var n float64
			if n, ok = v.(float64); ok {
				b.Append(n)
			}
		}
		if !ok {
			return nil, fmt.Errorf("column %q row %d: %T is not %s", c.Name, i, v, c.Type)
		}
	}
	return builder.NewArray(), nil
}
