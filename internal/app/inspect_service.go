// internal/app/inspect_service.go
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cdef_data_generator/internal/domain/dataset"
	"cdef_data_generator/internal/infra/parquet"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidInput = fmt.Errorf("input path is neither a file nor a directory")
	ErrOutputIsFile = fmt.Errorf("output path is an existing file")
)

// partitionedDatasetID names the dataset=<id> directory of rewritten input.
const partitionedDatasetID = "0"

// previewRows is the number of leading rows printed by Inspect.
const previewRows = 10

// InspectService reads existing Parquet data, prints a preview and
// optionally writes it back out.
type InspectService interface {
	Inspect(ctx context.Context, input, output string) (*dataset.Table, error)
}

type InspectServiceImpl struct {
	out       io.Writer
	chunkSize int
	logger    *logrus.Entry
}

// NewInspectServiceImpl writes previews to out. Partitioned output is split
// into rows/threads rows per part.
func NewInspectServiceImpl(out io.Writer, rows, threads int, logger *logrus.Entry) *InspectServiceImpl {
	return &InspectServiceImpl{
		out:       out,
		chunkSize: rows / max(threads, 1),
		logger:    logger,
	}
}

// Inspect loads input (a file, or a directory read recursively), prints it
// and, when output is set, writes it either to a single file (output ends in
// .parquet) or as a partitioned dataset below output.
func (s *InspectServiceImpl) Inspect(ctx context.Context, input, output string) (*dataset.Table, error) {
	start := time.Now()

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", input, ErrInvalidInput)
	}

	var tbl *dataset.Table
	switch {
	case info.IsDir():
		tbl, err = parquet.ReadDir(ctx, input)
	case info.Mode().IsRegular():
		tbl, err = parquet.ReadFile(ctx, input)
	default:
		return nil, fmt.Errorf("%q: %w", input, ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"input":    input,
		"rows":     tbl.NumRows(),
		"columns":  len(tbl.Columns),
		"duration": time.Since(start).String(),
	}).Info("Read parquet input.")

	fmt.Fprintln(s.out, Preview(tbl, previewRows))
	fmt.Fprintf(s.out, "shape: (%d, %d)\n", tbl.NumRows(), len(tbl.Columns))

	if output == "" {
		return tbl, nil
	}
	return tbl, s.write(tbl, output)
}

func (s *InspectServiceImpl) write(tbl *dataset.Table, output string) error {
	start := time.Now()
	log := s.logger.WithField("output", output)

	if strings.HasSuffix(output, ".parquet") {
		if err := parquet.WriteFile(output, tbl); err != nil {
			return err
		}
		log.WithField("duration", time.Since(start).String()).Info("Wrote single parquet file.")
		return nil
	}

	if info, err := os.Stat(output); err == nil && !info.IsDir() {
		return fmt.Errorf("%q: %w", output, ErrOutputIsFile)
	}
	parts, err := parquet.WritePartitioned(output, partitionedDatasetID, tbl, s.chunkSize)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"parts":    len(parts),
		"duration": time.Since(start).String(),
	}).Info("Wrote partitioned parquet dataset.")
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Preview renders the first n rows of tbl with column names and types as
// headers. Nulls print as "null".
func Preview(tbl *dataset.Table, n int) string {
	headers := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		headers[i] = fmt.Sprintf("%s\n%s", c.Name, c.Type)
	}

	rows := make([][]string, 0, min(n, tbl.NumRows()))
	for r := 0; r < min(n, tbl.NumRows()); r++ {
		row := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			if v := c.Values[r]; v != nil {
				row[i] = fmt.Sprint(v)
			} else {
				row[i] = "null"
			}
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
