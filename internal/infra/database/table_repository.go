package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cdef_data_generator/internal/domain/dataset"

	"github.com/lib/pq" // For pq.QuoteIdentifier
)

var ErrUnsupportedType = fmt.Errorf("column type has no SQL mapping")

// Dialect describes the few places where Postgres and SQLite differ.
type Dialect struct {
	Name        string
	Types       map[dataset.ColumnType]string
	Placeholder func(n int) string
}

var Postgres = Dialect{
	Name: "postgres",
	Types: map[dataset.ColumnType]string{
		dataset.String:  "TEXT",
		dataset.Int8:    "SMALLINT",
		dataset.Int16:   "SMALLINT",
		dataset.Int32:   "INTEGER",
		dataset.Int64:   "BIGINT",
		dataset.Float64: "DOUBLE PRECISION",
	},
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

var SQLite = Dialect{
	Name: "sqlite",
	Types: map[dataset.ColumnType]string{
		dataset.String:  "TEXT",
		dataset.Int8:    "INTEGER",
		dataset.Int16:   "INTEGER",
		dataset.Int32:   "INTEGER",
		dataset.Int64:   "INTEGER",
		dataset.Float64: "REAL",
	},
	Placeholder: func(int) string { return "?" },
}

// TableRepository loads generated units into a SQL database, one table per
// register and year.
type TableRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewTableRepository(db *sql.DB, dialect Dialect) *TableRepository {
	return &TableRepository{db: db, dialect: dialect}
}

func (r *TableRepository) Name() string { return r.dialect.Name }

// TableName is the SQL table a unit is stored in.
func TableName(unit dataset.Unit) string {
	return fmt.Sprintf("%s_%d", unit.Register, unit.Year)
}

// Write replaces the unit's table with the rows of table.
func (r *TableRepository) Write(ctx context.Context, unit dataset.Unit, table *dataset.Table) error {
	name := pq.QuoteIdentifier(TableName(unit))

	defs := make([]string, len(table.Columns))
	cols := make([]string, len(table.Columns))
	marks := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		typ, ok := r.dialect.Types[c.Type]
		if !ok {
			return fmt.Errorf("column %q of type %q: %w", c.Name, c.Type, ErrUnsupportedType)
		}
		cols[i] = pq.QuoteIdentifier(c.Name)
		defs[i] = cols[i] + " " + typ
		marks[i] = r.dialect.Placeholder(i + 1)
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction for %s: %w", unit, err)
	}
	defer txn.Rollback() // Rollback if not committed

	if _, err := txn.ExecContext(ctx, `DROP TABLE IF EXISTS `+name); err != nil {
		return fmt.Errorf("error dropping table %s: %w", name, err)
	}
	if _, err := txn.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (%s)`, name, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("error creating table %s: %w", name, err)
	}

	stmt, err := txn.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		name, strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("error preparing insert for %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(table.Columns))
	for row := 0; row < table.NumRows(); row++ {
		for i, c := range table.Columns {
			args[i] = c.Values[row]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("error inserting row %d into %s: %w", row, name, err)
		}
	}

	return txn.Commit()
}

// Count returns the number of rows stored for unit.
func (r *TableRepository) Count(ctx context.Context, unit dataset.Unit) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM ` + pq.QuoteIdentifier(TableName(unit))
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting rows of %s: %w", unit, err)
	}
	return n, nil
}
