package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"cdef_data_generator/internal/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) (*TableRepository, *sql.DB) {
	t.Helper()
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "cdef.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTableRepository(db, SQLite), db
}

func sampleTable() *dataset.Table {
	return &dataset.Table{Columns: []dataset.Column{
		{Name: "PNR", Type: dataset.String, Values: []any{"010120-1234", "020220-2345", nil}},
		{Name: "REG", Type: dataset.Int8, Values: []any{int8(81), int8(84), int8(85)}},
		{Name: "ALDER", Type: dataset.Int32, Values: []any{int32(0), nil, int32(99)}},
		{Name: "LOEN", Type: dataset.Float64, Values: []any{1.5, 2.5, 3.5}},
	}}
}

func TestTableRepository_Write(t *testing.T) {
	ctx := context.Background()
	repo, db := newSQLiteRepo(t)
	unit := dataset.Unit{Register: "bef", Year: 2020}

	require.NoError(t, repo.Write(ctx, unit, sampleTable()))

	n, err := repo.Count(ctx, unit)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var pnr sql.NullString
	var age sql.NullInt64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT "PNR", "ALDER" FROM "bef_2020" WHERE "REG" = 84`).Scan(&pnr, &age))
	assert.Equal(t, "020220-2345", pnr.String)
	assert.False(t, age.Valid)

	t.Run("rewrite replaces rows", func(t *testing.T) {
		require.NoError(t, repo.Write(ctx, unit, sampleTable().Slice(0, 1)))
		n, err := repo.Count(ctx, unit)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		bad := &dataset.Table{Columns: []dataset.Column{{Name: "X", Type: "uuid", Values: []any{"a"}}}}
		err := repo.Write(ctx, dataset.Unit{Register: "x", Year: 1}, bad)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "lpr_adm_2019", TableName(dataset.Unit{Register: "lpr_adm", Year: 2019}))
	assert.Equal(t, "postgres", NewTableRepository(nil, Postgres).Name())
	assert.Equal(t, "$3", Postgres.Placeholder(3))
}
