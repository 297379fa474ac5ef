package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cdef_data_generator/internal/infra/config"
	idb "cdef_data_generator/internal/infra/database"
	"cdef_data_generator/internal/infra/parquet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		"CDEF_REGISTERS", "CDEF_YEARS", "CDEF_NUM_ROWS", "CDEF_THREADS", "RAYON_NUM_THREADS",
		"CDEF_OUTPUT_PATH", "CDEF_INPUT_PATH", "CDEF_SCHEMA_DIR", "CDEF_MAPPINGS_DIR",
		"CDEF_SCHEDULE", "DATABASE_URL", "CDEF_SQLITE_PATH", "LOG_LEVEL", "ENVIRONMENT",
		"CDEF_MIN_PARENT_AGE", "CDEF_MAX_PARENT_AGE",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("CDEF_COHORT_MIN_BIRTHS", "50")
	t.Setenv("CDEF_COHORT_MAX_BIRTHS", "60")
	t.Setenv("LOG_LEVEL", "error")

	schemas := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(schemas, "akm.json"),
		[]byte(`{"columns":[{"name":"PNR"},{"name":"SOCIO13"},{"name":"VERSION"}]}`), 0o644))
	return schemas
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_Generate(t *testing.T) {
	schemas := setupEnv(t)
	out := t.TempDir()
	sqlitePath := filepath.Join(t.TempDir(), "cdef.db")

	_, err := execute(t, "--registers", "akm", "--years", "2019-2020", "-r", "25", "-t", "2",
		"--schemas", schemas, "-o", out, "--sqlite", sqlitePath)
	require.NoError(t, err)

	for _, year := range []string{"2019", "2020"} {
		tbl, err := parquet.ReadFile(t.Context(), filepath.Join(out, "akm", year+".parquet"))
		require.NoError(t, err)
		assert.Equal(t, 25, tbl.NumRows())
	}

	db, err := idb.NewSQLiteConnection(sqlitePath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "akm_2020"`).Scan(&n))
	assert.Equal(t, 25, n)
}

func TestRoot_EnvironmentDefaults(t *testing.T) {
	schemas := setupEnv(t)
	out := t.TempDir()
	t.Setenv("CDEF_REGISTERS", "akm")
	t.Setenv("CDEF_YEARS", "2021")
	t.Setenv("CDEF_NUM_ROWS", "5")
	t.Setenv("CDEF_SCHEMA_DIR", schemas)
	t.Setenv("CDEF_OUTPUT_PATH", out)

	_, err := execute(t)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "akm", "2021.parquet"))
	assert.NoError(t, err)
}

func TestRoot_Inspect(t *testing.T) {
	schemas := setupEnv(t)
	out := t.TempDir()
	_, err := execute(t, "--registers", "akm", "--years", "2020", "-r", "40", "--schemas", schemas, "-o", out)
	require.NoError(t, err)

	parts := t.TempDir()
	stdout, err := execute(t, "-i", filepath.Join(out, "akm"), "-o", parts, "-r", "40", "-t", "4")
	require.NoError(t, err)
	assert.Contains(t, stdout, "SOCIO13")
	assert.Contains(t, stdout, "shape: (40, 3)")

	files, err := parquet.Files(parts)
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

func TestRoot_ConfigurationErrors(t *testing.T) {
	schemas := setupEnv(t)

	t.Run("inverted years", func(t *testing.T) {
		_, err := execute(t, "--registers", "akm", "--years", "2021-2020", "--schemas", schemas, "-o", t.TempDir())
		assert.True(t, errors.Is(err, config.ErrInvalidYears))
	})

	t.Run("missing registers", func(t *testing.T) {
		_, err := execute(t, "--years", "2020")
		assert.True(t, errors.Is(err, config.ErrInvalid))
	})

	t.Run("zero threads", func(t *testing.T) {
		_, err := execute(t, "--registers", "akm", "--years", "2020", "-t", "0")
		assert.True(t, errors.Is(err, config.ErrInvalid))
	})
}
