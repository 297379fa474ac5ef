package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{
		"CDEF_REGISTERS", "CDEF_YEARS", "CDEF_NUM_ROWS", "CDEF_THREADS", "RAYON_NUM_THREADS",
		"CDEF_OUTPUT_PATH", "CDEF_INPUT_PATH", "CDEF_SCHEMA_DIR", "CDEF_MAPPINGS_DIR",
		"CDEF_MIN_PARENT_AGE", "CDEF_MAX_PARENT_AGE", "CDEF_COHORT_MIN_BIRTHS", "CDEF_COHORT_MAX_BIRTHS",
		"CDEF_SCHEDULE", "DATABASE_URL", "CDEF_SQLITE_PATH", "LOG_LEVEL", "ENVIRONMENT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, DefaultNumRows, cfg.NumRows)
		assert.Equal(t, DefaultThreads, cfg.Threads)
		assert.Equal(t, DefaultSchemaDir, cfg.SchemaDir)
		assert.Equal(t, DefaultOutputPath, cfg.GenerateOutput())
		assert.Equal(t, DefaultMinParentAge, cfg.MinParentAge)
		assert.Equal(t, DefaultCohortMaxBirths, cfg.CohortMaxBirths)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "development", cfg.Environment)
		assert.False(t, cfg.Inspect())
	})

	t.Run("environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CDEF_REGISTERS", "bef, akm,,lpr_adm")
		t.Setenv("CDEF_YEARS", "2000-2002")
		t.Setenv("CDEF_NUM_ROWS", "500")
		t.Setenv("RAYON_NUM_THREADS", "4")
		t.Setenv("LOG_LEVEL", "DEBUG")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"bef", "akm", "lpr_adm"}, cfg.Registers)
		assert.Equal(t, 500, cfg.NumRows)
		assert.Equal(t, 4, cfg.Threads)
		assert.Equal(t, "debug", cfg.LogLevel)

		require.NoError(t, cfg.Validate())
		assert.Equal(t, []int{2000, 2001, 2002}, cfg.Years)
	})

	t.Run("CDEF_THREADS wins over RAYON_NUM_THREADS", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CDEF_THREADS", "2")
		t.Setenv("RAYON_NUM_THREADS", "8")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Threads)
	})

	t.Run("malformed number", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CDEF_NUM_ROWS", "many")
		_, err := Load()
		assert.ErrorContains(t, err, "CDEF_NUM_ROWS")
	})
}

func TestParseYears(t *testing.T) {
	tests := []struct {
		spec    string
		want    []int
		wantErr bool
	}{
		{spec: "2020", want: []int{2020}},
		{spec: "2018-2020", want: []int{2018, 2019, 2020}},
		{spec: " 2019 - 2019 ", want: []int{2019}},
		{spec: "2020-2018", wantErr: true},
		{spec: "20x0-2021", wantErr: true},
		{spec: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseYears(tt.spec)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidYears))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			Registers:       []string{"bef"},
			YearsSpec:       "2020",
			NumRows:         10,
			Threads:         1,
			MinParentAge:    18,
			MaxParentAge:    50,
			CohortMinBirths: 10,
			CohortMaxBirths: 20,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"zero rows", func(c *AppConfig) { c.NumRows = 0 }},
		{"zero threads", func(c *AppConfig) { c.Threads = 0 }},
		{"inverted parent window", func(c *AppConfig) { c.MinParentAge = 60 }},
		{"inverted cohort", func(c *AppConfig) { c.CohortMinBirths = 30 }},
		{"no registers", func(c *AppConfig) { c.Registers = nil }},
		{"no years", func(c *AppConfig) { c.YearsSpec = "" }},
		{"bad years", func(c *AppConfig) { c.YearsSpec = "2021-2020" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("inspect mode needs no registers", func(t *testing.T) {
		cfg := valid()
		cfg.Registers, cfg.YearsSpec, cfg.InputPath = nil, "", "data"
		assert.NoError(t, cfg.Validate())
	})
}
