package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"
)

var (
	ErrInvalidYears = fmt.Errorf("invalid year range")
	ErrInvalid      = fmt.Errorf("invalid configuration")
)

const (
	DefaultNumRows         = 10000
	DefaultThreads         = 1
	DefaultOutputPath      = "output"
	DefaultSchemaDir       = "schemas"
	DefaultMinParentAge    = 18
	DefaultMaxParentAge    = 50
	DefaultCohortMinBirths = 55000
	DefaultCohortMaxBirths = 65000
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Registers  []string
	YearsSpec  string // START-END or a single year
	Years      []int  // Filled by Validate
	NumRows    int
	Threads    int
	OutputPath string // Empty means the default in generate mode and no rewrite in inspect mode
	InputPath  string

	SchemaDir   string
	MappingsDir string

	MinParentAge    int
	MaxParentAge    int
	CohortMinBirths int
	CohortMaxBirths int

	Schedule    string // Cron spec for repeated generation
	DatabaseURL string
	SQLitePath  string

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Registers:   SplitList(os.Getenv("CDEF_REGISTERS")),
		YearsSpec:   strings.TrimSpace(os.Getenv("CDEF_YEARS")),
		OutputPath:  os.Getenv("CDEF_OUTPUT_PATH"),
		InputPath:   os.Getenv("CDEF_INPUT_PATH"),
		SchemaDir:   os.Getenv("CDEF_SCHEMA_DIR"),
		MappingsDir: os.Getenv("CDEF_MAPPINGS_DIR"),
		Schedule:    os.Getenv("CDEF_SCHEDULE"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("CDEF_SQLITE_PATH"),
	}
	if cfg.SchemaDir == "" {
		cfg.SchemaDir = DefaultSchemaDir
	}

	var err error
	if cfg.NumRows, err = envInt("CDEF_NUM_ROWS", DefaultNumRows); err != nil {
		return nil, err
	}

	threadsVar := "CDEF_THREADS"
	if os.Getenv(threadsVar) == "" {
		threadsVar = "RAYON_NUM_THREADS"
	}
	if cfg.Threads, err = envInt(threadsVar, DefaultThreads); err != nil {
		return nil, err
	}

	if cfg.MinParentAge, err = envInt("CDEF_MIN_PARENT_AGE", DefaultMinParentAge); err != nil {
		return nil, err
	}
	if cfg.MaxParentAge, err = envInt("CDEF_MAX_PARENT_AGE", DefaultMaxParentAge); err != nil {
		return nil, err
	}
	if cfg.CohortMinBirths, err = envInt("CDEF_COHORT_MIN_BIRTHS", DefaultCohortMinBirths); err != nil {
		return nil, err
	}
	if cfg.CohortMaxBirths, err = envInt("CDEF_COHORT_MAX_BIRTHS", DefaultCohortMaxBirths); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

func envInt(name string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseYears expands "START-END" (inclusive) or "YEAR" into a year list.
func ParseYears(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	startRaw, endRaw, isRange := strings.Cut(spec, "-")
	if !isRange {
		endRaw = startRaw
	}

	start, err := strconv.Atoi(strings.TrimSpace(startRaw))
	if err != nil {
		return nil, fmt.Errorf("%q: %w: expected START-END", spec, ErrInvalidYears)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endRaw))
	if err != nil {
		return nil, fmt.Errorf("%q: %w: expected START-END", spec, ErrInvalidYears)
	}
	if start > end {
		return nil, fmt.Errorf("%q: %w: start year after end year", spec, ErrInvalidYears)
	}

	years := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years, nil
}

// Inspect reports whether the run reads existing Parquet data instead of
// generating new tables.
func (c *AppConfig) Inspect() bool {
	return c.InputPath != ""
}

// GenerateOutput is the output directory used in generate mode.
func (c *AppConfig) GenerateOutput() string {
	if c.OutputPath == "" {
		return DefaultOutputPath
	}
	return c.OutputPath
}

// Validate checks the final configuration, after flag overrides, and parses
// the year range.
func (c *AppConfig) Validate() error {
	if c.NumRows <= 0 {
		return fmt.Errorf("%w: number of rows must be positive, got %d", ErrInvalid, c.NumRows)
	}
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalid, c.Threads)
	}
	if c.MinParentAge < 1 || c.MinParentAge > c.MaxParentAge {
		return fmt.Errorf("%w: parent age window [%d, %d]", ErrInvalid, c.MinParentAge, c.MaxParentAge)
	}
	if c.CohortMinBirths < 1 || c.CohortMinBirths > c.CohortMaxBirths {
		return fmt.Errorf("%w: cohort births [%d, %d]", ErrInvalid, c.CohortMinBirths, c.CohortMaxBirths)
	}

	if c.Inspect() {
		return nil
	}

	if len(c.Registers) == 0 {
		return fmt.Errorf("%w: registers are required (CDEF_REGISTERS or --registers)", ErrInvalid)
	}
	if c.YearsSpec == "" {
		return fmt.Errorf("%w: years are required (CDEF_YEARS or --years)", ErrInvalid)
	}
	years, err := ParseYears(c.YearsSpec)
	if err != nil {
		return err
	}
	c.Years = years
	return nil
}
