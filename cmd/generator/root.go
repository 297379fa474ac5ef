package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"cdef_data_generator/internal/app"
	"cdef_data_generator/internal/domain/dataset"
	"cdef_data_generator/internal/domain/person"
	"cdef_data_generator/internal/infra/config"
	idb "cdef_data_generator/internal/infra/database"
	"cdef_data_generator/internal/infra/logger"
	"cdef_data_generator/internal/infra/mappings"
	"cdef_data_generator/internal/infra/parquet"
	"cdef_data_generator/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cdef-generator",
		Short: "Generate synthetic Danish register data as Parquet.",
		Long: `Generates fake register tables (bef, akm, idan, ind, uddf, lpr_adm, lpr_diag, ` +
			`lpr_bes, lpr3_kontakter, lpr3_diagnoser) whose person and contact identifiers ` +
			`are consistent across registers and years. With --input, existing Parquet data ` +
			`is read, previewed and optionally re-partitioned instead.`,
		SilenceUsage: true,
		RunE:         run,
	}

	f := cmd.Flags()
	f.StringSlice("registers", nil, "registers to generate (repeatable or comma separated) [CDEF_REGISTERS]")
	f.String("years", "", "year range START-END or a single year [CDEF_YEARS]")
	f.IntP("rows", "r", config.DefaultNumRows, "rows per register and year [CDEF_NUM_ROWS]")
	f.IntP("threads", "t", config.DefaultThreads, "worker goroutines [CDEF_THREADS, RAYON_NUM_THREADS]")
	f.StringP("output", "o", "", "output directory, or a .parquet file in inspect mode [CDEF_OUTPUT_PATH]")
	f.StringP("input", "i", "", "parquet file or directory to inspect [CDEF_INPUT_PATH]")
	f.String("schemas", config.DefaultSchemaDir, "directory of register schemas [CDEF_SCHEMA_DIR]")
	f.String("mappings", "", "directory overriding embedded mapping tables [CDEF_MAPPINGS_DIR]")
	f.String("schedule", "", "cron spec to regenerate on until interrupted [CDEF_SCHEDULE]")
	f.String("sqlite", "", "also load generated tables into this SQLite file [CDEF_SQLITE_PATH]")
	f.String("log-level", "info", "log level [LOG_LEVEL]")

	return cmd
}

// applyFlags overrides environment configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.AppConfig) {
	f := cmd.Flags()
	if f.Changed("registers") {
		regs, _ := f.GetStringSlice("registers")
		cfg.Registers = config.SplitList(strings.Join(regs, ","))
	}
	if f.Changed("years") {
		cfg.YearsSpec, _ = f.GetString("years")
	}
	if f.Changed("rows") {
		cfg.NumRows, _ = f.GetInt("rows")
	}
	if f.Changed("threads") {
		cfg.Threads, _ = f.GetInt("threads")
	}
	if f.Changed("output") {
		cfg.OutputPath, _ = f.GetString("output")
	}
	if f.Changed("input") {
		cfg.InputPath, _ = f.GetString("input")
	}
	if f.Changed("schemas") {
		cfg.SchemaDir, _ = f.GetString("schemas")
	}
	if f.Changed("mappings") {
		cfg.MappingsDir, _ = f.GetString("mappings")
	}
	if f.Changed("schedule") {
		cfg.Schedule, _ = f.GetString("schedule")
	}
	if f.Changed("sqlite") {
		cfg.SQLitePath, _ = f.GetString("sqlite")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg)
	log := logger.Component("main")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Inspect() {
		svc := app.NewInspectServiceImpl(cmd.OutOrStdout(), cfg.NumRows, cfg.Threads, logger.Component("inspect"))
		_, err := svc.Inspect(ctx, cfg.InputPath, cfg.OutputPath)
		return err
	}

	catalog, err := mappings.Load(cfg.MappingsDir)
	if err != nil {
		return fmt.Errorf("could not load mapping tables: %w", err)
	}

	sinks, closeSinks, err := openSinks(cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	generator := app.NewGeneratorServiceImpl(app.GeneratorOptions{
		Registers: cfg.Registers,
		Years:     cfg.Years,
		Rows:      cfg.NumRows,
		Threads:   cfg.Threads,
		SchemaDir: cfg.SchemaDir,
		PersonOptions: []person.Option{
			person.WithParentAgeWindow(cfg.MinParentAge, cfg.MaxParentAge),
			person.WithCohortBirths(cfg.CohortMinBirths, cfg.CohortMaxBirths),
		},
	}, catalog, sinks, logger.Component("generator"))

	if cfg.Schedule == "" {
		_, err := generator.Run(ctx)
		return err
	}

	regen := scheduler.NewRegenerationScheduler(cfg.Schedule, func(ctx context.Context) error {
		_, err := generator.Run(ctx)
		return err
	}, 0, logger.Component("scheduler"))
	if err := regen.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done() // Block until a signal is received
	log.Info("Shutting down application...")
	regen.Stop()
	log.Info("Application shut down gracefully.")
	return nil
}

// openSinks returns the Parquet sink plus any configured database sinks.
func openSinks(cfg *config.AppConfig, log *logrus.Entry) ([]dataset.Sink, func(), error) {
	sinks := []dataset.Sink{parquet.NewSink(cfg.GenerateOutput())}
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("could not connect to database: %w", err)
		}
		closers = append(closers, db.Close)
		sinks = append(sinks, idb.NewTableRepository(db, idb.Postgres))
		log.Info("Database connection established successfully.")
	}

	if cfg.SQLitePath != "" {
		db, err := idb.NewSQLiteConnection(cfg.SQLitePath)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("could not open sqlite database: %w", err)
		}
		closers = append(closers, db.Close)
		sinks = append(sinks, idb.NewTableRepository(db, idb.SQLite))
		log.WithField("path", cfg.SQLitePath).Info("SQLite database opened.")
	}

	return sinks, closeAll, nil
}
