// internal/app/generator_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cdef_data_generator/internal/domain/contact"
	"cdef_data_generator/internal/domain/dataset"
	"cdef_data_generator/internal/domain/person"
	"cdef_data_generator/internal/domain/register"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GeneratorService produces the configured registers for every configured year.
type GeneratorService interface {
	Run(ctx context.Context) (*RunReport, error)
}

// GeneratorOptions is what a generation run needs from configuration.
type GeneratorOptions struct {
	Registers []string
	Years     []int
	Rows      int
	Threads   int
	SchemaDir string
	// PersonOptions configure the person pool created for every run.
	PersonOptions []person.Option
}

// RunReport summarizes a finished run.
type RunReport struct {
	RunID    string
	Units    []dataset.Unit
	Persons  int
	Contacts int
	Duration time.Duration
}

type GeneratorServiceImpl struct {
	opts     GeneratorOptions
	mappings register.Mappings
	sinks    []dataset.Sink
	logger   *logrus.Entry
}

func NewGeneratorServiceImpl(
	opts GeneratorOptions,
	mappings register.Mappings,
	sinks []dataset.Sink,
	logger *logrus.Entry,
) *GeneratorServiceImpl {
	return &GeneratorServiceImpl{
		opts:     opts,
		mappings: mappings,
		sinks:    sinks,
		logger:   logger,
	}
}

// Run generates every (register, year) unit in configuration order with
// fresh identity pools shared by all units of the run. A register whose
// schema is missing is skipped and reported in the returned error; any other
// failure stops the run.
func (s *GeneratorServiceImpl) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{RunID: uuid.NewString()}
	log := s.logger.WithField("run_id", report.RunID)

	env := &register.Env{
		Persons:  person.NewPool(s.opts.PersonOptions...),
		Contacts: contact.NewPool(),
		Mappings: s.mappings,
		Threads:  s.opts.Threads,
	}

	log.WithFields(logrus.Fields{
		"registers": s.opts.Registers,
		"years":     s.opts.Years,
		"rows":      s.opts.Rows,
		"threads":   s.opts.Threads,
	}).Info("Starting generation run.")

	var skipped []error
	for _, name := range s.opts.Registers {
		schema, err := register.LoadSchema(s.opts.SchemaDir, name)
		if err != nil {
			log.WithField("register", name).WithError(err).Error("Skipping register.")
			skipped = append(skipped, err)
			continue
		}

		for _, year := range s.opts.Years {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			unit := dataset.Unit{Register: name, Year: year}
			if err := s.generateUnit(ctx, log, env, schema, unit); err != nil {
				return report, err
			}
			report.Units = append(report.Units, unit)
		}
	}

	report.Persons = env.Persons.Len()
	report.Contacts = env.Contacts.Len()
	report.Duration = time.Since(start)

	log.WithFields(logrus.Fields{
		"units":    len(report.Units),
		"persons":  report.Persons,
		"contacts": report.Contacts,
		"duration": report.Duration.String(),
	}).Info("Generation run finished.")

	return report, errors.Join(skipped...)
}

func (s *GeneratorServiceImpl) generateUnit(ctx context.Context, log *logrus.Entry, env *register.Env, schema *register.Schema, unit dataset.Unit) error {
	log = log.WithFields(logrus.Fields{"register": unit.Register, "year": unit.Year})
	start := time.Now()

	table, err := register.Generate(ctx, env, schema, unit.Year, s.opts.Rows)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", unit, err)
	}

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, unit, table); err != nil {
			return fmt.Errorf("failed to write %s to %s: %w", unit, sink.Name(), err)
		}
	}

	log.WithFields(logrus.Fields{
		"rows":     table.NumRows(),
		"columns":  len(table.Columns),
		"duration": time.Since(start).String(),
	}).Info("Generated unit.")
	return nil
}
