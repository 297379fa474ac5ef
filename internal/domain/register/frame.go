package register

import (
	"context"
	"fmt"
	"math/rand/v2"

	"cdef_data_generator/internal/domain/contact"
	"cdef_data_generator/internal/domain/dataset"
	"cdef_data_generator/internal/domain/person"

	"golang.org/x/sync/errgroup"
)

var ErrUnsupportedColumn = fmt.Errorf("unsupported column")

// batchRows is the number of rows one worker generates per task.
const batchRows = 2048

// Mappings resolves code tables used by column rules.
type Mappings interface {
	Keys(table string) ([]string, error)
	Label(table, key string) (string, bool)
}

// Env carries the run-wide state shared by every table: the identity pools,
// the code tables and the worker count.
type Env struct {
	Persons  *person.Pool
	Contacts *contact.Pool
	Mappings Mappings
	Threads  int
}

// Frame builds one table. Columns are memoized by name so that derived
// columns (KOEN, FAR_ID, RECNUM, ...) read the same identifiers as the
// column they derive from, whatever the schema order.
type Frame struct {
	ctx     context.Context
	env     *Env
	ruleset *Ruleset
	types   map[string]string

	Year int
	Rows int

	built  map[string]dataset.Column
	births []birth
}

func newFrame(ctx context.Context, env *Env, ruleset *Ruleset, schema *Schema, year, rows int) *Frame {
	types := make(map[string]string, len(schema.Columns))
	for _, c := range schema.Columns {
		types[c.Name] = c.Type
	}
	return &Frame{
		ctx:     ctx,
		env:     env,
		ruleset: ruleset,
		types:   types,
		Year:    year,
		Rows:    rows,
		built:   make(map[string]dataset.Column),
	}
}

// Column returns the named column, generating it on first use.
func (f *Frame) Column(name string) (dataset.Column, error) {
	if c, ok := f.built[name]; ok {
		return c, nil
	}

	rule, ok := f.ruleset.rules[name]
	if !ok {
		rule, ok = genericRule(f.types[name])
	}
	if !ok {
		return dataset.Column{}, fmt.Errorf("%s column %q: %w", f.ruleset.Name, name, ErrUnsupportedColumn)
	}

	c, err := rule(f)
	if err != nil {
		return dataset.Column{}, fmt.Errorf("generate %s column %q: %w", f.ruleset.Name, name, err)
	}
	c.Name = name
	f.built[name] = c
	return c, nil
}

// strings returns a string column's values; nulls become "".
func (f *Frame) strings(name string) ([]string, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		if s, ok := v.(string); ok {
			out[i] = s
		}
	}
	return out, nil
}

// ints returns an integer column widened to int; nulls become 0.
func (f *Frame) ints(name string) ([]int, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(c.Values))
	for i, v := range c.Values {
		switch n := v.(type) {
		case int8:
			out[i] = int(n)
		case int16:
			out[i] = int(n)
		case int32:
			out[i] = int(n)
		case int64:
			out[i] = int(n)
		}
	}
	return out, nil
}

// generate fills f.Rows values in parallel batches. Each batch gets its own
// random source; pool calls inside gen serialize on the pool lock.
func generate[T any](f *Frame, gen func(rng *rand.Rand, row int) T) ([]T, error) {
	values := make([]T, f.Rows)

	g, ctx := errgroup.WithContext(f.ctx)
	g.SetLimit(max(1, f.env.Threads))
	for start := 0; start < f.Rows; start += batchRows {
		end := min(start+batchRows, f.Rows)
		seed1, seed2 := rand.Uint64(), rand.Uint64()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed1, seed2))
			for i := start; i < end; i++ {
				values[i] = gen(rng, i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// column wraps generate into an untyped dataset column.
func column[T any](f *Frame, typ dataset.ColumnType, gen func(rng *rand.Rand, row int) T) (dataset.Column, error) {
	values, err := generate(f, gen)
	if err != nil {
		return dataset.Column{}, err
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return dataset.Column{Type: typ, Values: out}, nil
}

// nullable is like column but maps ok == false to a null.
func nullable(f *Frame, typ dataset.ColumnType, gen func(rng *rand.Rand, row int) (any, bool)) (dataset.Column, error) {
	return column(f, typ, func(rng *rand.Rand, row int) any {
		if v, ok := gen(rng, row); ok {
			return v
		}
		return nil
	})
}

// Generate builds the table for one register and year in schema column order.
func Generate(ctx context.Context, env *Env, schema *Schema, year, rows int) (*dataset.Table, error) {
	ruleset := Resolve(schema.Register, schema)
	f := newFrame(ctx, env, ruleset, schema, year, rows)

	columns := make([]dataset.Column, 0, len(schema.Columns))
	for _, def := range schema.Columns {
		c, err := f.Column(def.Name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return dataset.NewTable(columns...)
}
