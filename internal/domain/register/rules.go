package register

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"cdef_data_generator/internal/domain/dataset"
)

// Register names.
const (
	bef           = "bef"
	akm           = "akm"
	idan          = "idan"
	ind           = "ind"
	uddf          = "uddf"
	lprAdm        = "lpr_adm"
	lprDiag       = "lpr_diag"
	lprBes        = "lpr_bes"
	lpr3Kontakter = "lpr3_kontakter"
	lpr3Diagnoser = "lpr3_diagnoser"
)

// Names lists the registers with a dedicated ruleset.
func Names() []string {
	return []string{bef, akm, idan, ind, uddf, lprAdm, lprDiag, lprBes, lpr3Kontakter, lpr3Diagnoser}
}

// Rule produces every value of one column for the frame's year and row count.
type Rule func(f *Frame) (dataset.Column, error)

// Ruleset maps the column names a register understands to their rules.
// Marker is a column whose presence identifies the register in a schema
// that is not named after it.
type Ruleset struct {
	Name   string
	Marker string
	rules  map[string]Rule
}

// Columns lists the column names the ruleset can generate.
func (r *Ruleset) Columns() []string {
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	return names
}

var registry = map[string]*Ruleset{}

// markerOrder is the order marker columns are tested in by Resolve.
var markerOrder []*Ruleset

func addRuleset(r *Ruleset) {
	registry[r.Name] = r
	if r.Marker != "" {
		markerOrder = append(markerOrder, r)
	}
}

func init() {
	addRuleset(befRules())
	addRuleset(akmRules())
	addRuleset(idanRules())
	addRuleset(indRules())
	addRuleset(uddfRules())
	addRuleset(lprAdmRules())
	addRuleset(lprDiagRules())
	addRuleset(lprBesRules())
	addRuleset(lpr3KontakterRules())
	addRuleset(lpr3DiagnoserRules())
}

// Lookup returns the ruleset registered under name.
func Lookup(name string) (*Ruleset, bool) {
	r, ok := registry[name]
	return r, ok
}

// Resolve picks the ruleset for a register. Unknown register names are
// matched by marker column, falling back to bef.
func Resolve(name string, schema *Schema) *Ruleset {
	if r, ok := registry[name]; ok {
		return r
	}
	if schema != nil {
		for _, r := range markerOrder {
			if schema.Has(r.Marker) {
				return r
			}
		}
	}
	return registry[bef]
}

// genericRule covers columns no ruleset knows about but whose schema entry
// declares a type.
func genericRule(typ string) (Rule, bool) {
	switch typ {
	case "string":
		return padded(10, 0, 1_000_000_000), true
	case "int":
		return intRange(dataset.Int32, 0, 100), true
	case "float":
		return floatRange(0, 1), true
	case "date":
		return dateIn(1900, 2023, time.DateOnly), true
	case "bool":
		return intRange(dataset.Int8, 0, 2), true
	}
	return nil, false
}

func intValue(typ dataset.ColumnType, n int) any {
	switch typ {
	case dataset.Int8:
		return int8(n)
	case dataset.Int16:
		return int16(n)
	case dataset.Int64:
		return int64(n)
	default:
		return int32(n)
	}
}

// choice draws uniformly from values.
func choice(values ...string) Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
			return values[rng.IntN(len(values))]
		})
	}
}

// intRange draws integers from [lo, hi).
func intRange(typ dataset.ColumnType, lo, hi int) Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, typ, func(rng *rand.Rand, _ int) any {
			return intValue(typ, lo+rng.IntN(hi-lo))
		})
	}
}

// floatRange draws floats from [lo, hi).
func floatRange(lo, hi float64) Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, dataset.Float64, func(rng *rand.Rand, _ int) float64 {
			return lo + rng.Float64()*(hi-lo)
		})
	}
}

// padded draws an integer from [lo, hi) and zero-pads it to width digits.
func padded(width, lo, hi int) Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
			return fmt.Sprintf("%0*d", width, lo+rng.IntN(hi-lo))
		})
	}
}

// mappingKeys draws uniformly from the keys of a code table. Non-string
// columns parse the keys as integers.
func mappingKeys(table string, typ dataset.ColumnType) Rule {
	return func(f *Frame) (dataset.Column, error) {
		keys, err := f.env.Mappings.Keys(table)
		if err != nil {
			return dataset.Column{}, err
		}
		if len(keys) == 0 {
			return dataset.Column{}, fmt.Errorf("mapping %q has no entries", table)
		}

		values := make([]any, len(keys))
		for i, k := range keys {
			if typ == dataset.String {
				values[i] = k
				continue
			}
			n, err := strconv.Atoi(k)
			if err != nil {
				return dataset.Column{}, fmt.Errorf("mapping %q key %q is not numeric: %w", table, k, err)
			}
			values[i] = intValue(typ, n)
		}

		return column(f, typ, func(rng *rand.Rand, _ int) any {
			return values[rng.IntN(len(values))]
		})
	}
}

// dateIn draws a date with year in [loYear, hiYear), month 1-12 and day 1-28.
func dateIn(loYear, hiYear int, layout string) Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
			return randomDate(rng, loYear+rng.IntN(hiYear-loYear)).Format(layout)
		})
	}
}

// dateInYear draws a date inside the frame's year.
func dateInYear(layout string) Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
			return randomDate(rng, f.Year).Format(layout)
		})
	}
}

// clock draws a time of day.
func clock() Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
			return fmt.Sprintf("%02d:%02d:%02d", rng.IntN(24), rng.IntN(60), rng.IntN(60))
		})
	}
}

// flag yields "1" with probability p and "0" otherwise.
func flag(p float64) Rule {
	return func(f *Frame) (dataset.Column, error) {
		return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
			if rng.Float64() < p {
				return "1"
			}
			return "0"
		})
	}
}

var version = padded(4, 2000, 2023)

func randomDate(rng *rand.Rand, year int) time.Time {
	return time.Date(year, time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
}

// withRules adds the same rule under several column names.
func withRules(rules map[string]Rule, rule Rule, names ...string) {
	for _, name := range names {
		rules[name] = rule
	}
}
