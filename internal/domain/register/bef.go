package register

import (
	"math/rand/v2"
	"time"

	"cdef_data_generator/internal/domain/dataset"
	"cdef_data_generator/internal/domain/person"
)

// maxAge bounds the birth years drawn for bef rows.
const maxAge = 100

type birth struct {
	date time.Time
	id   string
}

// birthsFor draws one birth date per row and registers a person for each.
// PNR, FOED_DAG and ALDER all read from this single draw.
func (f *Frame) birthsFor() ([]birth, error) {
	if f.births != nil {
		return f.births, nil
	}
	births, err := generate(f, func(rng *rand.Rand, _ int) birth {
		date := randomDate(rng, f.Year-maxAge+rng.IntN(maxAge+1))
		return birth{date: date, id: f.env.Persons.GetOrCreateForBirthDate(date)}
	})
	if err != nil {
		return nil, err
	}
	f.births = births
	return births, nil
}

func befPNR(f *Frame) (dataset.Column, error) {
	births, err := f.birthsFor()
	if err != nil {
		return dataset.Column{}, err
	}
	values := make([]any, len(births))
	for i, b := range births {
		values[i] = b.id
	}
	return dataset.Column{Type: dataset.String, Values: values}, nil
}

func befBirthDate(f *Frame) (dataset.Column, error) {
	births, err := f.birthsFor()
	if err != nil {
		return dataset.Column{}, err
	}
	values := make([]any, len(births))
	for i, b := range births {
		values[i] = b.date.Format(time.DateOnly)
	}
	return dataset.Column{Type: dataset.String, Values: values}, nil
}

func befAge(f *Frame) (dataset.Column, error) {
	births, err := f.birthsFor()
	if err != nil {
		return dataset.Column{}, err
	}
	values := make([]any, len(births))
	for i, b := range births {
		values[i] = int32(f.Year - b.date.Year())
	}
	return dataset.Column{Type: dataset.Int32, Values: values}, nil
}

func befGender(f *Frame) (dataset.Column, error) {
	ids, err := f.strings("PNR")
	if err != nil {
		return dataset.Column{}, err
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = string(person.GenderFromPNR(id))
	}
	return dataset.Column{Type: dataset.String, Values: values}, nil
}

// befParent links each row's person to a mother or father, creating the
// parent on first request.
func befParent(mother bool) Rule {
	return func(f *Frame) (dataset.Column, error) {
		ids, err := f.strings("PNR")
		if err != nil {
			return dataset.Column{}, err
		}
		return nullable(f, dataset.String, func(_ *rand.Rand, row int) (any, bool) {
			motherID, fatherID, ok := f.env.Persons.ResolveParents(ids[row])
			if !ok {
				return nil, false
			}
			if mother {
				return motherID, true
			}
			return fatherID, true
		})
	}
}

// spouseProbability is the chance that a person of the given age is
// registered with a spouse or partner.
func spouseProbability(age int) float64 {
	switch {
	case age < 18:
		return 0
	case age <= 25:
		return 0.1
	case age <= 35:
		return 0.5
	case age <= 60:
		return 0.7
	default:
		return 0.6
	}
}

// befSpouse mints a spouse born within five years of the row's person.
func befSpouse(f *Frame) (dataset.Column, error) {
	ages, err := f.ints("ALDER")
	if err != nil {
		return dataset.Column{}, err
	}
	return nullable(f, dataset.String, func(rng *rand.Rand, row int) (any, bool) {
		age := ages[row]
		if rng.Float64() >= spouseProbability(age) {
			return nil, false
		}
		year := f.Year - age - (rng.IntN(11) - 5)
		return f.env.Persons.GetOrCreateForBirthDate(randomDate(rng, year)), true
	})
}

// befCivilStatus derives CIVST from age: minors are unmarried, young adults
// mostly so, everyone else is drawn from all statuses.
func befCivilStatus(f *Frame) (dataset.Column, error) {
	ages, err := f.ints("ALDER")
	if err != nil {
		return dataset.Column{}, err
	}
	return column(f, dataset.String, func(rng *rand.Rand, row int) string {
		var key string
		switch age := ages[row]; {
		case age < 18:
			key = "U"
		case age <= 24:
			key = "U"
			if rng.Float64() >= 0.8 {
				key = "G"
			}
		default:
			key = [...]string{"U", "G", "F", "E"}[rng.IntN(4)]
		}
		if label, ok := f.env.Mappings.Label("civst", key); ok {
			return label
		}
		return key
	})
}

func befRules() *Ruleset {
	rules := map[string]Rule{
		"PNR":          befPNR,
		"FOED_DAG":     befBirthDate,
		"ALDER":        befAge,
		"KOEN":         befGender,
		"MOR_ID":       befParent(true),
		"FAR_ID":       befParent(false),
		"CIVST":        befCivilStatus,
		"FM_MARK":      mappingKeys("fm_mark", dataset.Int8),
		"HUSTYPE":      mappingKeys("hustype", dataset.Int8),
		"PLADS":        mappingKeys("plads", dataset.Int8),
		"REG":          mappingKeys("reg", dataset.Int8),
		"STATSB":       mappingKeys("statsb", dataset.Int32),
		"KOM":          intRange(dataset.Int16, 101, 851),
		"FAMILIE_ID":   padded(10, 100_000_000, 999_999_999),
		"FAMILIE_TYPE": intRange(dataset.Int16, 1, 10),
		"BOP_VFRA":     dateIn(1900, 2023, time.DateOnly),
		"IE_TYPE":      choice("I", "E"),
		"OPR_LAND":     padded(3, 1, 999),
		"VERSION":      version,
	}
	withRules(rules, befSpouse, "AEGTE_ID", "E_FAELLE_ID")
	withRules(rules, intRange(dataset.Int8, 0, 100), "ANTBOERNF", "ANTBOERNH", "ANTPERSF", "ANTPERSH")
	withRules(rules, intRange(dataset.Int8, 0, 2), "CPRTJEK", "CPRTYPE")
	return &Ruleset{Name: bef, rules: rules}
}
