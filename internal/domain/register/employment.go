package register

import (
	"math/rand/v2"
	"strconv"

	"cdef_data_generator/internal/domain/dataset"
)

// stillingCodes are the occupation codes used by idan STILL.
var stillingCodes = []string{
	"01", "02", "03", "04", "05", "11", "12", "13", "14", "19", "20", "31", "32", "33", "34",
	"35", "36", "37", "40", "41", "42", "43", "45", "46", "47", "48", "49", "50", "51", "52",
	"55", "71", "72", "73", "74", "75", "76", "77", "90", "91", "92", "93", "94", "95", "96",
	"97", "98",
}

// adultPNR picks persons of working age in the frame's year from the pool.
func adultPNR(f *Frame) (dataset.Column, error) {
	f.env.Persons.EnsureYearGenerated(f.Year)
	return nullable(f, dataset.String, func(_ *rand.Rand, _ int) (any, bool) {
		return f.env.Persons.RandomAdultID(f.Year)
	})
}

func akmRules() *Ruleset {
	rules := map[string]Rule{
		"PNR":     adultPNR,
		"CPRTJEK": choice("V", "U"),
		"CPRTYPE": choice("A", "B", "C", "D", "E", "F"),
		"SENR":    padded(6, 100_000, 999_999),
		"VERSION": version,
	}
	withRules(rules, mappingKeys("socio13", dataset.Int32), "SOCIO", "SOCIO02", "SOCIO13")
	return &Ruleset{Name: akm, Marker: "SOCIO13", rules: rules}
}

func idanRules() *Ruleset {
	rules := map[string]Rule{
		"PNR":     adultPNR,
		"JOBKAT":  mappingKeys("jobkat", dataset.Int8),
		"JOBLON":  floatRange(15_000, 100_000),
		"STILL":   choice(stillingCodes...),
		"TILKNYT": mappingKeys("tilknyt", dataset.Int8),
	}
	withRules(rules, padded(8, 10_000_000, 99_999_999), "ARBGNR", "ARBNR", "CVRNR", "LBNR")
	withRules(rules, choice("V", "U"), "CPRTJEK", "CPRTYPE")
	return &Ruleset{Name: idan, Marker: "JOBKAT", rules: rules}
}

func indRules() *Ruleset {
	rules := map[string]Rule{
		"PNR":            adultPNR,
		"BESKST13":       mappingKeys("beskst13", dataset.Int32),
		"PRE_SOCIO":      mappingKeys("pre_socio", dataset.Int32),
		"LOENMV_13":      floatRange(0, 1_000_000),
		"PERINDKIALT_13": floatRange(0, 2_000_000),
		"VERSION":        version,
	}
	withRules(rules, choice("V", "U"), "CPRTJEK", "CPRTYPE")
	return &Ruleset{Name: ind, Marker: "BESKST13", rules: rules}
}

// isced draws an education level 1-9.
func isced(f *Frame) (dataset.Column, error) {
	return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
		return strconv.Itoa(1 + rng.IntN(9))
	})
}

func uddfRules() *Ruleset {
	rules := map[string]Rule{
		"PNR":      adultPNR,
		"HFAUDD":   isced,
		"HF_KILDE": choice("A", "B", "C", "D", "E"),
		"INSTNR":   intRange(dataset.Int8, 1, 100),
		"VERSION":  version,
	}
	withRules(rules, choice("V", "U"), "CPRTJEK", "CPRTYPE")
	withRules(rules, dateIn(1900, 2023, "20060102"), "HF_VFRA", "HF_VTIL")
	return &Ruleset{Name: uddf, Marker: "HFAUDD", rules: rules}
}
