package register

import (
	"fmt"
	"math/rand/v2"

	"cdef_data_generator/internal/domain/dataset"
)

// scdShare is the fraction of diagnoses drawn from the scd table.
const scdShare = 0.1

func letter(rng *rand.Rand) byte {
	return byte('A' + rng.IntN(26))
}

// icd10Code formats an LPR2 style code such as "K35".
func icd10Code(rng *rand.Rand) string {
	return fmt.Sprintf("%c%02d", letter(rng), rng.IntN(100))
}

// sksCode formats an LPR3 style SKS diagnosis code such as "DK358" or
// "DK35B". A trailing zero subcode is dropped.
func sksCode(rng *rand.Rand) string {
	chapter := letter(rng)
	category := rng.IntN(100)
	sub := rng.IntN(10)

	var extra string
	if rng.Float64() < 0.3 {
		extra = string(letter(rng))
	} else {
		extra = fmt.Sprint(rng.IntN(10))
	}

	switch {
	case sub == 0 && extra == "0":
		return fmt.Sprintf("D%c%02d", chapter, category)
	case extra == "0":
		return fmt.Sprintf("D%c%02d%d", chapter, category, sub)
	default:
		return fmt.Sprintf("D%c%02d%d%s", chapter, category, sub, extra)
	}
}

// diagnosis mixes generated codes with keys of the scd table. The sks
// variant prefixes scd keys with "D" like the generated SKS codes.
func diagnosis(sks bool) Rule {
	return func(f *Frame) (dataset.Column, error) {
		scd, err := f.env.Mappings.Keys("scd")
		if err != nil {
			return dataset.Column{}, err
		}
		return column(f, dataset.String, func(rng *rand.Rand, _ int) string {
			if len(scd) > 0 && rng.Float64() < scdShare {
				code := scd[rng.IntN(len(scd))]
				if sks {
					return "D" + code
				}
				return code
			}
			if sks {
				return sksCode(rng)
			}
			return icd10Code(rng)
		})
	}
}
