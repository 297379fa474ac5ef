package person

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// maxParityDraws bounds the rejection sampling of the PNR suffix. The expected
// number of draws is two.
const maxParityDraws = 64

// EncodePNR builds a DDMMYY-SXXX person number. S is a century marker drawn
// from a range chosen by the birth year; the parity of XXX encodes gender
// (odd for male, even for female).
func EncodePNR(birthDate time.Time, gender Gender, rng *rand.Rand) string {
	year := birthDate.Year()
	lo, hi := centuryDigitRange(year)
	seventh := lo + rng.IntN(hi-lo)

	want := 0
	if gender == Male {
		want = 1
	}

	suffix := rng.IntN(999)
	for i := 1; suffix%2 != want && i < maxParityDraws; i++ {
		suffix = rng.IntN(999)
	}
	if suffix%2 != want {
		suffix ^= 1
	}

	return fmt.Sprintf("%02d%02d%02d-%d%03d",
		birthDate.Day(), int(birthDate.Month()), year%100, seventh, suffix)
}

// centuryDigitRange returns the half-open range [lo, hi) of the century marker digit.
func centuryDigitRange(year int) (int, int) {
	switch year / 100 {
	case 18:
		return 5, 8
	case 19:
		if year < 1937 {
			return 0, 4
		}
		return 4, 10
	case 20:
		return 0, 4
	default:
		return 4, 10
	}
}

// GenderFromPNR decodes gender from the parity of the final digit.
// Malformed ids decode as female.
func GenderFromPNR(id string) Gender {
	if id == "" {
		return Female
	}
	last := id[len(id)-1]
	if last >= '0' && last <= '9' && (last-'0')%2 == 1 {
		return Male
	}
	return Female
}
