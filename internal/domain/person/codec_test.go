package person

import (
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pnrPattern = regexp.MustCompile(`^\d{6}-\d{4}$`)

func TestEncodePNR(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("layout follows birth date", func(t *testing.T) {
		id := EncodePNR(time.Date(1985, time.March, 7, 0, 0, 0, 0, time.UTC), Female, rng)
		require.Regexp(t, pnrPattern, id)
		assert.Equal(t, "070385-", id[:7])
	})

	t.Run("suffix parity matches gender", func(t *testing.T) {
		birth := time.Date(2001, time.December, 28, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 500; i++ {
			assert.Equal(t, Male, GenderFromPNR(EncodePNR(birth, Male, rng)))
			assert.Equal(t, Female, GenderFromPNR(EncodePNR(birth, Female, rng)))
		}
	})

	t.Run("century digit ranges", func(t *testing.T) {
		tests := []struct {
			year   int
			lo, hi byte
		}{
			{1850, '5', '7'},
			{1920, '0', '3'},
			{1936, '0', '3'},
			{1937, '4', '9'},
			{1999, '4', '9'},
			{2020, '0', '3'},
			{2150, '4', '9'},
		}
		for _, tt := range tests {
			birth := time.Date(tt.year, time.June, 15, 0, 0, 0, 0, time.UTC)
			for i := 0; i < 200; i++ {
				digit := EncodePNR(birth, Male, rng)[7]
				assert.GreaterOrEqual(t, digit, tt.lo, "year %d", tt.year)
				assert.LessOrEqual(t, digit, tt.hi, "year %d", tt.year)
			}
		}
	})
}

func TestGenderFromPNR(t *testing.T) {
	assert.Equal(t, Male, GenderFromPNR("150320-0001"))
	assert.Equal(t, Female, GenderFromPNR("150320-0002"))
	assert.Equal(t, Female, GenderFromPNR(""))
}
