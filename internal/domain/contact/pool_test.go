package contact

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool() *Pool {
	return NewPool(WithRand(rand.New(rand.NewPCG(42, 43))))
}

func TestNextContactID(t *testing.T) {
	var counter uint64 = 7
	assert.Equal(t, "00000000000000000007", NextContactID(&counter))
	assert.Equal(t, "00000000000000000008", NextContactID(&counter))
	assert.Equal(t, uint64(9), counter)
}

func TestPool_GetOrCreate(t *testing.T) {
	t.Run("first call mints a contact dated in year", func(t *testing.T) {
		pool := newTestPool()
		id := pool.GetOrCreate("150320-0001", 2019)
		assert.Equal(t, "00000000000000000001", id)

		c, ok := pool.Get(id)
		require.True(t, ok)
		assert.Equal(t, "150320-0001", c.PersonID)
		assert.Equal(t, 2019, c.ContactDate.Year())
		assert.LessOrEqual(t, c.ContactDate.Day(), 28)
	})

	t.Run("later calls reuse the person's contacts in any year", func(t *testing.T) {
		pool := newTestPool()
		first := pool.GetOrCreate("010190-4001", 2015)
		for year := 2000; year < 2030; year++ {
			assert.Equal(t, first, pool.GetOrCreate("010190-4001", year))
		}
		assert.Equal(t, []string{first}, pool.ForPerson("010190-4001"))
		assert.Equal(t, 1, pool.Len())
	})

	t.Run("different persons get different contacts", func(t *testing.T) {
		pool := newTestPool()
		a := pool.GetOrCreate("a", 2020)
		b := pool.GetOrCreate("b", 2020)
		assert.NotEqual(t, a, b)
	})
}

func TestPool_IDsStrictlyIncrease(t *testing.T) {
	pool := newTestPool()
	var ids []string
	for i := 0; i < 50; i++ {
		if i%3 == 0 {
			ids = append(ids, pool.MintUnlinked())
			continue
		}
		ids = append(ids, pool.GetOrCreate(string(rune('A'+i)), 2021))
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}

	_, linked := pool.Get(ids[0])
	assert.False(t, linked, "unlinked ids carry no contact record")
}

func TestPool_PickAnyExisting(t *testing.T) {
	pool := newTestPool()
	pool.MintUnlinked()
	assert.Panics(t, func() { pool.PickAnyExisting() })

	a := pool.GetOrCreate("a", 2020)
	b := pool.GetOrCreate("b", 2020)
	for i := 0; i < 20; i++ {
		assert.Contains(t, []string{a, b}, pool.PickAnyExisting())
	}
}

func TestPool_Concurrent(t *testing.T) {
	pool := newTestPool()
	var wg sync.WaitGroup
	const workers = 16
	results := make([][]string, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				results[w] = append(results[w], pool.GetOrCreate("shared", 2020))
				pool.MintUnlinked()
			}
		}(w)
	}
	wg.Wait()

	owned := pool.ForPerson("shared")
	require.Len(t, owned, 1)
	for _, r := range results {
		for _, id := range r {
			assert.Equal(t, owned[0], id)
		}
	}
}
