package contact

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Pool hands out contact ids and remembers which person each belongs to.
// Every operation holds the pool lock for its whole duration.
type Pool struct {
	mu sync.Mutex

	contacts map[string]*Contact
	// ids lists linked contacts in allocation order.
	ids      []string
	byPerson map[string][]string
	next     uint64

	rng *rand.Rand
}

// Option configures a Pool.
type Option func(*Pool)

// WithRand replaces the pool's random source.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pool) {
		if rng != nil {
			p.rng = rng
		}
	}
}

func NewPool(opts ...Option) *Pool {
	p := &Pool{
		contacts: make(map[string]*Contact),
		byPerson: make(map[string][]string),
		next:     1,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetOrCreate returns one of personID's existing contacts, picked uniformly
// and regardless of year. A person without contacts gets a new one dated
// inside year.
func (p *Pool) GetOrCreate(personID string, year int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ids := p.byPerson[personID]; len(ids) > 0 {
		return ids[p.rng.IntN(len(ids))]
	}

	c := &Contact{
		ID:          NextContactID(&p.next),
		PersonID:    personID,
		ContactDate: time.Date(year, time.Month(1+p.rng.IntN(12)), 1+p.rng.IntN(28), 0, 0, 0, 0, time.UTC),
	}
	p.contacts[c.ID] = c
	p.ids = append(p.ids, c.ID)
	p.byPerson[personID] = append(p.byPerson[personID], c.ID)
	return c.ID
}

// MintUnlinked allocates a contact id without any person association.
// Unlinked ids are not visible to PickAnyExisting.
func (p *Pool) MintUnlinked() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return NextContactID(&p.next)
}

// PickAnyExisting returns an arbitrary linked contact id. Calling it on a
// pool without linked contacts is a column ordering bug and panics.
func (p *Pool) PickAnyExisting() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.ids) == 0 {
		panic("contact: PickAnyExisting called on an empty pool")
	}
	return p.ids[p.rng.IntN(len(p.ids))]
}

// Get returns a copy of the linked contact registered under id.
func (p *Pool) Get(id string) (Contact, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.contacts[id]
	if !ok {
		return Contact{}, false
	}
	return *c, true
}

// ForPerson lists the contact ids linked to personID in allocation order.
func (p *Pool) ForPerson(personID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.byPerson[personID]...)
}

// Len returns the number of linked contacts.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids)
}
