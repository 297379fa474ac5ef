package person

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultMinParentAge = 18
	DefaultMaxParentAge = 50
	DefaultMinBirths    = 55000
	DefaultMaxBirths    = 65000

	// maxCollisionDraws bounds the redraws of an id taken by a person born
	// on another date.
	maxCollisionDraws = 64
)

// Pool is the registry of synthesized persons for one run. All operations
// take the pool lock for their whole duration.
type Pool struct {
	mu sync.Mutex

	persons map[string]*Person
	ids     []string
	// cohorts indexes ids by gender and birth year for parent eligibility.
	cohorts map[Gender]map[int][]string
	years   map[int]struct{}

	minParentAge int
	maxParentAge int
	minBirths    int
	maxBirths    int

	rng *rand.Rand
}

// Option configures a Pool.
type Option func(*Pool)

// WithParentAgeWindow sets the inclusive age range eligible for parenthood.
func WithParentAgeWindow(minAge, maxAge int) Option {
	return func(p *Pool) {
		if minAge > 0 && minAge <= maxAge {
			p.minParentAge, p.maxParentAge = minAge, maxAge
		}
	}
}

// WithCohortBirths sets the inclusive range of births synthesized per year.
func WithCohortBirths(minBirths, maxBirths int) Option {
	return func(p *Pool) {
		if minBirths >= 0 && minBirths <= maxBirths {
			p.minBirths, p.maxBirths = minBirths, maxBirths
		}
	}
}

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
		persons:      make(map[string]*Person),
		cohorts:      map[Gender]map[int][]string{Male: {}, Female: {}},
		years:        make(map[int]struct{}),
		minParentAge: DefaultMinParentAge,
		maxParentAge: DefaultMaxParentAge,
		minBirths:    DefaultMinBirths,
		maxBirths:    DefaultMaxBirths,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParentAgeWindow returns the inclusive adult age window.
func (p *Pool) ParentAgeWindow() (int, int) {
	return p.minParentAge, p.maxParentAge
}

// EnsureYearGenerated synthesizes the birth cohort for year together with a
// parent generation. Repeated calls for the same year are no-ops.
func (p *Pool) EnsureYearGenerated(year int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generateYear(year)
}

// IsYearGenerated reports whether the cohort for year already exists.
func (p *Pool) IsYearGenerated(year int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.years[year]
	return ok
}

// GetOrCreateForBirthDate ensures the birth year's cohort exists and then
// mints a new person born on birthDate. Despite the name it never reuses an
// existing person: every call yields a fresh id, which spouse synthesis relies on.
// An id already held by someone born on another date (the century markers of
// 1900-1936 and 2000-2036 overlap) is redrawn, so the returned person always
// carries birthDate.
func (p *Pool) GetOrCreateForBirthDate(birthDate time.Time) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generateYear(birthDate.Year())
	person := &Person{
		BirthDate: dateOnly(birthDate),
		Gender:    p.randomGender(),
	}
	for i := 0; i < maxCollisionDraws; i++ {
		person.ID = EncodePNR(person.BirthDate, person.Gender, p.rng)
		existing, taken := p.persons[person.ID]
		if !taken || existing.BirthDate.Equal(person.BirthDate) {
			break
		}
	}
	p.insert(person)
	return person.ID
}

// ResolveParents returns the mother and father of id, synthesizing and
// permanently linking any parent that is still missing. Unknown ids yield
// ok == false.
func (p *Pool) ResolveParents(id string) (motherID, fatherID string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	person, found := p.persons[id]
	if !found {
		return "", "", false
	}
	if person.MotherID == "" {
		person.MotherID = p.addParent(person.BirthDate.Year(), Female)
	}
	if person.FatherID == "" {
		person.FatherID = p.addParent(person.BirthDate.Year(), Male)
	}
	return person.MotherID, person.FatherID, true
}

// Get returns a copy of the person registered under id.
func (p *Pool) Get(id string) (Person, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	person, ok := p.persons[id]
	if !ok {
		return Person{}, false
	}
	return *person, true
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.persons)
}

// RandomID returns an arbitrary registered person.
func (p *Pool) RandomID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.ids) == 0 {
		return "", false
	}
	return p.ids[p.rng.IntN(len(p.ids))], true
}

// RandomAdultID returns a person of either gender whose age in year lies in
// the parent age window.
func (p *Pool) RandomAdultID(year int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	males := p.countAdults(Male, year)
	total := males + p.countAdults(Female, year)
	if total == 0 {
		return "", false
	}
	n := p.rng.IntN(total)
	if n < males {
		return p.nthAdult(Male, year, n), true
	}
	return p.nthAdult(Female, year, n-males), true
}

func (p *Pool) generateYear(year int) {
	if _, done := p.years[year]; done {
		return
	}

	births := p.minBirths + p.rng.IntN(p.maxBirths-p.minBirths+1)

	for i := 0; i < births*2; i++ {
		p.add(year-p.parentAge(), p.randomGender(), "", "")
	}

	// Children are born in year, so none of them is ever an eligible parent
	// for a sibling in the same batch.
	for i := 0; i < births; i++ {
		mother := p.randomAdult(Female, year)
		father := p.randomAdult(Male, year)
		p.add(year, p.randomGender(), mother, father)
	}

	p.years[year] = struct{}{}
}

func (p *Pool) addParent(childBirthYear int, gender Gender) string {
	return p.add(childBirthYear-p.parentAge(), gender, "", "")
}

func (p *Pool) add(birthYear int, gender Gender, motherID, fatherID string) string {
	person := &Person{
		BirthDate: p.randomDate(birthYear),
		Gender:    gender,
		MotherID:  motherID,
		FatherID:  fatherID,
	}
	person.ID = EncodePNR(person.BirthDate, gender, p.rng)
	p.insert(person)
	return person.ID
}

// insert registers person unless its id is already taken. Collisions are not
// resolved; the earlier record wins, even when it was born in the other
// century sharing the marker digit. GetOrCreateForBirthDate redraws first.
func (p *Pool) insert(person *Person) {
	if _, exists := p.persons[person.ID]; exists {
		return
	}
	p.persons[person.ID] = person
	p.ids = append(p.ids, person.ID)
	byYear := p.cohorts[person.Gender]
	y := person.BirthDate.Year()
	byYear[y] = append(byYear[y], person.ID)
}

func (p *Pool) randomAdult(gender Gender, year int) string {
	total := p.countAdults(gender, year)
	if total == 0 {
		return ""
	}
	return p.nthAdult(gender, year, p.rng.IntN(total))
}

func (p *Pool) countAdults(gender Gender, year int) int {
	byYear := p.cohorts[gender]
	n := 0
	for y := year - p.maxParentAge; y <= year-p.minParentAge; y++ {
		n += len(byYear[y])
	}
	return n
}

func (p *Pool) nthAdult(gender Gender, year, n int) string {
	byYear := p.cohorts[gender]
	for y := year - p.maxParentAge; y <= year-p.minParentAge; y++ {
		if n < len(byYear[y]) {
			return byYear[y][n]
		}
		n -= len(byYear[y])
	}
	return ""
}

func (p *Pool) parentAge() int {
	return p.minParentAge + p.rng.IntN(p.maxParentAge-p.minParentAge+1)
}

func (p *Pool) randomGender() Gender {
	if p.rng.IntN(2) == 0 {
		return Male
	}
	return Female
}

// randomDate picks a day in 1..28 so every month/year combination is valid.
func (p *Pool) randomDate(year int) time.Time {
	return time.Date(year, time.Month(1+p.rng.IntN(12)), 1+p.rng.IntN(28), 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
