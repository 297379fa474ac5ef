package person

import "time"

// Gender is the register code for a person's sex, as used by the KOEN column.
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "K"
)

// Person is a synthesized member of the population.
// MotherID and FatherID are empty until linked; an empty link means
// "not yet resolved", not "has no parent".
type Person struct {
	ID        string
	BirthDate time.Time
	Gender    Gender
	MotherID  string
	FatherID  string
}

// AgeIn returns the person's age in whole calendar years at the given year.
func (p Person) AgeIn(year int) int {
	return year - p.BirthDate.Year()
}
