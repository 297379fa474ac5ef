package contact

import (
	"fmt"
	"time"
)

// Contact is a health-contact record (RECNUM) attributed to a person.
// PersonID is not checked against the person pool.
type Contact struct {
	ID          string
	PersonID    string
	ContactDate time.Time
}

// NextContactID formats the current counter value as a 20 digit id and
// advances the counter.
func NextContactID(counter *uint64) string {
	id := fmt.Sprintf("%020d", *counter)
	*counter++
	return id
}
