package dataset

import (
	"context"
	"fmt"
)

// Unit identifies one generated table: a register for one year.
type Unit struct {
	Register string
	Year     int
}

func (u Unit) String() string {
	return fmt.Sprintf("%s/%d", u.Register, u.Year)
}

// Sink persists generated tables.
type Sink interface {
	Write(ctx context.Context, unit Unit, table *Table) error
	Name() string
}
