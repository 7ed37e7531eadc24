package util

import "time"

// Clock supplies the current time in the household's time zone
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type localClock struct {
	loc *time.Location
}

// NewClock returns a wall clock reporting times in loc
func NewClock(loc *time.Location) Clock {
	return localClock{loc: loc}
}

func (c localClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c localClock) Location() *time.Location {
	return c.loc
}

// FixedClock always reports the same instant. Used by tests and the CLI.
type FixedClock struct {
	At  time.Time
	Loc *time.Location
}

func (c FixedClock) Now() time.Time {
	return c.At.In(c.Loc)
}

func (c FixedClock) Location() *time.Location {
	return c.Loc
}
