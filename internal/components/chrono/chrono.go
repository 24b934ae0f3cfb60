package chrono

import "time"

// TimeAPI is what anything that depends on the current time should use,
// so the time can be pinned in tests.
type TimeAPI interface {
	Now() time.Time
	Location() *time.Location
}

// StandardImpl reports the wall clock in a fixed location, dates derived
// from time.Time.Year()/Month()/Day() would otherwise shift with the
// timezone of whatever machine runs the binary.
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl(location string) (StandardImpl, error) {
	loc, err := time.LoadLocation(location)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: loc}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always reports the same instant.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	return f.Time.Location()
}
