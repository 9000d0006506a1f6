package clock

import "time"

// Clock abstracts the time source so ingestion timestamps are deterministic in tests
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the real UTC clock
func System() Clock {
	return systemClock{}
}

// Fixed returns a clock frozen at t
func Fixed(t time.Time) Clock {
	return fixedClock(t)
}

type fixedClock time.Time

func (f fixedClock) Now() time.Time {
	return time.Time(f)
}
