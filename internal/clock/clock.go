package clock

import "time"

// Clock abstracts time for services that stamp or compare instants.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
