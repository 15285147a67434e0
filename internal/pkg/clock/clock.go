package clock

import "time"

// Clock abstracts time.Now so the queue state machine and admission gate
// can be tested against a fixed instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// New returns a Clock backed by the system time.
func New() Clock { return realClock{} }

// Fixed is a Clock pinned to a settable instant. Tests mutate Current
// directly to simulate elapsed playback time.
type Fixed struct {
	Current time.Time
}

func (f *Fixed) Now() time.Time { return f.Current }
