// Package latency simulates the network round-trips the mock auth and payment
// backends stand in for.
package latency

import "time"

// Delayer blocks the caller for a simulated round-trip.
type Delayer interface {
	Delay()
}

// Fixed sleeps for the same duration every call.
type Fixed time.Duration

func (f Fixed) Delay() {
	if f > 0 {
		time.Sleep(time.Duration(f))
	}
}

// None returns immediately. Tests use it so mock backends answer instantly.
type None struct{}

func (None) Delay() {}
