package text

import "sync/atomic"

// Version identifies a buffer state. Versions increase monotonically with
// every applied change; version 0 is the initial state.
type Version uint64

// Clock issues versions for one buffer. The zero Clock starts at version 0.
type Clock struct {
	current atomic.Uint64
}

// Tick advances the clock and returns the new version.
func (c *Clock) Tick() Version {
	return Version(c.current.Add(1))
}

// Current returns the most recently issued version.
func (c *Clock) Current() Version {
	return Version(c.current.Load())
}
