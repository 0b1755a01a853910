package clock

import "time"

// FakeClock is a Clock frozen at a chosen instant. Tests use it to pin
// billing-period arithmetic (reset dates, trial expiry) to a known point and
// step time forward explicitly.
type FakeClock struct {
	now time.Time
}

// NewFakeClock freezes the clock at t, normalized to UTC to match the real
// implementation.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

// Now returns the frozen instant.
func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the frozen instant forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
