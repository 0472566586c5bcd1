package schedule

import (
	"time"
)

// FixedClock is the fixed-phase clock. It accumulates wall-clock time and
// hands it out in whole steps of a constant duration.
//
// Delta is latched when a step is expended, so it reads zero until the
// first fixed step has run.
type FixedClock struct {
	step     time.Duration
	delta    time.Duration
	elapsed  time.Duration
	overstep time.Duration
	steps    uint64
	dropped  uint64
}

// DefaultHz is the fixed-phase frequency used when none is configured.
const DefaultHz = 60.0

// NewFixedClock returns a clock stepping at hz. Non-positive values fall
// back to DefaultHz.
func NewFixedClock(hz float64) *FixedClock {
	if !(hz > 0) {
		hz = DefaultHz
	}
	return NewFixedClockStep(time.Duration(float64(time.Second) / hz))
}

// NewFixedClockStep returns a clock with the given step duration.
func NewFixedClockStep(step time.Duration) *FixedClock {
	if step <= 0 {
		step = time.Second / time.Duration(DefaultHz)
	}
	return &FixedClock{step: step}
}

// Step returns the configured step duration.
func (c *FixedClock) Step() time.Duration { return c.step }

// Delta returns the duration of the most recent fixed step.
func (c *FixedClock) Delta() time.Duration { return c.delta }

// DeltaSecs returns Delta in seconds.
func (c *FixedClock) DeltaSecs() float64 { return c.delta.Seconds() }

// Elapsed returns total fixed time consumed so far.
func (c *FixedClock) Elapsed() time.Duration { return c.elapsed }

// Overstep returns accumulated time not yet consumed by a step.
func (c *FixedClock) Overstep() time.Duration { return c.overstep }

// Steps returns the number of fixed steps run.
func (c *FixedClock) Steps() uint64 { return c.steps }

// Dropped returns the number of whole steps discarded by Clamp.
func (c *FixedClock) Dropped() uint64 { return c.dropped }

// OverstepFraction returns Overstep as a fraction of one step, for
// interpolating between fixed states.
func (c *FixedClock) OverstepFraction() float64 {
	return float64(c.overstep) / float64(c.step)
}

// Accumulate adds wall-clock time to the accumulator.
// Negative durations are ignored.
func (c *FixedClock) Accumulate(d time.Duration) {
	if d > 0 {
		c.overstep += d
	}
}

// Expend consumes one step from the accumulator if enough time is available,
// latching Delta and advancing Elapsed.
func (c *FixedClock) Expend() bool {
	if c.overstep < c.step {
		return false
	}
	c.overstep -= c.step
	c.AdvanceBy(c.step)
	return true
}

// AdvanceBy latches d as the current delta and advances the clock by one
// step of that length without touching the accumulator.
func (c *FixedClock) AdvanceBy(d time.Duration) {
	c.delta = d
	c.elapsed += d
	c.steps++
}

// Clamp discards whole pending steps beyond max, keeping the sub-step
// remainder. It returns the number of steps dropped.
func (c *FixedClock) Clamp(max int) int {
	if max <= 0 {
		return 0
	}
	pending := int(c.overstep / c.step)
	if pending <= max {
		return 0
	}
	n := pending - max
	c.overstep -= time.Duration(n) * c.step
	c.dropped += uint64(n)
	return n
}
