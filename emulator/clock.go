package emulator

import "time"

// maxDebt caps how far behind the clock may fall. A host that stalls (window
// dragged, process stopped) resumes at normal speed instead of racing through
// the backlog.
const maxDebt = 250 * time.Millisecond

// Clock turns elapsed wall-clock time into instruction steps and timer ticks,
// each at its own rate. Fractions of a period carry over to the next call.
type Clock struct {
	stepPeriod time.Duration
	tickPeriod time.Duration
	stepDebt   time.Duration
	tickDebt   time.Duration
}

// NewClock panics if either rate is not positive. Rates above one per
// nanosecond run at one per nanosecond.
func NewClock(stepsPerSecond, ticksPerSecond int) *Clock {
	return &Clock{
		stepPeriod: period(stepsPerSecond),
		tickPeriod: period(ticksPerSecond),
	}
}

func period(perSecond int) time.Duration {
	if perSecond <= 0 {
		panic("emulator: clock rate must be positive")
	}
	if p := time.Second / time.Duration(perSecond); p > 0 {
		return p
	}
	return time.Nanosecond
}

// Advance returns the number of steps and ticks due after elapsed time.
func (c *Clock) Advance(elapsed time.Duration) (steps, ticks int) {
	if elapsed <= 0 {
		return 0, 0
	}

	c.stepDebt += elapsed
	if c.stepDebt > maxDebt {
		c.stepDebt = maxDebt
	}
	c.tickDebt += elapsed
	if c.tickDebt > maxDebt {
		c.tickDebt = maxDebt
	}

	steps = int(c.stepDebt / c.stepPeriod)
	c.stepDebt -= time.Duration(steps) * c.stepPeriod
	ticks = int(c.tickDebt / c.tickPeriod)
	c.tickDebt -= time.Duration(ticks) * c.tickPeriod
	return steps, ticks
}

// Reset discards any carried fractions.
func (c *Clock) Reset() {
	c.stepDebt = 0
	c.tickDebt = 0
}
