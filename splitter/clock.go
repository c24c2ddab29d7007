package splitter

import "time"

// Clock is a monotonic millisecond time source. Wall-clock adjustments must
// not perturb interval checks (spec.md §9's "Time source" design note), so
// implementations should derive elapsed time from a monotonic reading rather
// than from wall-clock subtraction.
type Clock interface {
	NowMS() uint64
}

// SystemClock implements Clock using time.Since against a fixed start,
// which carries Go's monotonic clock reading and so is immune to wall-clock
// jumps (NTP steps, manual clock changes).
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a SystemClock anchored at the current time.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMS implements Clock.
func (c *SystemClock) NowMS() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}
