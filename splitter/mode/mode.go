// Package mode implements the splitter's operating-mode state machine
// (spec.md §4.4): Idle, Warmup, Stable, Congestion, Failure.
package mode

import "github.com/netcas/splitter/splitter/tunables"

// Mode is the splitter's coarse operating regime.
type Mode int

const (
	Idle Mode = iota
	Warmup
	Stable
	Congestion
	Failure
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Warmup:
		return "warmup"
	case Stable:
		return "stable"
	case Congestion:
		return "congestion"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Action tells the caller what, if anything, it should do to the ratio this
// tick. The controller decides the action; it never touches the ratio
// itself, since that lives in the ratio package.
type Action int

const (
	// ActionNone means the ratio is untouched this tick.
	ActionNone Action = iota
	// ActionSetDefault means: set the ratio to SplitScale (Idle's one-time
	// initialization action).
	ActionSetDefault
	// ActionRecomputeNoContention means: recompute via the optimizer with
	// drop=0, lat_incr=0 (Warmup's no-contention assumption).
	ActionRecomputeNoContention
	// ActionRecomputeOnce means: recompute via the optimizer with the
	// current drop/lat_incr, once, then freeze (Stable's first full window).
	ActionRecomputeOnce
	// ActionRecomputeAlways means: recompute via the optimizer with the
	// current drop/lat_incr every tick (Congestion).
	ActionRecomputeAlways
)

// Input is the per-tick evidence the controller steps on.
type Input struct {
	RDMABandwidth     uint64
	IOPS              uint64
	BWDropPermil      uint64
	LatIncreasePermil uint64
	CachingFailed     bool
	WindowFull        bool
}

// Controller runs the mode state machine. It is not safe for concurrent use;
// the splitter serializes control-path access with its own mutex.
type Controller struct {
	mode           Mode
	initialized    bool
	stableCalcDone bool
}

// NewController returns a Controller in Idle, matching init()'s contract
// that the ratio is already set to SplitScale by the caller.
func NewController() *Controller {
	return &Controller{mode: Idle, initialized: true}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// StableCalcDone reports whether Stable's one-shot recompute has already
// run for the current Stable sojourn.
func (c *Controller) StableCalcDone() bool { return c.stableCalcDone }

// Reset returns the controller to its post-init() state.
func (c *Controller) Reset() {
	c.mode = Idle
	c.initialized = true
	c.stableCalcDone = false
}

// Step advances the state machine by one tick's evidence and returns the
// resulting mode plus the action the caller should take against the ratio.
// Only the transitions in spec.md §4.4's table occur; every other case
// leaves the mode unchanged.
func (c *Controller) Step(in Input) (Mode, Action) {
	if in.RDMABandwidth <= tunables.RDMALow && in.IOPS <= tunables.IOPSLow {
		c.mode = Idle
	} else {
		switch c.mode {
		case Idle:
			c.mode = Warmup
			c.initialized = false
		case Warmup:
			if in.WindowFull {
				c.mode = Stable
				c.stableCalcDone = false
			}
		case Stable:
			if in.LatIncreasePermil > tunables.LatCong {
				c.mode = Congestion
				c.stableCalcDone = true
			}
		case Congestion:
			if in.LatIncreasePermil < tunables.LatRec {
				c.mode = Stable
				c.stableCalcDone = false
			}
		}
	}

	if in.CachingFailed && c.mode != Idle {
		c.mode = Failure
	}

	switch c.mode {
	case Idle:
		if !c.initialized {
			c.initialized = true
			return c.mode, ActionSetDefault
		}
		return c.mode, ActionNone
	case Warmup:
		return c.mode, ActionRecomputeNoContention
	case Stable:
		if !c.stableCalcDone && in.WindowFull {
			c.stableCalcDone = true
			return c.mode, ActionRecomputeOnce
		}
		return c.mode, ActionNone
	case Congestion:
		if in.WindowFull {
			return c.mode, ActionRecomputeAlways
		}
		return c.mode, ActionNone
	default: // Failure
		return c.mode, ActionNone
	}
}
