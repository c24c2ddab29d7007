// Package tunables names the splitter's compile-time constants in one place
// so the control-path packages (window, ratio, mode) and the dispatcher
// agree on them without importing each other.
package tunables

const (
	// WindowSize is the moving-average window capacity (spec: W).
	WindowSize = 100

	// MaxPattern bounds the dispatcher's repeating cache/backend pattern.
	MaxPattern = 10

	// MonitorIntervalMS rate-limits telemetry polling and mode/ratio updates.
	MonitorIntervalMS = 100

	// LogIntervalMS rate-limits the periodic human-readable status line.
	LogIntervalMS = 1000

	// RDMALow and IOPSLow gate the any-mode -> Idle transition.
	RDMALow = 100
	IOPSLow = 1000

	// LatCong and LatRec gate Stable <-> Congestion.
	LatCong = 70
	LatRec  = 50

	// BWCong and BWRec are defined but not consulted by the mode logic
	// (spec.md §9 open question (a)); kept for parity with the reference.
	BWCong = 90
	BWRec  = 70

	// LatStabilization is the minimum latency-sample count before a baseline
	// may be established.
	LatStabilization = 40

	// SplitScale is the fixed-point scale of the split ratio (10000 == 100%).
	SplitScale = 10000

	// IODepth and NumJobs are the bandwidth-table operating point used by
	// the default single-splitter configuration.
	IODepth = 16
	NumJobs = 1
)

// CachingFailed is a reserved compile-time flag: the reference never sets it,
// so Failure mode is reachable in code but unobserved in practice
// (spec.md §9 open question (b)).
const CachingFailed = false
