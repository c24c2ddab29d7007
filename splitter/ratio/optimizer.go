package ratio

import "github.com/netcas/splitter/splitter/tunables"

// Table is the read side of the bandwidth table the optimizer consults.
// split_pct is the percentage (0..100) of traffic directed to the cache.
type Table interface {
	Lookup(ioDepth, numJobs, splitPct int) uint64
}

// congestionLatencyThreshold mirrors tunables.LatCong: above this many permil
// of latency increase, the backend's effective bandwidth is discounted by
// the observed bandwidth drop before the ratio is computed (spec.md §4.3).
const congestionLatencyThreshold = tunables.LatCong

// Optimize computes the optimal cache fraction for operating point
// (ioDepth, numJobs) given the current bandwidth drop and latency increase,
// both expressed in permil (parts per thousand). It is pure and infallible:
// A+B == 0 returns SplitScale (spec.md §4.3's safe default).
func Optimize(table Table, ioDepth, numJobs int, bwDropPermil, latIncreasePermil uint64) uint64 {
	a := table.Lookup(ioDepth, numJobs, 100)
	b := table.Lookup(ioDepth, numJobs, 0)

	if latIncreasePermil > congestionLatencyThreshold {
		drop := bwDropPermil
		if drop > 1000 {
			drop = 1000
		}
		b = b * (1000 - drop) / 1000
	}

	if a+b == 0 {
		return SplitScale
	}

	r := a * SplitScale / (a + b)
	if r > SplitScale {
		r = SplitScale
	}
	return r
}
