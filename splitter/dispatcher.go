package splitter

import "github.com/netcas/splitter/splitter/tunables"

// windowSize and maxPattern name the dispatcher's realization-window
// constants (spec.md §4.6). windowSize is tunables.WindowSize, the same
// constant that sets the moving-average window's capacity (window.Capacity).
const (
	windowSize = tunables.WindowSize
	maxPattern = tunables.MaxPattern
)

// gcd is Euclid's algorithm with the spec's explicit edge cases:
// gcd(x,0)=x, gcd(0,y)=y, gcd(0,0)=1.
func gcd(a, b uint64) uint64 {
	if a == 0 && b == 0 {
		return 1
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// dispatcherState realizes a target percentage ratio across a sliding
// 100-request window using a quota plus a short repeating pattern
// (spec.md §4.6). It is not safe for concurrent use; the owning Splitter
// serializes access with its own mutex.
type dispatcherState struct {
	requestCounter uint64
	total          uint64
	cacheCount     uint64
	backendCount   uint64
	cacheQuota     uint64
	backendQuota   uint64
	patternSize    uint64
	patternCache   uint64
	patternBackend uint64
	patternPos     uint64
	lastToCache    bool
}

// rederivePlan recomputes the quota/pattern plan for percentage p (0..100)
// and resets the window's running counters. Called at a window boundary or
// whenever no plan has ever been derived (spec.md §4.6 step 3).
func (d *dispatcherState) rederivePlan(p uint64) {
	a := p
	b := windowSize - p
	g := gcd(a, b)

	size := (a + b) / g
	if size > maxPattern {
		size = maxPattern
	}

	d.patternSize = size
	d.patternCache = a * size / windowSize
	d.patternBackend = size - d.patternCache

	d.total = 0
	d.cacheCount = 0
	d.backendCount = 0
	d.patternPos = 0
	d.cacheQuota = a
	d.backendQuota = b
}

func satDecrement(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	return x - 1
}

// dispatch realizes one request's verdict against target percentage p, for
// a cache hit (isMiss == false) or bypasses unconditionally for a miss.
// Returns true if the request should go to the backend. Misses are counted
// toward requestCounter (so the window boundary still advances) but not
// toward total/quotas/pattern position, which keeps
// cache_count + backend_count == total for every call (spec.md §8 property 4).
func (d *dispatcherState) dispatch(p uint64, isMiss bool) bool {
	if d.requestCounter%windowSize == 0 || d.patternSize == 0 {
		d.rederivePlan(p)
	}
	d.requestCounter++

	if isMiss {
		return true
	}

	d.total++
	expCache := d.total * p / windowSize
	expBackend := d.total - expCache

	var toCache bool
	switch {
	case d.cacheCount < expCache:
		toCache = true
	case d.backendCount < expBackend:
		toCache = false
	case d.patternPos < d.patternSize:
		toCache = d.patternPos < d.patternCache
		d.patternPos = (d.patternPos + 1) % d.patternSize
	case d.cacheQuota == 0:
		toCache = false
	case d.backendQuota == 0:
		toCache = true
	default:
		toCache = !d.lastToCache
	}

	if toCache {
		d.cacheQuota = satDecrement(d.cacheQuota)
		d.cacheCount++
	} else {
		d.backendQuota = satDecrement(d.backendQuota)
		d.backendCount++
	}
	d.lastToCache = toCache

	return !toCache
}
