package splitter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netcas/splitter/splitter/tunables"
)

func TestGCD_SpecEdgeCases(t *testing.T) {
	assert.Equal(t, uint64(1), gcd(0, 0))
	assert.Equal(t, uint64(7), gcd(7, 0))
	assert.Equal(t, uint64(9), gcd(0, 9))
	assert.Equal(t, uint64(6), gcd(54, 24))
}

func TestRederivePlan_PatternSizeBoundedForEveryPercentage(t *testing.T) {
	for pct := uint64(0); pct <= 100; pct++ {
		var d dispatcherState
		d.rederivePlan(pct)
		assert.GreaterOrEqual(t, d.patternSize, uint64(1))
		assert.LessOrEqual(t, d.patternSize, uint64(tunables.MaxPattern))
		assert.Equal(t, d.patternSize, d.patternCache+d.patternBackend)
		assert.Equal(t, uint64(windowSize), d.cacheQuota+d.backendQuota)
	}
}

func TestDispatch_InvariantCacheBackendCountsSumToTotal(t *testing.T) {
	for pct := uint64(0); pct <= 100; pct += 7 {
		var d dispatcherState
		for i := 0; i < 500; i++ {
			d.dispatch(pct, i%13 == 0) // sprinkle some misses in
			assert.Equal(t, d.total, d.cacheCount+d.backendCount, "pct=%d i=%d", pct, i)
			assert.LessOrEqual(t, d.cacheQuota+d.backendQuota, uint64(windowSize))
		}
	}
}

func TestDispatch_BoundedDeviationOverOneWindow(t *testing.T) {
	for pct := uint64(0); pct <= 100; pct++ {
		var d dispatcherState
		for i := 0; i < windowSize; i++ {
			d.dispatch(pct, false)
		}
		target := float64(windowSize) * float64(pct) / 100
		assert.LessOrEqual(t, math.Abs(float64(d.cacheCount)-target), float64(tunables.MaxPattern+1),
			"pct=%d cacheCount=%d target=%f", pct, d.cacheCount, target)
	}
}

func TestDispatch_BoundedDeviationAcrossManyWindows(t *testing.T) {
	pct := uint64(37)
	var d dispatcherState
	const n = 2000
	for i := 0; i < n; i++ {
		d.dispatch(pct, false)
	}
	// cacheCount/backendCount reset at each window boundary, so after many
	// windows only the current (possibly partial) window's accounting is
	// live; the bound from spec.md §8 property 3 applies to that window.
	target := float64(d.total) * float64(pct) / 100
	assert.LessOrEqual(t, math.Abs(float64(d.cacheCount)-target), float64(tunables.MaxPattern+1))
}

func TestDispatch_MissDoesNotConsumeQuotaOrPattern(t *testing.T) {
	var d dispatcherState
	d.rederivePlan(50)
	beforeCacheQuota, beforeBackendQuota := d.cacheQuota, d.backendQuota
	beforePatternPos := d.patternPos

	d.requestCounter = 1 // avoid retriggering rederivePlan on this call
	sendToBackend := d.dispatch(50, true)

	assert.True(t, sendToBackend)
	assert.Equal(t, beforeCacheQuota, d.cacheQuota)
	assert.Equal(t, beforeBackendQuota, d.backendQuota)
	assert.Equal(t, beforePatternPos, d.patternPos)
	assert.Equal(t, uint64(0), d.total)
}

func TestDispatch_WindowBoundaryRederivesPlan(t *testing.T) {
	var d dispatcherState
	for i := 0; i < windowSize; i++ {
		d.dispatch(20, false)
	}
	assert.Equal(t, uint64(windowSize), d.total) // window just filled, plan not yet rederived

	d.dispatch(20, false) // the 101st call starts a fresh window
	assert.Equal(t, uint64(1), d.total)
}
