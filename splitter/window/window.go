// Package window implements the moving-average windows that back the
// splitter's performance monitor: a fixed-capacity ring buffer shared by the
// throughput and latency metrics, plus the baseline tracking each metric
// layers on top of it.
package window

import "github.com/netcas/splitter/splitter/tunables"

// Capacity is the number of samples retained by a Window (spec: W = 100).
const Capacity = tunables.WindowSize

// Stabilization is the minimum number of latency samples observed before a
// LatencyWindow's baseline may be established.
const Stabilization = tunables.LatStabilization

// Window is a fixed-capacity ring buffer maintaining a running sum and
// average. It is the shared core of ThroughputWindow and LatencyWindow.
type Window struct {
	buf     [Capacity]uint64
	idx     int
	count   int
	sum     uint64
	average uint64
}

// Push inserts x, evicting the oldest sample once the window is full, and
// returns the updated average.
func (w *Window) Push(x uint64) uint64 {
	if w.count < Capacity {
		w.count++
	} else {
		w.sum -= w.buf[w.idx]
	}
	w.buf[w.idx] = x
	w.sum += x
	w.average = w.sum / uint64(w.count)
	w.idx = (w.idx + 1) % Capacity
	return w.average
}

// Average returns the current running average, or 0 if no sample has been
// pushed yet.
func (w *Window) Average() uint64 { return w.average }

// Sum returns the current running sum of retained samples.
func (w *Window) Sum() uint64 { return w.sum }

// Count returns the number of samples currently retained, capped at Capacity.
func (w *Window) Count() int { return w.count }

// Full reports whether the window has accumulated Capacity samples.
func (w *Window) Full() bool { return w.count >= Capacity }

// Reset returns the window to its zero state.
func (w *Window) Reset() { *w = Window{} }

// ThroughputWindow is a Window that additionally tracks the best-ever
// (monotone non-decreasing) average throughput observed, used as the
// "uncongested" bandwidth baseline.
type ThroughputWindow struct {
	Window
	maxBWAvg uint64
}

// Push inserts a throughput sample and updates the baseline.
func (tw *ThroughputWindow) Push(bw uint64) uint64 {
	avg := tw.Window.Push(bw)
	if avg > tw.maxBWAvg {
		tw.maxBWAvg = avg
	}
	return avg
}

// MaxBWAvg returns the best-ever window average observed.
func (tw *ThroughputWindow) MaxBWAvg() uint64 { return tw.maxBWAvg }

// Reset returns the throughput window to its zero state, including the
// baseline.
func (tw *ThroughputWindow) Reset() { *tw = ThroughputWindow{} }

// LatencyWindow is a Window that additionally tracks the best-ever (monotone
// non-increasing once established) average latency observed, with a
// stabilization delay before the baseline is trusted.
type LatencyWindow struct {
	Window
	minLatAvg   uint64
	established bool
	samplesSeen uint64
}

// NewLatencyWindow returns a LatencyWindow with the baseline initialized to
// the sentinel "not yet established" state.
func NewLatencyWindow() *LatencyWindow {
	lw := &LatencyWindow{}
	lw.minLatAvg = ^uint64(0)
	return lw
}

// Push inserts a latency sample, advances the stabilization counter, and
// updates the baseline per spec.md §4.2.
func (lw *LatencyWindow) Push(lat uint64) uint64 {
	avg := lw.Window.Push(lat)
	lw.samplesSeen++
	if lw.samplesSeen < Stabilization {
		return avg
	}
	if !lw.established {
		if avg > 0 {
			lw.minLatAvg = avg
			lw.established = true
		}
		return avg
	}
	if avg < lw.minLatAvg {
		lw.minLatAvg = avg
	}
	return avg
}

// MinLatAvg returns the established baseline, or the sentinel max value if
// not yet established.
func (lw *LatencyWindow) MinLatAvg() uint64 { return lw.minLatAvg }

// Established reports whether the baseline has been established.
func (lw *LatencyWindow) Established() bool { return lw.established }

// SamplesSeen returns the number of latency samples pushed since init/reset.
func (lw *LatencyWindow) SamplesSeen() uint64 { return lw.samplesSeen }

// Reset returns the latency window to its zero (sentinel) state.
func (lw *LatencyWindow) Reset() {
	lw.Window.Reset()
	lw.minLatAvg = ^uint64(0)
	lw.established = false
	lw.samplesSeen = 0
}
