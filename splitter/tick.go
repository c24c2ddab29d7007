package splitter

import (
	"github.com/sirupsen/logrus"

	"github.com/netcas/splitter/splitter/mode"
	"github.com/netcas/splitter/splitter/ratio"
	"github.com/netcas/splitter/splitter/tunables"
)

// maybeTick runs the periodic tick's two independent, edge-triggered
// rate-limits (spec.md §4.7). It is invoked from every dispatch call.
func (s *Splitter) maybeTick(now uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now >= s.lastMonitorMS && now-s.lastMonitorMS >= tunables.MonitorIntervalMS {
		s.runMonitorTick(now)
		s.lastMonitorMS = now
	}
	if now >= s.lastLogMS && now-s.lastLogMS >= tunables.LogIntervalMS {
		s.logStatus()
		s.lastLogMS = now
	}
}

// runMonitorTick pulls one sample, updates both windows, steps the mode
// controller, and applies the resulting action to the ratio store. Must be
// called with s.mu held.
func (s *Splitter) runMonitorTick(now uint64) {
	elapsed := now - s.lastMonitorMS
	sample := s.sampler.Measure(elapsed)

	bwAvg := s.throughput.Push(sample.RDMABandwidth)
	s.latency.Push(sample.RDMALatencyNS)

	bwDrop := bwDropPermil(s.throughput.MaxBWAvg(), bwAvg)
	latIncr := latIncreasePermil(s.latency)

	newMode, action := s.controller.Step(mode.Input{
		RDMABandwidth:     sample.RDMABandwidth,
		IOPS:              sample.IOPS,
		BWDropPermil:      bwDrop,
		LatIncreasePermil: latIncr,
		CachingFailed:     tunables.CachingFailed,
		WindowFull:        s.throughput.Full(),
	})

	if newMode != s.lastLoggedMode && logrus.IsLevelEnabled(logrus.InfoLevel) {
		logrus.Infof("splitter: mode %s -> %s (ratio=%d)", s.lastLoggedMode, newMode, s.ratioStore.Load())
	}
	s.lastLoggedMode = newMode

	if s.debugLevel != 0 && logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("splitter: tick bw=%d lat_ns=%d iops=%d bw_drop_permil=%d lat_incr_permil=%d action=%d",
			sample.RDMABandwidth, sample.RDMALatencyNS, sample.IOPS, bwDrop, latIncr, action)
	}

	switch action {
	case mode.ActionSetDefault:
		s.ratioStore.Store(ratio.SplitScale)
	case mode.ActionRecomputeNoContention:
		r := ratio.Optimize(s.table, s.ioDepth, s.numJobs, 0, 0)
		if r != s.ratioStore.Load() {
			s.ratioStore.Store(r)
		}
	case mode.ActionRecomputeOnce:
		r := ratio.Optimize(s.table, s.ioDepth, s.numJobs, bwDrop, latIncr)
		s.ratioStore.Store(r)
	case mode.ActionRecomputeAlways:
		r := ratio.Optimize(s.table, s.ioDepth, s.numJobs, bwDrop, latIncr)
		if r != s.ratioStore.Load() {
			s.ratioStore.Store(r)
		}
	}

	s.lastSample = sample
	s.lastBWDropPermil = bwDrop
	s.lastLatIncreasePermil = latIncr
}

// logStatus emits the 1 Hz human-readable status line (spec.md §4.7).
func (s *Splitter) logStatus() {
	if !logrus.IsLevelEnabled(logrus.InfoLevel) {
		return
	}
	logrus.Infof(
		"splitter: mode=%s ratio=%d bw=%d lat_ns=%d iops=%d bw_drop_permil=%d lat_incr_permil=%d",
		s.controller.Mode(), s.ratioStore.Load(),
		s.lastSample.RDMABandwidth, s.lastSample.RDMALatencyNS, s.lastSample.IOPS,
		s.lastBWDropPermil, s.lastLatIncreasePermil,
	)
}

// bwDropPermil computes the bandwidth-drop derived metric (spec.md §4.4):
// zero while no baseline is established, and saturated to zero rather than
// underflowing when the current average exceeds the baseline.
func bwDropPermil(maxBWAvg, curBWAvg uint64) uint64 {
	if maxBWAvg == 0 || curBWAvg >= maxBWAvg {
		return 0
	}
	return (maxBWAvg - curBWAvg) * 1000 / maxBWAvg
}

// latIncreasePermil computes the latency-increase derived metric
// (spec.md §4.4): zero until the baseline is established, and saturated to
// zero rather than underflowing when the current average is below baseline.
func latIncreasePermil(lw interface {
	Established() bool
	MinLatAvg() uint64
	Average() uint64
}) uint64 {
	if !lw.Established() {
		return 0
	}
	baseline := lw.MinLatAvg()
	if baseline == 0 || baseline == ^uint64(0) {
		return 0
	}
	cur := lw.Average()
	if cur <= baseline {
		return 0
	}
	return (cur - baseline) * 1000 / baseline
}
