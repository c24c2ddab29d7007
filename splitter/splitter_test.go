package splitter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netcas/splitter/splitter/bwtable"
	"github.com/netcas/splitter/splitter/telemetry"
	"github.com/netcas/splitter/splitter/tunables"
	"github.com/netcas/splitter/splitter/window"
)

// fakeClock lets tests drive the periodic tick deterministically.
type fakeClock struct{ ms uint64 }

func (f *fakeClock) NowMS() uint64    { return f.ms }
func (f *fakeClock) Advance(d uint64) { f.ms += d }

func newTestTable() *bwtable.MemoryTable {
	return bwtable.NewMemoryTable([]bwtable.Row{
		{IODepth: tunables.IODepth, NumJobs: tunables.NumJobs, SplitPct: 0, IOPS: 20000},
		{IODepth: tunables.IODepth, NumJobs: tunables.NumJobs, SplitPct: 100, IOPS: 80000},
	})
}

func tickN(s *Splitter, clock *fakeClock, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(tunables.MonitorIntervalMS)
		s.UpdateSplitRatio(nil)
	}
}

func TestS1_IdleToWarmup(t *testing.T) {
	clock := &fakeClock{}
	sampler := telemetry.NewScriptedSampler([]telemetry.Sample{
		{RDMABandwidth: 50, RDMALatencyNS: 0, IOPS: 500},
		{RDMABandwidth: 200, RDMALatencyNS: 500_000, IOPS: 2000},
	})
	s := New(Config{Table: newTestTable(), Sampler: sampler, Clock: clock})

	tickN(s, clock, 1)
	snap := s.Snapshot()
	assert.Equal(t, "idle", snap.Mode)
	assert.Equal(t, uint64(tunables.SplitScale), snap.Ratio)

	tickN(s, clock, 1)
	assert.Equal(t, "warmup", s.Snapshot().Mode)
}

func TestS2_WarmupToStable_OnWindowFill(t *testing.T) {
	clock := &fakeClock{}
	sampler := telemetry.NewScriptedSampler([]telemetry.Sample{
		{RDMABandwidth: 10_000, RDMALatencyNS: 500_000, IOPS: 10_000},
	})
	s := New(Config{Table: newTestTable(), Sampler: sampler, Clock: clock})

	tickN(s, clock, 100)
	assert.Equal(t, "stable", s.Snapshot().Mode)
}

func stableSplitter(clock *fakeClock, sampler telemetry.Sampler) *Splitter {
	s := New(Config{Table: newTestTable(), Sampler: sampler, Clock: clock})
	tickN(s, clock, 100)
	return s
}

func TestS3_StableToCongestion_OnLatencyBreach(t *testing.T) {
	clock := &fakeClock{}
	steady := telemetry.NewScriptedSampler([]telemetry.Sample{
		{RDMABandwidth: 10_000, RDMALatencyNS: 500_000, IOPS: 10_000},
	})
	s := stableSplitter(clock, steady)
	assertStable(t, s)

	s.sampler = telemetry.NewScriptedSampler([]telemetry.Sample{
		{RDMABandwidth: 10_000, RDMALatencyNS: 1_000_000, IOPS: 10_000},
	})
	tickN(s, clock, 50)
	assert.Equal(t, "congestion", s.Snapshot().Mode)
}

func TestS4_CongestionRecoversToStable(t *testing.T) {
	clock := &fakeClock{}
	steady := telemetry.NewScriptedSampler([]telemetry.Sample{
		{RDMABandwidth: 10_000, RDMALatencyNS: 500_000, IOPS: 10_000},
	})
	s := stableSplitter(clock, steady)

	s.sampler = telemetry.NewScriptedSampler([]telemetry.Sample{
		{RDMABandwidth: 10_000, RDMALatencyNS: 1_000_000, IOPS: 10_000},
	})
	tickN(s, clock, 50)
	assertCongestion(t, s)

	s.sampler = telemetry.NewScriptedSampler([]telemetry.Sample{
		{RDMABandwidth: 10_000, RDMALatencyNS: 505_000, IOPS: 10_000},
	})
	// The latency window must fully cycle past the congestion-era samples
	// before its average reflects only the recovered latency.
	tickN(s, clock, window.Capacity+10)
	assert.Equal(t, "stable", s.Snapshot().Mode)
}

func assertStable(t *testing.T, s *Splitter) {
	t.Helper()
	assert.Equal(t, "stable", s.Snapshot().Mode)
}

func assertCongestion(t *testing.T, s *Splitter) {
	t.Helper()
	assert.Equal(t, "congestion", s.Snapshot().Mode)
}

func TestS5_DispatchRealizesRatio(t *testing.T) {
	s := New(Config{Table: newTestTable(), Clock: &fakeClock{}})
	s.ratioStore.Store(7000) // 70% cache, bypassing the control loop

	cache, backend := 0, 0
	for i := 0; i < 1000; i++ {
		if s.ShouldSendToBackend(nil) {
			backend++
		} else {
			cache++
		}
	}
	assert.InDelta(t, 700, cache, float64(tunables.MaxPattern+1))
	assert.InDelta(t, 300, backend, float64(tunables.MaxPattern+1))
}

func TestS6_MissAlwaysBypassesAndLeavesQuotasUntouched(t *testing.T) {
	s := New(Config{
		Table:      newTestTable(),
		Clock:      &fakeClock{},
		Classifier: MissClassifierFunc(func(Request) bool { return true }),
	})
	s.ratioStore.Store(tunables.SplitScale)

	for i := 0; i < 10; i++ {
		assert.True(t, s.ShouldSendToBackend(nil))
	}
	assert.Equal(t, uint64(0), s.disp.cacheCount)
	assert.Equal(t, uint64(0), s.disp.backendCount)
}

func TestReset_ReproducesFreshInitState(t *testing.T) {
	clock := &fakeClock{}
	s := New(Config{Table: newTestTable(), Clock: clock})
	for i := 0; i < 50; i++ {
		s.ShouldSendToBackend(nil)
		clock.Advance(tunables.MonitorIntervalMS)
	}
	s.Reset()

	fresh := New(Config{Table: newTestTable(), Clock: clock})
	assert.Equal(t, fresh.Snapshot(), s.Snapshot())
}

type countingSampler struct {
	inner telemetry.Sampler
	calls int
}

func (c *countingSampler) Measure(elapsedMS uint64) telemetry.Sample {
	c.calls++
	return c.inner.Measure(elapsedMS)
}

func TestUpdateSplitRatio_IdempotentWithinOneInterval(t *testing.T) {
	clock := &fakeClock{}
	counting := &countingSampler{inner: telemetry.NewScriptedSampler([]telemetry.Sample{{RDMABandwidth: 200, IOPS: 2000}})}
	s := New(Config{Table: newTestTable(), Sampler: counting, Clock: clock})

	clock.Advance(tunables.MonitorIntervalMS)
	s.UpdateSplitRatio(nil)
	s.UpdateSplitRatio(nil)
	s.UpdateSplitRatio(nil)
	assert.Equal(t, 1, counting.calls)
}

func TestShouldSendToBackend_ConcurrentCallers_RealizeSharedRatio(t *testing.T) {
	s := New(Config{Table: newTestTable(), Clock: &fakeClock{}})
	s.ratioStore.Store(4000) // 40% cache

	const workers, perWorker = 8, 500
	var wg sync.WaitGroup
	var mu sync.Mutex
	cache, backend := 0, 0
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			localCache, localBackend := 0, 0
			for i := 0; i < perWorker; i++ {
				if s.ShouldSendToBackend(nil) {
					localBackend++
				} else {
					localCache++
				}
			}
			mu.Lock()
			cache += localCache
			backend += localBackend
			mu.Unlock()
		}()
	}
	wg.Wait()

	total := workers * perWorker
	assert.Equal(t, total, cache+backend)
	assert.InDelta(t, float64(total)*0.40, float64(cache), float64(total)/10)
}
