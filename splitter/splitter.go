// Package splitter implements the adaptive hybrid-cache request splitter:
// the performance monitor's moving-average windows, the mode state machine,
// the split-ratio optimizer, and the deterministic per-request dispatcher
// that realizes the target ratio with low jitter.
//
// # Reading Guide
//
// Start with these files to understand the control loop:
//   - dispatcher.go: the per-request quota+pattern realization (§4.6)
//   - tick.go: the periodic monitor/log rate-limiting and mode stepping (§4.7)
//   - splitter.go: object assembly, the external API, locking discipline
//
// The pure numeric pieces live in subpackages so they can be tested and
// reused independently:
//   - splitter/window: moving-average ring buffers and baselines
//   - splitter/ratio: the ratio store and the bandwidth-table optimizer
//   - splitter/mode: the Idle/Warmup/Stable/Congestion/Failure state machine
//   - splitter/bwtable: bandwidth-table loaders (YAML, bbolt)
//   - splitter/telemetry: the sampler contract and demo implementations
package splitter

import (
	"sync"

	"github.com/netcas/splitter/splitter/mode"
	"github.com/netcas/splitter/splitter/ratio"
	"github.com/netcas/splitter/splitter/telemetry"
	"github.com/netcas/splitter/splitter/tunables"
	"github.com/netcas/splitter/splitter/window"
)

// BandwidthTable is the read side the optimizer consults (spec.md §4.1).
// splitter/bwtable.MemoryTable and splitter/bwtable.BoltTable both satisfy
// this (it is identical to ratio.Table, named locally so callers outside
// splitter/ratio don't need to import that package just to build one).
type BandwidthTable = ratio.Table

// Config bundles the construction-time parameters a host cache engine
// chooses once and does not change at runtime.
type Config struct {
	Table      BandwidthTable
	Sampler    telemetry.Sampler
	Classifier MissClassifier
	Clock      Clock
	IODepth    int
	NumJobs    int
}

// Splitter is the process-lived adaptive splitter: one instance per cache
// device being fronted. All exported methods are safe for concurrent use.
//
// Locking discipline (spec.md §5): mu guards the moving-average
// windows, the mode controller, and the two tick timestamps — state only
// the (infrequent, ~10Hz) control path touches. dispatchMu guards the
// dispatcher's quota/pattern state, touched on every hot-path call. The
// ratio itself lives in an atomic ratio.Store, readable by dispatch without
// taking either mutex.
type Splitter struct {
	mu         sync.Mutex // control path: windows, mode, tick timestamps
	dispatchMu sync.Mutex // dispatch path: dispatcherState

	table      BandwidthTable
	sampler    telemetry.Sampler
	classifier MissClassifier
	clock      Clock

	ioDepth int
	numJobs int

	throughput window.ThroughputWindow
	latency    *window.LatencyWindow
	controller *mode.Controller
	ratioStore *ratio.Store

	lastMonitorMS uint64
	lastLogMS     uint64

	lastSample            telemetry.Sample
	lastBWDropPermil      uint64
	lastLatIncreasePermil uint64
	lastLoggedMode        mode.Mode

	disp dispatcherState

	debugLevel int32

	cfg Config
}

// New constructs a Splitter in its post-init() state (spec.md §6's init()).
// IODepth and NumJobs default to tunables.IODepth/tunables.NumJobs when left
// zero.
func New(cfg Config) *Splitter {
	if cfg.Clock == nil {
		cfg.Clock = NewSystemClock()
	}
	if cfg.Sampler == nil {
		cfg.Sampler = telemetry.NullSampler{}
	}
	if cfg.Classifier == nil {
		cfg.Classifier = AlwaysHit
	}
	if cfg.IODepth == 0 {
		cfg.IODepth = tunables.IODepth
	}
	if cfg.NumJobs == 0 {
		cfg.NumJobs = tunables.NumJobs
	}

	s := &Splitter{cfg: cfg}
	s.init()
	return s
}

// init brings every field to the state spec.md §6's init() requires: zeroed
// windows, mode Idle, ratio SplitScale. Called by New and by Reset.
func (s *Splitter) init() {
	s.table = s.cfg.Table
	s.sampler = s.cfg.Sampler
	s.classifier = s.cfg.Classifier
	s.clock = s.cfg.Clock
	s.ioDepth = s.cfg.IODepth
	s.numJobs = s.cfg.NumJobs

	s.throughput.Reset()
	s.latency = window.NewLatencyWindow()
	s.controller = mode.NewController()
	s.ratioStore = ratio.NewStore()

	s.lastMonitorMS = 0
	s.lastLogMS = 0
	s.lastSample = telemetry.Sample{}
	s.lastBWDropPermil = 0
	s.lastLatIncreasePermil = 0
	s.lastLoggedMode = mode.Idle

	s.disp = dispatcherState{}
}

// SetDebug enables (level != 0) or disables (level == 0) verbose logging,
// per spec.md §6's set_debug.
func (s *Splitter) SetDebug(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level != 0 {
		s.debugLevel = 1
	} else {
		s.debugLevel = 0
	}
}

// SetRatioForLoadTest pins the ratio store directly, bypassing the control
// loop. It exists for cmd loadtest, which measures how faithfully the
// dispatcher alone realizes a held-fixed ratio under concurrent callers,
// independent of whatever the mode controller would otherwise compute.
func (s *Splitter) SetRatioForLoadTest(r uint64) {
	s.ratioStore.Store(r)
}

// Reset returns the splitter to its post-init() state (spec.md §6's
// reset()), serialized against any in-flight dispatch.
func (s *Splitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.init()
}

// ShouldSendToBackend is the hot-path entry point (spec.md §4.6, §6). It
// always returns a boolean and never allocates beyond what telemetry
// polling and logging (both rate-limited to the control path) may do.
func (s *Splitter) ShouldSendToBackend(req Request) bool {
	now := s.clock.NowMS()
	s.maybeTick(now)

	p := s.ratioStore.Load() / 100
	isMiss := s.classifier.IsMiss(req)

	s.dispatchMu.Lock()
	toBackend := s.disp.dispatch(p, isMiss)
	s.dispatchMu.Unlock()

	return toBackend
}

// UpdateSplitRatio invokes the periodic tick without making a dispatch
// decision (spec.md §6). Idempotent within one MONITOR_INTERVAL_MS.
func (s *Splitter) UpdateSplitRatio(req Request) {
	_ = req
	s.maybeTick(s.clock.NowMS())
}

// Snapshot is a read-only view of the splitter's control-path state, for
// the monitor TUI and for tests. It never exposes mutable internals.
type Snapshot struct {
	Mode               string
	Ratio              uint64
	ThroughputAvg      uint64
	LatencyAvg         uint64
	MaxBWAvg           uint64
	MinLatAvg          uint64
	LatencyEstablished bool
	BWDropPermil       uint64
	LatIncreasePermil  uint64
}

// Snapshot returns the current control-path state.
func (s *Splitter) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Mode:               s.controller.Mode().String(),
		Ratio:              s.ratioStore.Load(),
		ThroughputAvg:      s.throughput.Average(),
		LatencyAvg:         s.latency.Average(),
		MaxBWAvg:           s.throughput.MaxBWAvg(),
		MinLatAvg:          s.latency.MinLatAvg(),
		LatencyEstablished: s.latency.Established(),
		BWDropPermil:       s.lastBWDropPermil,
		LatIncreasePermil:  s.lastLatIncreasePermil,
	}
}
