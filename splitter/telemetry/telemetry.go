// Package telemetry defines the Sampler contract the splitter polls on the
// control path, and provides a scripted/simulated implementation for demos
// and tests. A production deployment plugs in a Sampler backed by the real
// RDMA/NVMe counters (spec.md §1's "telemetry source", explicitly out of
// THE CORE's scope).
package telemetry

// Sample is one telemetry reading. rdma_lat_ns == 0 is the sentinel for "no
// valid latency yet" (spec.md §3).
type Sample struct {
	RDMABandwidth uint64
	RDMALatencyNS uint64
	IOPS          uint64
	WallMS        uint64
}

// Sampler is the external collaborator producing periodic samples
// (spec.md §6's measure_performance). elapsedMS is the time since the last
// poll, for samplers that compute rate-based metrics.
type Sampler interface {
	Measure(elapsedMS uint64) Sample
}

// NullSampler always reports zero, driving the mode controller toward Idle.
// Useful as a safe default and in tests of stalled-telemetry behavior
// (spec.md §7's "stalled telemetry" user-visible behavior).
type NullSampler struct{}

// Measure implements Sampler.
func (NullSampler) Measure(uint64) Sample { return Sample{} }

// ScriptedSampler replays a fixed sequence of samples, repeating the last
// entry once exhausted. It is deterministic, making it suitable for the
// spec.md §8 S1-S4 scenario tests and for cmd run demos.
type ScriptedSampler struct {
	samples []Sample
	pos     int
}

// NewScriptedSampler returns a ScriptedSampler over samples. Panics if
// samples is empty — a scripted run with no script is a caller error, not a
// runtime condition.
func NewScriptedSampler(samples []Sample) *ScriptedSampler {
	if len(samples) == 0 {
		panic("telemetry: NewScriptedSampler requires at least one sample")
	}
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return &ScriptedSampler{samples: cp}
}

// Measure implements Sampler, ignoring elapsedMS and returning the next
// scripted sample (clamped to the last one once exhausted).
func (s *ScriptedSampler) Measure(uint64) Sample {
	sample := s.samples[s.pos]
	if s.pos < len(s.samples)-1 {
		s.pos++
	}
	return sample
}

// Reset rewinds the script to its first sample.
func (s *ScriptedSampler) Reset() { s.pos = 0 }

// SimulatedSampler generates a deterministic telemetry stream that ramps
// from idle traffic to a steady load and then into a congestion episode,
// for cmd run's end-to-end demo (SPEC_FULL.md §3). It holds no randomness
// so runs are reproducible across invocations.
type SimulatedSampler struct {
	tick              uint64
	RampTicks         uint64 // ticks to reach steady load
	CongestionAtTick  uint64 // tick at which latency starts climbing
	RecoverAtTick     uint64 // tick at which latency recovers
	BaseBandwidth     uint64
	BaseLatencyNS     uint64
	BaseIOPS          uint64
	CongestionLatency uint64
}

// NewSimulatedSampler returns a SimulatedSampler with the given profile.
func NewSimulatedSampler(rampTicks, congestionAtTick, recoverAtTick, baseBandwidth, baseLatencyNS, baseIOPS, congestionLatency uint64) *SimulatedSampler {
	return &SimulatedSampler{
		RampTicks:         rampTicks,
		CongestionAtTick:  congestionAtTick,
		RecoverAtTick:     recoverAtTick,
		BaseBandwidth:     baseBandwidth,
		BaseLatencyNS:     baseLatencyNS,
		BaseIOPS:          baseIOPS,
		CongestionLatency: congestionLatency,
	}
}

// Measure implements Sampler.
func (s *SimulatedSampler) Measure(uint64) Sample {
	s.tick++
	if s.tick <= s.RampTicks {
		return Sample{}
	}
	lat := s.BaseLatencyNS
	if s.tick >= s.CongestionAtTick && s.tick < s.RecoverAtTick {
		lat = s.CongestionLatency
	}
	return Sample{
		RDMABandwidth: s.BaseBandwidth,
		RDMALatencyNS: lat,
		IOPS:          s.BaseIOPS,
	}
}
