package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullSampler_AlwaysZero(t *testing.T) {
	var s NullSampler
	assert.Equal(t, Sample{}, s.Measure(100))
}

func TestScriptedSampler_RepeatsLastSampleOnceExhausted(t *testing.T) {
	s := NewScriptedSampler([]Sample{
		{RDMABandwidth: 1},
		{RDMABandwidth: 2},
	})
	assert.Equal(t, uint64(1), s.Measure(0).RDMABandwidth)
	assert.Equal(t, uint64(2), s.Measure(0).RDMABandwidth)
	assert.Equal(t, uint64(2), s.Measure(0).RDMABandwidth)
}

func TestScriptedSampler_Reset(t *testing.T) {
	s := NewScriptedSampler([]Sample{{RDMABandwidth: 1}, {RDMABandwidth: 2}})
	s.Measure(0)
	s.Measure(0)
	s.Reset()
	assert.Equal(t, uint64(1), s.Measure(0).RDMABandwidth)
}

func TestScriptedSampler_PanicsOnEmptyScript(t *testing.T) {
	assert.Panics(t, func() { NewScriptedSampler(nil) })
}

func TestSimulatedSampler_RampThenSteadyThenCongestion(t *testing.T) {
	s := NewSimulatedSampler(2, 5, 8, 500, 100_000, 5000, 900_000)

	assert.Equal(t, Sample{}, s.Measure(0))
	assert.Equal(t, Sample{}, s.Measure(0))

	steady := s.Measure(0)
	assert.Equal(t, uint64(500), steady.RDMABandwidth)
	assert.Equal(t, uint64(100_000), steady.RDMALatencyNS)

	s.Measure(0)
	congested := s.Measure(0)
	assert.Equal(t, uint64(900_000), congested.RDMALatencyNS)
}
