// Package metrics provides scalar run summaries computed over simulation
// records.
package metrics

import (
	"math"

	"github.com/controldev/mracsim/internal/sim"
)

// TrackingRMS is the root-mean-square output tracking error over the run.
type TrackingRMS struct {
	sumSq   float64
	samples int
}

func NewTrackingRMS() *TrackingRMS { return &TrackingRMS{} }

func (m *TrackingRMS) Name() string { return "tracking_rms" }

func (m *TrackingRMS) Observe(rec sim.Record) {
	e := rec.TrackingError()
	m.sumSq += e.Dot(e)
	m.samples++
}

func (m *TrackingRMS) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingRMS) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// ParamNorm tracks the parameter-estimate norm; Value reports the final
// observed norm, Max the largest over the run.
type ParamNorm struct {
	last float64
	max  float64
}

func NewParamNorm() *ParamNorm { return &ParamNorm{} }

func (m *ParamNorm) Name() string { return "param_norm" }

func (m *ParamNorm) Observe(rec sim.Record) {
	n := rec.Theta.Norm()
	m.last = n
	if n > m.max {
		m.max = n
	}
}

func (m *ParamNorm) Value() float64 { return m.last }
func (m *ParamNorm) Max() float64   { return m.max }

func (m *ParamNorm) Reset() {
	m.last = 0
	m.max = 0
}

// ControlEffort is the mean absolute control input.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (m *ControlEffort) Name() string { return "control_effort" }

func (m *ControlEffort) Observe(rec sim.Record) {
	for _, u := range rec.U {
		m.sum += math.Abs(u)
	}
	m.samples++
}

func (m *ControlEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *ControlEffort) Reset() {
	m.sum = 0
	m.samples = 0
}

// SaturationDuty is the fraction of steps whose control input sits at the
// saturation limit.
type SaturationDuty struct {
	uMax      float64
	saturated int
	samples   int
}

func NewSaturationDuty(uMax float64) *SaturationDuty {
	return &SaturationDuty{uMax: uMax}
}

func (m *SaturationDuty) Name() string { return "saturation_duty" }

func (m *SaturationDuty) Observe(rec sim.Record) {
	m.samples++
	for _, u := range rec.U {
		if math.Abs(u) >= m.uMax {
			m.saturated++
			break
		}
	}
}

func (m *SaturationDuty) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.saturated) / float64(m.samples)
}

func (m *SaturationDuty) Reset() {
	m.saturated = 0
	m.samples = 0
}
