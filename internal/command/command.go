// Package command provides reference command profiles r(t) for simulation
// scenarios: zero input, step commands, and sinusoids.
package command

import (
	"math"

	"github.com/controldev/mracsim/internal/dynamo"
)

// Profile is a scalar reference command with a known time derivative.
// The derivative is needed by controllers that track a commanded
// trajectory directly, such as the adaptive PI controller.
type Profile interface {
	At(t float64) float64
	Rate(t float64) float64
}

// Zero is the trivial command r(t) = 0.
type Zero struct{}

func (Zero) At(t float64) float64   { return 0 }
func (Zero) Rate(t float64) float64 { return 0 }

// Step switches from 0 to Level at time Start.
type Step struct {
	Start float64
	Level float64
}

func (s Step) At(t float64) float64 {
	if t < s.Start {
		return 0
	}
	return s.Level
}

func (s Step) Rate(t float64) float64 { return 0 }

// Sine is r(t) = Amp * sin(Freq * t).
type Sine struct {
	Amp  float64
	Freq float64
}

func (s Sine) At(t float64) float64   { return s.Amp * math.Sin(s.Freq*t) }
func (s Sine) Rate(t float64) float64 { return s.Amp * s.Freq * math.Cos(s.Freq*t) }

// New builds a profile from its scenario-file form. Unknown kinds are a
// configuration error.
func New(kind string, amp, freq, start float64) (Profile, error) {
	switch kind {
	case "", "zero":
		return Zero{}, nil
	case "step":
		return Step{Start: start, Level: amp}, nil
	case "sine":
		return Sine{Amp: amp, Freq: freq}, nil
	default:
		return nil, dynamo.Configf("command.type", "unknown profile %q", kind)
	}
}
