package command

import (
	"math"
	"testing"
)

func TestProfiles(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		t    float64
		at   float64
		rate float64
	}{
		{"zero", Zero{}, 5, 0, 0},
		{"step before", Step{Start: 5, Level: 1}, 4.9, 0, 0},
		{"step after", Step{Start: 5, Level: 1}, 5.0, 1, 0},
		{"sine", Sine{Amp: 5, Freq: 0.5}, 0, 0, 2.5},
		{"sine peak", Sine{Amp: 5, Freq: 0.5}, math.Pi, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.At(tt.t); math.Abs(got-tt.at) > 1e-12 {
				t.Errorf("At(%v) = %v, want %v", tt.t, got, tt.at)
			}
			if got := tt.p.Rate(tt.t); math.Abs(got-tt.rate) > 1e-12 {
				t.Errorf("Rate(%v) = %v, want %v", tt.t, got, tt.rate)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, err := New("zero", 0, 0, 0); err != nil {
		t.Errorf("zero: %v", err)
	}
	if _, err := New("", 0, 0, 0); err != nil {
		t.Errorf("default: %v", err)
	}
	if p, err := New("sine", 5, 0.5, 0); err != nil || p.At(math.Pi) < 4.99 {
		t.Errorf("sine: %v %v", p, err)
	}
	if _, err := New("sawtooth", 0, 0, 0); err == nil {
		t.Error("unknown profile should fail")
	}
}
