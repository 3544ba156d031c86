package integrators

import (
	"math"
	"testing"

	"github.com/controldev/mracsim/internal/dynamo"
)

// harmonic oscillator: x'' = -x
type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	u := dynamo.Control{}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerAccuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewEuler()

	x := dynamo.State{1.0, 0.0}
	u := dynamo.Control{}
	dt := 0.001
	steps := 1000

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	if math.Abs(x[0]-expectedX) > 1e-2 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
}

func TestRK4Deterministic(t *testing.T) {
	dyn := &oscillator{}
	u := dynamo.Control{}

	run := func() dynamo.State {
		integ := NewRK4()
		x := dynamo.State{0.3, -0.7}
		for i := 0; i < 500; i++ {
			x = integ.Step(dyn, x, u, float64(i)*0.01, 0.01)
		}
		return x
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs differ at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 2.0}
	orig := x.Clone()
	integ.Step(dyn, x, dynamo.Control{}, 0, 0.01)

	for i := range x {
		if x[i] != orig[i] {
			t.Fatalf("Step mutated input state at index %d", i)
		}
	}
}
