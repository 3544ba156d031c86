package dynamo

import "math"

// State is a vector of real-valued system states.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// Dot returns the inner product of s with other. Panics on length mismatch,
// which always indicates a wiring bug upstream.
func (s State) Dot(other State) float64 {
	if len(s) != len(other) {
		panic("dynamo: Dot length mismatch")
	}
	sum := 0.0
	for i := range s {
		sum += s[i] * other[i]
	}
	return sum
}

type Control []float64

// System is a time-varying ODE: dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Integrator advances a system state by one fixed step.
type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}
