package integrators

import "github.com/controldev/mracsim/internal/dynamo"

// Euler is the explicit first-order scheme. Cheap, but needs a small dt
// for the stiff closed-loop dynamics produced by large adaptation gains.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
