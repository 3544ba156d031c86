// Package refmodel provides the reference models that generate the desired
// trajectory an adaptive loop should track.
package refmodel

import (
	"github.com/controldev/mracsim/internal/dynamo"
)

// Mode selects between the open- and closed-loop reference model variants.
type Mode int

const (
	// Open: reference dynamics depend only on the command and the
	// reference state.
	Open Mode = iota
	// Closed: the tracking error is fed back into the reference
	// trajectory through the gain L. Faster parameter convergence at the
	// cost of reference-trajectory distortion.
	Closed
)

func (m Mode) String() string {
	if m == Closed {
		return "closed"
	}
	return "open"
}

// Model is a stable linear reference model of order n:
//
//	dot_x_m = A_m x_m + b_m r            (open loop)
//	dot_x_m = A_m x_m + b_m r - L e c_m  (closed loop)
//	y_m     = c_m . x_m
//
// With L = 0 the closed-loop variant reduces exactly to the open-loop
// dynamics. Following the CRM literature a negative L pulls the model
// toward the plant.
type Model struct {
	A [][]float64
	B []float64
	C []float64

	Mode Mode
	L    float64
}

// New validates dimensions. The model order must match the plant order so
// the state tracking error is well defined. A nonzero L is rejected in
// open-loop mode rather than silently ignored: a configuration carrying a
// feedback gain that would have no effect is treated as a mistake.
func New(a [][]float64, b, c []float64, mode Mode, l float64) (*Model, error) {
	n := len(a)
	if n == 0 {
		return nil, dynamo.Configf("ref_model.a", "empty state matrix")
	}
	for i, row := range a {
		if len(row) != n {
			return nil, dynamo.Configf("ref_model.a", "row %d has %d columns, want %d", i, len(row), n)
		}
	}
	if len(b) != n {
		return nil, dynamo.Configf("ref_model.b", "length %d does not match model order %d", len(b), n)
	}
	if len(c) != n {
		return nil, dynamo.Configf("ref_model.c", "length %d does not match model order %d", len(c), n)
	}
	if mode == Open && l != 0 {
		return nil, dynamo.Configf("ref_model.l", "nonzero L requires closed-loop mode")
	}
	return &Model{A: a, B: b, C: c, Mode: mode, L: l}, nil
}

func (m *Model) Order() int { return len(m.B) }

// Am00 is the leading diagonal entry of A_m, used by the saturation
// protection law as the deficit-error decay rate.
func (m *Model) Am00() float64 { return m.A[0][0] }

// Derive returns dot_x_m given the command r and, for the closed-loop
// variant, the output tracking error e = y_p - y_m.
func (m *Model) Derive(xm dynamo.State, r, e float64) dynamo.State {
	n := m.Order()
	dx := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < n; j++ {
			s += m.A[i][j] * xm[j]
		}
		dx[i] = s + m.B[i]*r
		if m.Mode == Closed {
			dx[i] -= m.L * e * m.C[i]
		}
	}
	return dx
}

// Output is the scalar reference output y_m = c_m . x_m.
func (m *Model) Output(xm dynamo.State) float64 {
	y := 0.0
	for i, ci := range m.C {
		y += ci * xm[i]
	}
	return y
}
