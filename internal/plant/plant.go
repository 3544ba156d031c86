package plant

import (
	"math"

	"github.com/controldev/mracsim/internal/dynamo"
)

// Linear is a single-input linear plant of order n:
//
//	dot_x = A x + b u + b v
//	y     = c . x
//
// where v is an optional constant input bias entering through the same
// channel as the control, the disturbance pattern that motivates sigma
// modification. When Saturate is set the control input is clipped to
// [-UMax, UMax] before it reaches the plant.
type Linear struct {
	A    [][]float64
	B    []float64
	C    []float64
	Bias float64

	Saturate bool
	UMax     float64
}

// NewLinear validates dimensions and saturation limits. The plant order is
// taken from A, which must be square; B and C must match it.
func NewLinear(a [][]float64, b, c []float64, bias float64) (*Linear, error) {
	n := len(a)
	if n == 0 {
		return nil, dynamo.Configf("plant.a", "empty state matrix")
	}
	for i, row := range a {
		if len(row) != n {
			return nil, dynamo.Configf("plant.a", "row %d has %d columns, want %d", i, len(row), n)
		}
	}
	if len(b) != n {
		return nil, dynamo.Configf("plant.b", "length %d does not match plant order %d", len(b), n)
	}
	if len(c) != n {
		return nil, dynamo.Configf("plant.c", "length %d does not match plant order %d", len(c), n)
	}
	return &Linear{A: a, B: b, C: c, Bias: bias}, nil
}

// WithSaturation enables input clipping at the given limit.
func (p *Linear) WithSaturation(uMax float64) (*Linear, error) {
	if uMax <= 0 {
		return nil, dynamo.Configf("plant.u_max", "must be positive, got %v", uMax)
	}
	p.Saturate = true
	p.UMax = uMax
	return p, nil
}

func (p *Linear) Order() int { return len(p.B) }

// SignB is the sign of the high-frequency gain, the only piece of plant
// knowledge the gradient adaptive law assumes.
func (p *Linear) SignB() float64 {
	for _, v := range p.B {
		if v != 0 {
			return math.Copysign(1, v)
		}
	}
	return 1
}

// Apply clips the commanded input when saturation is enabled. It returns
// the input actually delivered to the plant and the saturation deficit
// delta_u = u - u_c (zero while unsaturated).
func (p *Linear) Apply(uC float64) (u, deltaU float64) {
	if !p.Saturate || math.Abs(uC) <= p.UMax {
		return uC, 0
	}
	u = math.Copysign(p.UMax, uC)
	return u, u - uC
}

// Derive returns dot_x for the already-saturated input u.
func (p *Linear) Derive(x dynamo.State, u float64) dynamo.State {
	n := p.Order()
	dx := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < n; j++ {
			s += p.A[i][j] * x[j]
		}
		dx[i] = s + p.B[i]*(u+p.Bias)
	}
	return dx
}

// Output is the scalar plant output y = c . x.
func (p *Linear) Output(x dynamo.State) float64 {
	y := 0.0
	for i, ci := range p.C {
		y += ci * x[i]
	}
	return y
}
