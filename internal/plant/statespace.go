package plant

import (
	"gonum.org/v1/gonum/mat"

	"github.com/controldev/mracsim/internal/dynamo"
)

// StateSpace is a multi-input multi-output linear plant:
//
//	dot_x = A x + B u
//	y     = C x
type StateSpace struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense

	n, m, p int
}

// NewStateSpace validates that A is n-by-n, B is n-by-m, and C is p-by-n.
func NewStateSpace(a, b, c *mat.Dense) (*StateSpace, error) {
	n, nc := a.Dims()
	if n != nc {
		return nil, dynamo.Configf("plant.a", "state matrix is %dx%d, want square", n, nc)
	}
	bn, m := b.Dims()
	if bn != n {
		return nil, dynamo.Configf("plant.b", "input matrix has %d rows, want %d", bn, n)
	}
	p, cn := c.Dims()
	if cn != n {
		return nil, dynamo.Configf("plant.c", "output matrix has %d columns, want %d", cn, n)
	}
	return &StateSpace{A: a, B: b, C: c, n: n, m: m, p: p}, nil
}

func (s *StateSpace) Order() int   { return s.n }
func (s *StateSpace) Inputs() int  { return s.m }
func (s *StateSpace) Outputs() int { return s.p }

// Derive returns dot_x = A x + B u.
func (s *StateSpace) Derive(x dynamo.State, u []float64) dynamo.State {
	xv := mat.NewVecDense(s.n, x)
	uv := mat.NewVecDense(s.m, u)

	dx := mat.NewVecDense(s.n, nil)
	dx.MulVec(s.A, xv)

	bu := mat.NewVecDense(s.n, nil)
	bu.MulVec(s.B, uv)
	dx.AddVec(dx, bu)

	out := make(dynamo.State, s.n)
	copy(out, dx.RawVector().Data)
	return out
}

// Output returns y = C x.
func (s *StateSpace) Output(x dynamo.State) []float64 {
	xv := mat.NewVecDense(s.n, x)
	y := mat.NewVecDense(s.p, nil)
	y.MulVec(s.C, xv)

	out := make([]float64, s.p)
	copy(out, y.RawVector().Data)
	return out
}
