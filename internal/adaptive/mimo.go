package adaptive

import (
	"gonum.org/v1/gonum/mat"

	"github.com/controldev/mracsim/internal/dynamo"
)

// MIMO is the classical multivariable gradient law. The gain matrix Theta
// (m inputs by q regressor signals) maps the regressor omega onto the
// control vector, and each entry integrates the corresponding output
// error component:
//
//	u         = Theta omega
//	dot_Theta = -gamma (e omega^T)
//
// Theta is stored row-major in the law state.
type MIMO struct {
	Gamma float64
	m, q  int
}

// NewMIMO builds the law for m control inputs and a q-dimensional
// regressor.
func NewMIMO(gamma float64, m, q int) (*MIMO, error) {
	if gamma <= 0 {
		return nil, dynamo.Configf("mimo.gamma", "must be positive, got %v", gamma)
	}
	if m < 1 || q < 1 {
		return nil, dynamo.Configf("mimo.dims", "need at least one input and one regressor signal, got %dx%d", m, q)
	}
	return &MIMO{Gamma: gamma, m: m, q: q}, nil
}

func (l *MIMO) StateDim() int { return l.m * l.q }
func (l *MIMO) Inputs() int   { return l.m }
func (l *MIMO) Regressor() int {
	return l.q
}

// Theta reshapes the flat law state into its m-by-q matrix view.
func (l *MIMO) Theta(z dynamo.State) *mat.Dense {
	return mat.NewDense(l.m, l.q, z[:l.m*l.q])
}

// Control computes u = Theta omega.
func (l *MIMO) Control(z dynamo.State, omega []float64) []float64 {
	u := mat.NewVecDense(l.m, nil)
	u.MulVec(l.Theta(z), mat.NewVecDense(l.q, omega))

	out := make([]float64, l.m)
	copy(out, u.RawVector().Data)
	return out
}

// Derive returns dot_Theta = -gamma e omega^T, flattened row-major.
func (l *MIMO) Derive(omega, e []float64) dynamo.State {
	var d mat.Dense
	d.Outer(-l.Gamma, mat.NewVecDense(l.m, e), mat.NewVecDense(l.q, omega))

	dz := make(dynamo.State, l.m*l.q)
	for i := 0; i < l.m; i++ {
		for j := 0; j < l.q; j++ {
			dz[i*l.q+j] = d.At(i, j)
		}
	}
	return dz
}
