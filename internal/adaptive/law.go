package adaptive

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/controldev/mracsim/internal/dynamo"
)

// Options selects the bounding modifications applied to the gradient law.
// Each modification is independently toggleable.
type Options struct {
	// Sigma enables sigma modification when positive: the update bleeds
	// the estimate toward zero, bounding drift under a persistent input
	// bias at the cost of a nonzero residual tracking error.
	Sigma float64

	// AdaptFeedforward adapts a feedforward gain k on the command in
	// addition to the state-feedback gains. When false the command feeds
	// through with the fixed gain KFixed.
	AdaptFeedforward bool
	KFixed           float64

	// Protect enables the anti-windup correction of Karason and
	// Annaswamy: two auxiliary states (beta_delta, e_delta) stop the law
	// from integrating error caused by actuator saturation.
	Protect   bool
	GammaBeta float64
	// AM is the deficit-error decay rate, taken from the reference
	// model's leading dynamics.
	AM float64
}

// Law is the gradient adaptive law
//
//	dot_theta = -sign(b_p) * GAMMA * phi * e - sigma * theta
//
// with regressor phi = [x_p..., r] and GAMMA a fixed positive-definite
// adaptation-gain matrix. With saturation protection enabled the error
// driving the update is the controllable error e_u = e - e_delta, and the
// auxiliary dynamics are
//
//	dot_beta_delta = gamma_beta * e_u * delta_u
//	dot_e_delta    = a_m * e_delta + beta_delta * delta_u
//
// where delta_u is the saturation deficit reported by the plant.
type Law struct {
	gamma *mat.Dense
	signB float64
	order int
	opts  Options
}

// NewLaw validates the adaptation gain and builds the law for a plant of
// the given order. gamma must be square, symmetric, and positive definite
// with dimension order (+1 when the feedforward gain is adapted); a scalar
// plant with an adapted feedforward gain therefore takes a 2x2 gain.
// Failure is a ConfigError at construction, never at runtime.
func NewLaw(gamma [][]float64, signB float64, order int, opts Options) (*Law, error) {
	if order < 1 {
		return nil, dynamo.Configf("adaptive.order", "plant order must be at least 1, got %d", order)
	}
	if signB == 0 {
		return nil, dynamo.Configf("adaptive.sign_b", "high-frequency gain sign must be nonzero")
	}
	if opts.Sigma < 0 {
		return nil, dynamo.Configf("adaptive.sigma", "must be non-negative, got %v", opts.Sigma)
	}
	if opts.Protect && opts.GammaBeta <= 0 {
		return nil, dynamo.Configf("adaptive.gamma_beta", "must be positive with saturation protection, got %v", opts.GammaBeta)
	}

	d := order
	if opts.AdaptFeedforward {
		d++
	}
	g, err := denseGain(gamma, d)
	if err != nil {
		return nil, err
	}

	return &Law{
		gamma: g,
		signB: math.Copysign(1, signB),
		order: order,
		opts:  opts,
	}, nil
}

// denseGain checks shape, symmetry, and positive definiteness.
func denseGain(gamma [][]float64, d int) (*mat.Dense, error) {
	if len(gamma) != d {
		return nil, dynamo.Configf("adaptive.gamma", "gain is %dx?, want %dx%d", len(gamma), d, d)
	}
	data := make([]float64, 0, d*d)
	for i, row := range gamma {
		if len(row) != d {
			return nil, dynamo.Configf("adaptive.gamma", "row %d has %d columns, want %d", i, len(row), d)
		}
		data = append(data, row...)
	}
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			if math.Abs(gamma[i][j]-gamma[j][i]) > 1e-12 {
				return nil, dynamo.Configf("adaptive.gamma", "gain is not symmetric at (%d,%d)", i, j)
			}
		}
	}

	sym := mat.NewSymDense(d, data)
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, dynamo.Configf("adaptive.gamma", "gain is not positive definite")
	}
	return mat.NewDense(d, d, data), nil
}

// ParamDim is the number of adapted parameters (theta, plus k when the
// feedforward gain is adapted).
func (l *Law) ParamDim() int {
	if l.opts.AdaptFeedforward {
		return l.order + 1
	}
	return l.order
}

// StateDim is ParamDim plus the two protection states when enabled.
// Layout: [theta..., k?, beta_delta?, e_delta?].
func (l *Law) StateDim() int {
	if l.opts.Protect {
		return l.ParamDim() + 2
	}
	return l.ParamDim()
}

// Protected reports whether the anti-windup correction is active.
func (l *Law) Protected() bool { return l.opts.Protect }

// Order is the plant order this law was built for.
func (l *Law) Order() int { return l.order }

// Theta extracts the parameter estimate from the law state.
func (l *Law) Theta(z dynamo.State) dynamo.State {
	return z[:l.ParamDim()].Clone()
}

// Control computes the nominal (pre-saturation) command
// u_c = theta . x_p + k r.
func (l *Law) Control(z, xp dynamo.State, r float64) float64 {
	u := 0.0
	for i := 0; i < l.order; i++ {
		u += z[i] * xp[i]
	}
	k := l.opts.KFixed
	if l.opts.AdaptFeedforward {
		k = z[l.order]
	}
	return u + k*r
}

// Derive returns the law-state derivative given the tracking error e and
// the saturation deficit deltaU (zero while the actuator is unsaturated).
func (l *Law) Derive(z, xp dynamo.State, r, e, deltaU float64) dynamo.State {
	d := l.ParamDim()
	dz := make(dynamo.State, l.StateDim())

	eU := e
	if l.opts.Protect {
		eU = e - z[d+1]
	}

	phi := make([]float64, d)
	copy(phi, xp[:l.order])
	if l.opts.AdaptFeedforward {
		phi[l.order] = r
	}

	scaled := mat.NewVecDense(d, nil)
	scaled.MulVec(l.gamma, mat.NewVecDense(d, phi))

	for i := 0; i < d; i++ {
		dz[i] = -l.signB*scaled.AtVec(i)*eU - l.opts.Sigma*z[i]
	}

	if l.opts.Protect {
		beta := z[d]
		dz[d] = l.opts.GammaBeta * eU * deltaU
		dz[d+1] = l.opts.AM*z[d+1] + beta*deltaU
	}

	return dz
}
