package adaptive

import "github.com/controldev/mracsim/internal/dynamo"

// PI is the adaptive PI controller for a first-order plant
// G(s) = 1/(Js + B) with unknown inertia J and damping B. It tracks a
// commanded trajectory x_d with known derivative:
//
//	e  = x_d - x
//	e1 = dot_x_d + lambda e
//	e2 = e + lambda * integral(e)
//	u  = J_hat e1 + B_hat x + K e2
//
// with estimate updates dot_J_hat = gamma1 e2 e1 and
// dot_B_hat = gamma2 e2 x.
type PI struct {
	K       float64
	Lambda  float64
	Gamma1  float64
	Gamma2  float64
	Enabled bool // false freezes the estimates (fixed-gain PI baseline)
}

// NewPI validates the fixed gains. Adaptation rates may be zero to freeze
// an individual estimate.
func NewPI(k, lambda, gamma1, gamma2 float64, enabled bool) (*PI, error) {
	if k <= 0 {
		return nil, dynamo.Configf("adaptive_pi.k", "must be positive, got %v", k)
	}
	if lambda <= 0 {
		return nil, dynamo.Configf("adaptive_pi.lambda", "must be positive, got %v", lambda)
	}
	if gamma1 < 0 || gamma2 < 0 {
		return nil, dynamo.Configf("adaptive_pi.gamma", "rates must be non-negative, got %v, %v", gamma1, gamma2)
	}
	return &PI{K: k, Lambda: lambda, Gamma1: gamma1, Gamma2: gamma2, Enabled: enabled}, nil
}

// StateDim is 3: [J_hat, B_hat, integral error].
func (p *PI) StateDim() int { return 3 }

// Theta extracts the two parameter estimates from the controller state.
func (p *PI) Theta(z dynamo.State) dynamo.State {
	return dynamo.State{z[0], z[1]}
}

func (p *PI) errors(z dynamo.State, x, xd, xdDot float64) (e, e1, e2 float64) {
	e = xd - x
	e1 = xdDot + p.Lambda*e
	e2 = e + p.Lambda*z[2]
	return
}

// Control computes u = J_hat e1 + B_hat x + K e2.
func (p *PI) Control(z dynamo.State, x, xd, xdDot float64) float64 {
	_, e1, e2 := p.errors(z, x, xd, xdDot)
	return z[0]*e1 + z[1]*x + p.K*e2
}

// Derive returns the controller-state derivative.
func (p *PI) Derive(z dynamo.State, x, xd, xdDot float64) dynamo.State {
	e, e1, e2 := p.errors(z, x, xd, xdDot)
	gain := 0.0
	if p.Enabled {
		gain = 1.0
	}
	return dynamo.State{
		gain * p.Gamma1 * e2 * e1,
		gain * p.Gamma2 * e2 * x,
		e,
	}
}
