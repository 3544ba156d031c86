// Package loop couples plants, reference models, and adaptive laws into
// single composite ODE systems, the interconnection layer the simulator
// integrates as one state vector.
package loop

import (
	"github.com/controldev/mracsim/internal/adaptive"
	"github.com/controldev/mracsim/internal/command"
	"github.com/controldev/mracsim/internal/dynamo"
	"github.com/controldev/mracsim/internal/plant"
	"github.com/controldev/mracsim/internal/refmodel"
	"github.com/controldev/mracsim/internal/sim"
)

// SISO is the single-input closed adaptive loop. Composite state layout:
//
//	[ x_p (n) | x_m (n) | theta..., k?, beta_delta?, e_delta? ]
type SISO struct {
	plant *plant.Linear
	ref   *refmodel.Model
	law   *adaptive.Law
	cmd   command.Profile

	x0 dynamo.State
	n  int
}

// NewSISO wires the loop and validates that every piece agrees on the
// plant order. Initial controller state z0 may be nil for all-zero
// estimates.
func NewSISO(p *plant.Linear, m *refmodel.Model, law *adaptive.Law, cmd command.Profile, xp0, xm0, z0 dynamo.State) (*SISO, error) {
	n := p.Order()
	if m.Order() != n {
		return nil, dynamo.Configf("ref_model", "order %d does not match plant order %d", m.Order(), n)
	}
	if law.Order() != n {
		return nil, dynamo.Configf("adaptive", "law built for order %d, plant has order %d", law.Order(), n)
	}
	if len(xp0) != n {
		return nil, dynamo.Configf("init.x_p", "%d entries, want %d", len(xp0), n)
	}
	if len(xm0) != n {
		return nil, dynamo.Configf("init.x_m", "%d entries, want %d", len(xm0), n)
	}
	if z0 == nil {
		z0 = make(dynamo.State, law.StateDim())
	}
	if len(z0) != law.StateDim() {
		return nil, dynamo.Configf("init.controller", "%d entries, want %d", len(z0), law.StateDim())
	}

	x0 := make(dynamo.State, 0, 2*n+law.StateDim())
	x0 = append(x0, xp0...)
	x0 = append(x0, xm0...)
	x0 = append(x0, z0...)

	return &SISO{plant: p, ref: m, law: law, cmd: cmd, x0: x0, n: n}, nil
}

func (l *SISO) StateDim() int   { return 2*l.n + l.law.StateDim() }
func (l *SISO) ControlDim() int { return 0 }

func (l *SISO) Initial() dynamo.State { return l.x0.Clone() }

func (l *SISO) split(x dynamo.State) (xp, xm, z dynamo.State) {
	return x[:l.n], x[l.n : 2*l.n], x[2*l.n:]
}

// Derive evaluates the interconnected dynamics: control law, saturation,
// plant, reference model, and parameter update, in that order.
func (l *SISO) Derive(x dynamo.State, _ dynamo.Control, t float64) dynamo.State {
	xp, xm, z := l.split(x)

	r := l.cmd.At(t)
	e := l.plant.Output(xp) - l.ref.Output(xm)

	uC := l.law.Control(z, xp, r)
	u, deltaU := l.plant.Apply(uC)

	dx := make(dynamo.State, 0, l.StateDim())
	dx = append(dx, l.plant.Derive(xp, u)...)
	dx = append(dx, l.ref.Derive(xm, r, e)...)
	dx = append(dx, l.law.Derive(z, xp, r, e, deltaU)...)
	return dx
}

func (l *SISO) Snapshot(t float64, x dynamo.State) sim.Record {
	xp, xm, z := l.split(x)

	r := l.cmd.At(t)
	uC := l.law.Control(z, xp, r)
	u, _ := l.plant.Apply(uC)

	return sim.Record{
		T:     t,
		XP:    xp.Clone(),
		XM:    xm.Clone(),
		Theta: l.law.Theta(z),
		U:     dynamo.Control{u},
	}
}
