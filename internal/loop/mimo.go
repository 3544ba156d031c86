package loop

import (
	"github.com/controldev/mracsim/internal/adaptive"
	"github.com/controldev/mracsim/internal/command"
	"github.com/controldev/mracsim/internal/dynamo"
	"github.com/controldev/mracsim/internal/plant"
	"github.com/controldev/mracsim/internal/sim"
)

// MIMO is the multivariable adaptive loop. The regressor is
// omega = [y_p..., r...]; each output error component drives its row of
// the gain matrix. Composite state layout:
//
//	[ x_p (n_p) | x_m (n_m) | Theta (m*q, row-major) ]
type MIMO struct {
	plant *plant.StateSpace
	ref   *plant.StateSpace
	law   *adaptive.MIMO
	cmds  []command.Profile

	x0     dynamo.State
	np, nm int
}

// NewMIMO wires an m-input p-output plant to a reference model with the
// same output count and one command profile per input channel.
func NewMIMO(p, ref *plant.StateSpace, law *adaptive.MIMO, cmds []command.Profile, xp0, xm0 dynamo.State, theta0 dynamo.State) (*MIMO, error) {
	if p.Outputs() != p.Inputs() {
		return nil, dynamo.Configf("plant", "gradient law needs a square plant, got %d inputs and %d outputs", p.Inputs(), p.Outputs())
	}
	if ref.Outputs() != p.Outputs() {
		return nil, dynamo.Configf("ref_model", "%d outputs, plant has %d", ref.Outputs(), p.Outputs())
	}
	if ref.Inputs() != p.Inputs() {
		return nil, dynamo.Configf("ref_model", "%d inputs, plant has %d", ref.Inputs(), p.Inputs())
	}
	if law.Inputs() != p.Inputs() {
		return nil, dynamo.Configf("mimo", "law drives %d inputs, plant has %d", law.Inputs(), p.Inputs())
	}
	if want := p.Outputs() + p.Inputs(); law.Regressor() != want {
		return nil, dynamo.Configf("mimo", "law regressor dimension %d, want %d", law.Regressor(), want)
	}
	if len(cmds) != p.Inputs() {
		return nil, dynamo.Configf("command", "%d profiles, want one per input (%d)", len(cmds), p.Inputs())
	}
	if len(xp0) != p.Order() {
		return nil, dynamo.Configf("init.x_p", "%d entries, want %d", len(xp0), p.Order())
	}
	if len(xm0) != ref.Order() {
		return nil, dynamo.Configf("init.x_m", "%d entries, want %d", len(xm0), ref.Order())
	}
	if theta0 == nil {
		theta0 = make(dynamo.State, law.StateDim())
	}
	if len(theta0) != law.StateDim() {
		return nil, dynamo.Configf("init.theta", "%d entries, want %d", len(theta0), law.StateDim())
	}

	x0 := make(dynamo.State, 0, p.Order()+ref.Order()+law.StateDim())
	x0 = append(x0, xp0...)
	x0 = append(x0, xm0...)
	x0 = append(x0, theta0...)

	return &MIMO{
		plant: p, ref: ref, law: law, cmds: cmds,
		x0: x0, np: p.Order(), nm: ref.Order(),
	}, nil
}

func (l *MIMO) StateDim() int   { return l.np + l.nm + l.law.StateDim() }
func (l *MIMO) ControlDim() int { return 0 }

func (l *MIMO) Initial() dynamo.State { return l.x0.Clone() }

func (l *MIMO) split(x dynamo.State) (xp, xm, z dynamo.State) {
	return x[:l.np], x[l.np : l.np+l.nm], x[l.np+l.nm:]
}

func (l *MIMO) command(t float64) []float64 {
	r := make([]float64, len(l.cmds))
	for i, c := range l.cmds {
		r[i] = c.At(t)
	}
	return r
}

func (l *MIMO) signals(t float64, x dynamo.State) (r, omega, e []float64, z dynamo.State) {
	xp, xm, z := l.split(x)
	r = l.command(t)

	yp := l.plant.Output(xp)
	ym := l.ref.Output(xm)

	e = make([]float64, len(yp))
	for i := range yp {
		e[i] = yp[i] - ym[i]
	}

	omega = make([]float64, 0, len(yp)+len(r))
	omega = append(omega, yp...)
	omega = append(omega, r...)
	return
}

func (l *MIMO) Derive(x dynamo.State, _ dynamo.Control, t float64) dynamo.State {
	xp, xm, _ := l.split(x)
	r, omega, e, z := l.signals(t, x)

	u := l.law.Control(z, omega)

	dx := make(dynamo.State, 0, l.StateDim())
	dx = append(dx, l.plant.Derive(xp, u)...)
	dx = append(dx, l.ref.Derive(xm, r)...)
	dx = append(dx, l.law.Derive(omega, e)...)
	return dx
}

func (l *MIMO) Snapshot(t float64, x dynamo.State) sim.Record {
	xp, xm, _ := l.split(x)
	_, omega, e, z := l.signals(t, x)
	u := l.law.Control(z, omega)

	return sim.Record{
		T:     t,
		XP:    xp.Clone(),
		XM:    xm.Clone(),
		Theta: z.Clone(),
		U:     dynamo.Control(u),
		E:     dynamo.State(e),
	}
}
