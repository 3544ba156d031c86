package loop

import (
	"github.com/controldev/mracsim/internal/adaptive"
	"github.com/controldev/mracsim/internal/command"
	"github.com/controldev/mracsim/internal/dynamo"
	"github.com/controldev/mracsim/internal/plant"
	"github.com/controldev/mracsim/internal/sim"
)

// PI is the adaptive PI tracking loop for a first-order plant. The
// commanded trajectory x_d(t) plays the reference role; there is no
// separate reference model. Composite state layout:
//
//	[ x | J_hat, B_hat, e_i ]
type PI struct {
	plant *plant.Linear
	ctl   *adaptive.PI
	cmd   command.Profile

	x0 dynamo.State
}

func NewPI(p *plant.Linear, ctl *adaptive.PI, cmd command.Profile, x0 float64, z0 dynamo.State) (*PI, error) {
	if p.Order() != 1 {
		return nil, dynamo.Configf("plant", "adaptive PI needs a first-order plant, got order %d", p.Order())
	}
	if z0 == nil {
		z0 = make(dynamo.State, ctl.StateDim())
	}
	if len(z0) != ctl.StateDim() {
		return nil, dynamo.Configf("init.controller", "%d entries, want %d", len(z0), ctl.StateDim())
	}

	init := make(dynamo.State, 0, 1+ctl.StateDim())
	init = append(init, x0)
	init = append(init, z0...)

	return &PI{plant: p, ctl: ctl, cmd: cmd, x0: init}, nil
}

func (l *PI) StateDim() int   { return 1 + l.ctl.StateDim() }
func (l *PI) ControlDim() int { return 0 }

func (l *PI) Initial() dynamo.State { return l.x0.Clone() }

func (l *PI) Derive(x dynamo.State, _ dynamo.Control, t float64) dynamo.State {
	xPlant, z := x[:1], x[1:]
	xd := l.cmd.At(t)
	xdDot := l.cmd.Rate(t)

	uC := l.ctl.Control(z, xPlant[0], xd, xdDot)
	u, _ := l.plant.Apply(uC)

	dx := make(dynamo.State, 0, l.StateDim())
	dx = append(dx, l.plant.Derive(xPlant, u)...)
	dx = append(dx, l.ctl.Derive(z, xPlant[0], xd, xdDot)...)
	return dx
}

func (l *PI) Snapshot(t float64, x dynamo.State) sim.Record {
	xPlant, z := x[:1], x[1:]
	xd := l.cmd.At(t)

	uC := l.ctl.Control(z, xPlant[0], xd, l.cmd.Rate(t))
	u, _ := l.plant.Apply(uC)

	return sim.Record{
		T:     t,
		XP:    xPlant.Clone(),
		XM:    dynamo.State{xd},
		Theta: l.ctl.Theta(z),
		U:     dynamo.Control{u},
	}
}
