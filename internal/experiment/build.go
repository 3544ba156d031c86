// Package experiment assembles simulators from scenario configurations
// and drives parameter sweeps over them.
package experiment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/controldev/mracsim/internal/adaptive"
	"github.com/controldev/mracsim/internal/command"
	"github.com/controldev/mracsim/internal/config"
	"github.com/controldev/mracsim/internal/dynamo"
	"github.com/controldev/mracsim/internal/integrators"
	"github.com/controldev/mracsim/internal/loop"
	"github.com/controldev/mracsim/internal/metrics"
	"github.com/controldev/mracsim/internal/plant"
	"github.com/controldev/mracsim/internal/refmodel"
	"github.com/controldev/mracsim/internal/sim"
)

// Build wires a scenario configuration into a configured simulator,
// ready to Run. The returned simulator carries the standard metric set.
func Build(cfg *config.Config) (*sim.Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		lp  sim.Loop
		err error
	)
	switch cfg.Kind {
	case config.KindMRAC:
		lp, err = buildMRAC(cfg)
	case config.KindPI:
		lp, err = buildPI(cfg)
	case config.KindMIMO:
		lp, err = buildMIMO(cfg)
	}
	if err != nil {
		return nil, err
	}

	s := sim.New(lp, integrator(cfg.Integrator))
	s.AddMetric(metrics.NewTrackingRMS())
	s.AddMetric(metrics.NewParamNorm())
	s.AddMetric(metrics.NewControlEffort())
	if cfg.Plant.Saturate {
		s.AddMetric(metrics.NewSaturationDuty(cfg.Plant.UMax))
	}

	if err := s.Configure(sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, Steps: cfg.Steps}); err != nil {
		return nil, err
	}
	return s, nil
}

func integrator(name string) dynamo.Integrator {
	if name == "euler" {
		return integrators.NewEuler()
	}
	return integrators.NewRK4()
}

func buildMRAC(cfg *config.Config) (sim.Loop, error) {
	p, err := plant.NewLinear(cfg.Plant.A, cfg.Plant.B, cfg.Plant.C, cfg.Plant.Bias)
	if err != nil {
		return nil, err
	}
	if cfg.Plant.Saturate {
		if _, err := p.WithSaturation(cfg.Plant.UMax); err != nil {
			return nil, err
		}
	}

	mode, err := parseMode(cfg.RefModel.Mode)
	if err != nil {
		return nil, err
	}
	m, err := refmodel.New(cfg.RefModel.A, cfg.RefModel.B, cfg.RefModel.C, mode, cfg.RefModel.L)
	if err != nil {
		return nil, err
	}

	opts := adaptive.Options{
		Sigma:            cfg.Adaptive.Sigma,
		AdaptFeedforward: cfg.Adaptive.AdaptFeedforward,
		KFixed:           cfg.Adaptive.KFixed,
		Protect:          cfg.Adaptive.SaturationProtection,
		GammaBeta:        cfg.Adaptive.GammaBeta,
		AM:               m.Am00(),
	}
	gamma := cfg.Adaptive.Gamma
	if gamma == nil {
		d := p.Order()
		if opts.AdaptFeedforward {
			d++
		}
		gamma = scaledIdentity(cfg.Adaptive.GammaScalar, d)
	}
	law, err := adaptive.NewLaw(gamma, p.SignB(), p.Order(), opts)
	if err != nil {
		return nil, err
	}

	cmd, err := command.New(cfg.Command.Type, cfg.Command.Amp, cfg.Command.Freq, cfg.Command.Start)
	if err != nil {
		return nil, err
	}

	return loop.NewSISO(p, m, law, cmd,
		dynamo.State(cfg.Init.XP),
		dynamo.State(cfg.Init.XM),
		dynamo.State(cfg.Init.Controller))
}

func buildPI(cfg *config.Config) (sim.Loop, error) {
	if cfg.PI.Inertia <= 0 {
		return nil, dynamo.Configf("adaptive_pi.inertia", "must be positive, got %v", cfg.PI.Inertia)
	}
	// Motor J*xdot + b*x = u as a first-order state-space plant.
	p, err := plant.NewLinear(
		[][]float64{{-cfg.PI.Damping / cfg.PI.Inertia}},
		[]float64{1 / cfg.PI.Inertia},
		[]float64{1}, 0)
	if err != nil {
		return nil, err
	}

	ctl, err := adaptive.NewPI(cfg.PI.K, cfg.PI.Lambda, cfg.PI.Gamma1, cfg.PI.Gamma2, cfg.PI.Adaptive)
	if err != nil {
		return nil, err
	}

	cmd, err := command.New(cfg.Command.Type, cfg.Command.Amp, cfg.Command.Freq, cfg.Command.Start)
	if err != nil {
		return nil, err
	}

	if len(cfg.Init.XP) != 1 {
		return nil, dynamo.Configf("init.x_p", "want 1 element, got %d", len(cfg.Init.XP))
	}
	return loop.NewPI(p, ctl, cmd, cfg.Init.XP[0], dynamo.State(cfg.Init.Controller))
}

func buildMIMO(cfg *config.Config) (sim.Loop, error) {
	a, err := dense("mimo.a", cfg.MIMO.A)
	if err != nil {
		return nil, err
	}
	b, err := dense("mimo.b", cfg.MIMO.B)
	if err != nil {
		return nil, err
	}
	c, err := dense("mimo.c", cfg.MIMO.C)
	if err != nil {
		return nil, err
	}
	p, err := plant.NewStateSpace(a, b, c)
	if err != nil {
		return nil, err
	}

	ra, err := dense("mimo.ref_a", cfg.MIMO.RefA)
	if err != nil {
		return nil, err
	}
	rb, err := dense("mimo.ref_b", cfg.MIMO.RefB)
	if err != nil {
		return nil, err
	}
	rc, err := dense("mimo.ref_c", cfg.MIMO.RefC)
	if err != nil {
		return nil, err
	}
	ref, err := plant.NewStateSpace(ra, rb, rc)
	if err != nil {
		return nil, err
	}

	law, err := adaptive.NewMIMO(cfg.MIMO.Gamma, p.Inputs(), p.Outputs()+p.Inputs())
	if err != nil {
		return nil, err
	}

	cmds := make([]command.Profile, p.Inputs())
	kinds := []struct {
		kind            string
		amp, freq, from float64
	}{
		{cfg.Command.Type, cfg.Command.Amp, cfg.Command.Freq, cfg.Command.Start},
		{cfg.Command.Type2, cfg.Command.Amp2, cfg.Command.Freq2, 0},
	}
	for i := range cmds {
		ch := kinds[len(kinds)-1]
		if i < len(kinds) {
			ch = kinds[i]
		}
		cmds[i], err = command.New(ch.kind, ch.amp, ch.freq, ch.from)
		if err != nil {
			return nil, err
		}
	}

	return loop.NewMIMO(p, ref, law, cmds,
		dynamo.State(cfg.Init.XP),
		dynamo.State(cfg.Init.XM),
		dynamo.State(cfg.Init.Controller))
}

func parseMode(name string) (refmodel.Mode, error) {
	switch name {
	case "", "open":
		return refmodel.Open, nil
	case "closed":
		return refmodel.Closed, nil
	}
	return refmodel.Open, dynamo.Configf("ref_model.mode", "unknown mode %q", name)
}

func scaledIdentity(g float64, d int) [][]float64 {
	out := make([][]float64, d)
	for i := range out {
		out[i] = make([]float64, d)
		out[i][i] = g
	}
	return out
}

func dense(field string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, dynamo.Configf(field, "empty matrix")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return nil, dynamo.Configf(field, "ragged matrix: row length %d, want %d", len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
