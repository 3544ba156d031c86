package experiment

import (
	"context"
	"sync"

	"github.com/controldev/mracsim/internal/config"
	"github.com/controldev/mracsim/internal/dynamo"
	"github.com/controldev/mracsim/internal/sim"
)

// Axis names a scenario parameter and the values to sweep it over.
type Axis struct {
	Param  string
	Values []float64
}

// SweepRun is the outcome of one point on the axis. A failed run keeps
// its error here instead of aborting the sweep.
type SweepRun struct {
	Param  string
	Value  float64
	Result *sim.Result
	Err    error
}

// Sweep runs the base scenario once per axis value, in parallel. Each
// run builds its own simulator from a cloned configuration, so runs
// share nothing and the output order matches the axis order.
func Sweep(ctx context.Context, base *config.Config, ax Axis) ([]SweepRun, error) {
	if len(ax.Values) == 0 {
		return nil, dynamo.Configf("sweep.values", "empty axis")
	}
	if err := apply(base.Clone(), ax.Param, ax.Values[0]); err != nil {
		return nil, err
	}

	runs := make([]SweepRun, len(ax.Values))

	var wg sync.WaitGroup
	for i, v := range ax.Values {
		wg.Add(1)
		go func(idx int, val float64) {
			defer wg.Done()

			run := SweepRun{Param: ax.Param, Value: val}
			cfg := base.Clone()
			if run.Err = apply(cfg, ax.Param, val); run.Err == nil {
				var s *sim.Simulator
				if s, run.Err = Build(cfg); run.Err == nil {
					run.Result, run.Err = s.Run(ctx)
				}
			}
			runs[idx] = run
		}(i, v)
	}
	wg.Wait()

	return runs, nil
}

func apply(cfg *config.Config, param string, v float64) error {
	switch param {
	case "gamma":
		cfg.Adaptive.Gamma = nil
		cfg.Adaptive.GammaScalar = v
	case "sigma":
		cfg.Adaptive.Sigma = v
	case "l":
		cfg.RefModel.L = v
		if v != 0 {
			cfg.RefModel.Mode = "closed"
		}
	case "u_max":
		cfg.Plant.UMax = v
	case "gamma_beta":
		cfg.Adaptive.GammaBeta = v
	case "dt":
		cfg.Dt = v
	default:
		return dynamo.Configf("sweep.param", "unknown parameter %q", param)
	}
	return nil
}
