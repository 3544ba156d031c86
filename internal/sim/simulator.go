package sim

import (
	"context"

	"github.com/controldev/mracsim/internal/dynamo"
)

// Simulator advances one adaptive loop through a fixed horizon. It is not
// safe for concurrent use; parallel sweeps build one Simulator per run.
type Simulator struct {
	loop       Loop
	integ      dynamo.Integrator
	metrics    []Metric
	cfg        Config
	configured bool
	status     Status
}

func New(loop Loop, integ dynamo.Integrator) *Simulator {
	return &Simulator{
		loop:   loop,
		integ:  integ,
		status: Configured,
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Status reports the lifecycle state of the most recent run.
func (s *Simulator) Status() Status { return s.status }

func (s *Simulator) validate(cfg Config) error {
	if cfg.Dt <= 0 {
		return dynamo.Configf("dt", "must be positive, got %v", cfg.Dt)
	}
	if cfg.StepCount() <= 0 {
		return dynamo.Configf("horizon", "must resolve to at least one step")
	}
	return nil
}

// Run executes the full horizon and returns the complete history. On
// numerical divergence the run halts, the history up to the last valid
// step is returned, and the error carries the step index. Cancellation
// between steps likewise preserves a consistent partial history.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if err := s.validateStart(); err != nil {
		return nil, err
	}
	cfg := s.cfg
	steps := cfg.StepCount()

	result := &Result{
		Records: make([]Record, 0, steps+1),
		Metrics: make(map[string]float64),
		Status:  Running,
	}
	s.status = Running

	for _, m := range s.metrics {
		m.Reset()
	}

	observe := func(rec Record) {
		result.Records = append(result.Records, rec)
		for _, m := range s.metrics {
			m.Observe(rec)
		}
	}

	x := s.loop.Initial()
	t := 0.0
	observe(s.loop.Snapshot(t, x))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.status = Halted
			result.Status = Halted
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		newX := s.integ.Step(s.loop, x, nil, t, cfg.Dt)
		if !newX.IsValid() {
			err := &dynamo.NumericalError{Step: i + 1, Time: t + cfg.Dt}
			s.status = Halted
			result.Status = Halted
			result.Err = err
			s.finish(result)
			return result, err
		}

		x = newX
		t += cfg.Dt
		result.StepsTaken++
		observe(s.loop.Snapshot(t, x))
	}

	s.status = Completed
	result.Status = Completed
	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Stream produces records lazily, one per step, until the horizon is
// reached, the callback returns false, the context is cancelled, or the
// state diverges. The loop restarts from its initial state on every call.
func (s *Simulator) Stream(ctx context.Context, fn func(Record) bool) error {
	if err := s.validateStart(); err != nil {
		return err
	}
	cfg := s.cfg
	steps := cfg.StepCount()
	s.status = Running

	x := s.loop.Initial()
	t := 0.0
	if !fn(s.loop.Snapshot(t, x)) {
		s.status = Completed
		return nil
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.status = Halted
			return ctx.Err()
		default:
		}

		newX := s.integ.Step(s.loop, x, nil, t, cfg.Dt)
		if !newX.IsValid() {
			s.status = Halted
			return &dynamo.NumericalError{Step: i + 1, Time: t + cfg.Dt}
		}

		x = newX
		t += cfg.Dt
		if !fn(s.loop.Snapshot(t, x)) {
			break
		}
	}

	s.status = Completed
	return nil
}

// Configure sets the horizon for subsequent Run/Stream calls. It resets a
// terminal simulator back to Configured.
func (s *Simulator) Configure(cfg Config) error {
	if err := s.validate(cfg); err != nil {
		return err
	}
	if n := s.loop.StateDim(); len(s.loop.Initial()) != n {
		return dynamo.Configf("init", "initial state has %d entries, loop needs %d", len(s.loop.Initial()), n)
	}
	s.cfg = cfg
	s.configured = true
	s.status = Configured
	return nil
}

func (s *Simulator) validateStart() error {
	if !s.configured {
		return dynamo.Configf("simulator", "not configured")
	}
	return nil
}
