// Package dynamo provides the core vocabulary for adaptive-control
// simulation.
//
// The package defines the fundamental types shared by every layer:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical stepper interface
//
// and the two-way error taxonomy:
//
//   - [ConfigError]: invalid setup, surfaced at construction, never mid-run
//   - [NumericalError]: divergence mid-run, terminal, history preserved
//
// Both wrap package-level sentinels ([ErrConfig], [ErrNumerical]) so callers
// can classify failures with errors.Is without knowing the concrete type.
package dynamo
