// Package sim orchestrates adaptive-control simulation runs.
//
// A [Simulator] advances a [Loop] (the composite plant/reference/adaptive
// system) with a fixed-step integrator through a bounded horizon,
// producing an append-only history of [Record] values. The lifecycle is
//
//	Configured -> Running -> {Completed, Halted}
//
// with no transitions out of the terminal states. A halted run (numerical
// divergence or cancellation) always leaves a valid history up to the
// last completed step.
//
// Execution is single-threaded and deterministic: the same configuration
// produces an identical history on every run. Independent runs own their
// state exclusively and may execute concurrently; see the experiment
// package for the parallel sweep driver.
package sim
