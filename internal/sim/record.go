package sim

import "github.com/controldev/mracsim/internal/dynamo"

// Record is one step of a simulation history: time, plant state,
// reference state, parameter estimate, and applied control input.
type Record struct {
	T     float64        `json:"t"`
	XP    dynamo.State   `json:"xp"`
	XM    dynamo.State   `json:"xm"`
	Theta dynamo.State   `json:"theta"`
	U     dynamo.Control `json:"u"`

	// E is the output tracking error, set by loops whose plant and
	// reference states are not directly comparable.
	E dynamo.State `json:"e,omitempty"`
}

// TrackingError is the output tracking error e = y_p - y_m, falling back
// to the state difference when the loop did not record outputs.
func (r Record) TrackingError() dynamo.State {
	if r.E != nil {
		return r.E.Clone()
	}
	return r.XP.Sub(r.XM)
}

// Loop is a closed adaptive loop: a composite ODE over
// [x_p | x_m | controller states] that knows how to snapshot itself into
// a Record.
type Loop interface {
	dynamo.System

	// Initial assembles the composite initial state.
	Initial() dynamo.State

	// Snapshot decomposes a composite state into a Record, recomputing
	// the control input that the loop would apply at (t, x).
	Snapshot(t float64, x dynamo.State) Record
}

// Metric accumulates a scalar summary over the run's records.
type Metric interface {
	Name() string
	Observe(rec Record)
	Value() float64
	Reset()
}

// Status is the simulator lifecycle. There are no transitions out of the
// two terminal states.
type Status int

const (
	Configured Status = iota
	Running
	Completed
	Halted
)

func (s Status) String() string {
	switch s {
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Config bounds a single run. Steps wins over Duration when both are set.
type Config struct {
	Dt       float64
	Duration float64
	Steps    int
}

// StepCount resolves the horizon in integration steps.
func (c Config) StepCount() int {
	if c.Steps > 0 {
		return c.Steps
	}
	return int(c.Duration / c.Dt)
}

// Result is the sole output artifact of a run: an append-only history
// plus summary metrics. On a halted run Records holds every step up to
// the last valid one and Err carries the NumericalError.
type Result struct {
	Records    []Record
	Metrics    map[string]float64
	Status     Status
	StepsTaken int
	Err        error
}

// Final returns the last record of the history.
func (r *Result) Final() Record {
	return r.Records[len(r.Records)-1]
}

// At returns the record at the given step index (0 is the initial state).
func (r *Result) At(step int) Record {
	return r.Records[step]
}
