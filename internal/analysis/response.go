// Package analysis post-processes run histories: transient response
// statistics computed from the recorded tracking error.
package analysis

import (
	"math"

	"github.com/controldev/mracsim/internal/sim"
)

// Response summarizes how the plant followed the reference over a run.
type Response struct {
	// PeakError is the largest tracking error magnitude and PeakTime
	// when it occurred.
	PeakError float64
	PeakTime  float64

	// SettlingTime is the earliest time after which the error stays
	// inside the settling band. Negative if it never settles.
	SettlingTime float64

	// SteadyStateError is the mean error magnitude over the final
	// tenth of the run.
	SteadyStateError float64

	// ErrorL2 is the RMS tracking error over the whole run.
	ErrorL2 float64
}

// SettlingBand is the error magnitude below which a run counts as
// settled.
const SettlingBand = 0.02

// Analyze computes response statistics from a history. It needs at
// least two records.
func Analyze(records []sim.Record) Response {
	resp := Response{SettlingTime: -1}
	if len(records) < 2 {
		return resp
	}

	sumSq := 0.0
	for _, rec := range records {
		e := errMag(rec)
		sumSq += e * e
		if e > resp.PeakError {
			resp.PeakError = e
			resp.PeakTime = rec.T
		}
	}
	resp.ErrorL2 = math.Sqrt(sumSq / float64(len(records)))

	// Walk backwards to find the last excursion out of the band.
	settledFrom := -1
	for i := len(records) - 1; i >= 0; i-- {
		if errMag(records[i]) > SettlingBand {
			break
		}
		settledFrom = i
	}
	if settledFrom >= 0 {
		resp.SettlingTime = records[settledFrom].T
	}

	tail := records[len(records)-len(records)/10-1:]
	sum := 0.0
	for _, rec := range tail {
		sum += errMag(rec)
	}
	resp.SteadyStateError = sum / float64(len(tail))

	return resp
}

func errMag(rec sim.Record) float64 {
	sum := 0.0
	for _, v := range rec.TrackingError() {
		sum += v * v
	}
	return math.Sqrt(sum)
}
