// Package viz renders run histories in the terminal: static ascii charts
// for finished runs and a live streaming view.
package viz

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/controldev/mracsim/internal/sim"
)

const (
	chartWidth  = 70
	chartHeight = 10
)

// Tracking charts the plant and reference outputs on shared axes.
func Tracking(records []sim.Record) string {
	if len(records) == 0 {
		return ""
	}
	xp := make([]float64, len(records))
	xm := make([]float64, len(records))
	for i, rec := range records {
		xp[i] = rec.XP[0]
		if len(rec.XM) > 0 {
			xm[i] = rec.XM[0]
		}
	}
	return asciigraph.PlotMany([][]float64{xp, xm},
		asciigraph.Height(chartHeight), asciigraph.Width(chartWidth),
		asciigraph.Caption("plant (first series) vs reference"))
}

// Error charts the tracking error over time.
func Error(records []sim.Record) string {
	if len(records) == 0 {
		return ""
	}
	errs := make([]float64, len(records))
	for i, rec := range records {
		e := rec.TrackingError()
		errs[i] = e[0]
	}
	return asciigraph.Plot(errs,
		asciigraph.Height(chartHeight), asciigraph.Width(chartWidth),
		asciigraph.Caption("tracking error"))
}

// Gains charts every adapted parameter as its own series.
func Gains(records []sim.Record) string {
	if len(records) == 0 || len(records[0].Theta) == 0 {
		return ""
	}
	series := make([][]float64, len(records[0].Theta))
	for j := range series {
		series[j] = make([]float64, len(records))
	}
	for i, rec := range records {
		for j, v := range rec.Theta {
			series[j][i] = v
		}
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(chartHeight), asciigraph.Width(chartWidth),
		asciigraph.Caption("adapted gains"))
}

// Control charts the first channel of the control input.
func Control(records []sim.Record) string {
	if len(records) == 0 || len(records[0].U) == 0 {
		return ""
	}
	u := make([]float64, len(records))
	for i, rec := range records {
		u[i] = rec.U[0]
	}
	return asciigraph.Plot(u,
		asciigraph.Height(chartHeight), asciigraph.Width(chartWidth),
		asciigraph.Caption("control input"))
}

// Summary stacks the standard charts for a finished run.
func Summary(records []sim.Record) string {
	var b strings.Builder
	for _, chart := range []string{Tracking(records), Error(records), Gains(records), Control(records)} {
		if chart == "" {
			continue
		}
		b.WriteString(chart)
		b.WriteString("\n\n")
	}
	return b.String()
}

func errNorm(rec sim.Record) float64 {
	sum := 0.0
	for _, v := range rec.TrackingError() {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func gainNorm(rec sim.Record) float64 {
	sum := 0.0
	for _, v := range rec.Theta {
		sum += v * v
	}
	return math.Sqrt(sum)
}
