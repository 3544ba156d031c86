// Package export renders run histories to standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/controldev/mracsim/internal/sim"
)

const (
	svgWidth  = 800
	svgHeight = 400
	margin    = 40
)

var seriesColors = []string{"#00d7af", "#ffaf00", "#ff5f87", "#5fafff", "#d787ff"}

// Chart draws the plant output, reference output, and control input of a
// run as polylines on a shared time axis.
func Chart(records []sim.Record, title string) string {
	if len(records) < 2 {
		return ""
	}

	series := [][]float64{
		column(records, func(rec sim.Record) float64 { return rec.XP[0] }),
		column(records, func(rec sim.Record) float64 {
			if len(rec.XM) == 0 {
				return 0
			}
			return rec.XM[0]
		}),
	}
	labels := []string{"plant", "reference"}
	if len(records[0].U) > 0 {
		series = append(series, column(records, func(rec sim.Record) float64 { return rec.U[0] }))
		labels = append(labels, "control")
	}

	lo, hi := bounds(series)
	if hi == lo {
		hi = lo + 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="%d" y="24" fill="#e4e4e4" font-family="monospace" font-size="14">%s</text>
`, svgWidth, svgHeight, svgWidth, svgHeight, margin, title))

	// Axes.
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#444"/>
<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#444"/>
`, margin, svgHeight-margin, svgWidth-margin, svgHeight-margin,
		margin, margin, margin, svgHeight-margin))

	tMax := records[len(records)-1].T
	for i, vals := range series {
		color := seriesColors[i%len(seriesColors)]
		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, color))
		for j, v := range vals {
			x := float64(margin) + records[j].T/tMax*float64(svgWidth-2*margin)
			y := float64(svgHeight-margin) - (v-lo)/(hi-lo)*float64(svgHeight-2*margin)
			sb.WriteString(fmt.Sprintf("%.1f,%.1f ", x, y))
		}
		sb.WriteString("\"/>\n")

		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, svgWidth-margin-80, margin+16*(i+1), color, labels[i]))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func column(records []sim.Record, pick func(sim.Record) float64) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = pick(rec)
	}
	return out
}

func bounds(series [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, vals := range series {
		for _, v := range vals {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}
