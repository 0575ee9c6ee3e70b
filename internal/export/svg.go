// Package export renders recorded telemetry as standalone SVG files.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Trace is one named column plotted against time.
type Trace struct {
	Name   string
	Color  string
	Values []float64
}

type Point struct {
	X, Y float64
}

// Palette is cycled for traces without a colour.
var Palette = []string{"#00ccff", "#ff66cc", "#ffcc00", "#00ff88", "#ff4444", "#aa88ff"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) pad() {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	b.minX -= rx * 0.05
	b.maxX += rx * 0.05
	b.minY -= ry * 0.1
	b.maxY += ry * 0.1
}

func (b bounds) project(p Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

func writePath(sb *strings.Builder, pts []Point, b bounds, width, height int, stroke string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke))
	pen := false
	for _, p := range pts {
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			pen = false
			continue
		}
		x, y := b.project(p, width, height)
		if !pen {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			pen = true
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}

// TracesToSVG draws every trace against times on shared axes, with a
// legend in the top-left corner. Non-finite samples break the line.
func TracesToSVG(times []float64, traces []Trace, width, height int) string {
	if len(times) < 2 || len(traces) == 0 {
		return ""
	}

	b := bounds{minX: times[0], maxX: times[len(times)-1], minY: math.Inf(1), maxY: math.Inf(-1)}
	for _, tr := range traces {
		for _, v := range tr.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			b.minY = math.Min(b.minY, v)
			b.maxY = math.Max(b.maxY, v)
		}
	}
	if math.IsInf(b.minY, 1) {
		b.minY, b.maxY = 0, 0
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)

	// zero line
	if b.minY < 0 && b.maxY > 0 {
		_, y0 := b.project(Point{Y: 0}, width, height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333344" stroke-dasharray="4,4"/>
`, y0, width, y0))
	}

	for i, tr := range traces {
		color := tr.Color
		if color == "" {
			color = Palette[i%len(Palette)]
		}
		n := min(len(times), len(tr.Values))
		pts := make([]Point, n)
		for j := 0; j < n; j++ {
			pts[j] = Point{X: times[j], Y: tr.Values[j]}
		}
		writePath(&sb, pts, b, width, height, color)
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*i, color, escape(tr.Name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a parametric curve, e.g. local against remote
// position.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	b := bounds{minX: points[0].X, maxX: points[0].X, minY: points[0].Y, maxY: points[0].Y}
	for _, p := range points {
		b.minX = math.Min(b.minX, p.X)
		b.maxX = math.Max(b.maxX, p.X)
		b.minY = math.Min(b.minY, p.Y)
		b.maxY = math.Max(b.maxY, p.Y)
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)
	writePath(&sb, points, b, width, height, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
