package analysis

import "strings"

// PhasePortrait2D holds one column plotted against another.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []struct{ X, Y float64 }
}

// NewPhasePortrait pairs columns xIdx and yIdx of recorded rows.
func NewPhasePortrait(rows [][]float64, xIdx, yIdx int) *PhasePortrait2D {
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]struct{ X, Y float64 }, 0, len(rows)),
	}
	for _, row := range rows {
		if xIdx >= len(row) || yIdx >= len(row) {
			continue
		}
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{X: row[xIdx], Y: row[yIdx]})
	}
	return portrait
}

// ASCII draws the portrait on a width×height grid. Both axes share one
// scale and the diagonal is drawn, so perfect tracking lies on the line.
func (p *PhasePortrait2D) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := p.Points[0].X, p.Points[0].X
	for _, pt := range p.Points {
		lo = min(lo, pt.X, pt.Y)
		hi = max(hi, pt.X, pt.Y)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	cell := func(x, y float64) (int, int) {
		col := int((x - lo) / span * float64(width-1))
		row := height - 1 - int((y-lo)/span*float64(height-1))
		return row, col
	}

	for i := 0; i < width; i++ {
		v := lo + span*float64(i)/float64(width-1)
		if row, col := cell(v, v); row >= 0 && row < height {
			canvas[row][col] = '·'
		}
	}
	for _, pt := range p.Points {
		row, col := cell(pt.X, pt.Y)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
