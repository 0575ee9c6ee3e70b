package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles is the set of lipgloss styles derived from a theme.
type styles struct {
	title   lipgloss.Style
	panel   lipgloss.Style
	local   lipgloss.Style
	remote  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	up      lipgloss.Style
	down    lipgloss.Style
	key     lipgloss.Style
	hint    lipgloss.Style
	err     lipgloss.Style
}

func newStyles(t Theme) styles {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(30)

	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		panel:   panel,
		local:   panel.BorderForeground(t.Local),
		remote:  panel.BorderForeground(t.Remote),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		up:      lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		down:    lipgloss.NewStyle().Bold(true).Foreground(t.Error).Blink(true),
		key:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		hint:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		err:     lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// CenterBar draws v in [-1, 1] as a bar growing left or right from a
// centre tick. Values outside the range are clipped.
func CenterBar(v float64, width int) string {
	if width < 3 {
		width = 3
	}
	half := width / 2
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(-1, math.Min(1, v))
	n := int(math.Round(math.Abs(v) * float64(half)))

	cells := []rune(strings.Repeat("·", width))
	cells[half] = '│'
	for i := 1; i <= n; i++ {
		if v > 0 && half+i < width {
			cells[half+i] = '█'
		} else if v < 0 && half-i >= 0 {
			cells[half-i] = '█'
		}
	}
	return string(cells)
}

// Sparkline renders the tail of values that fits in width, scaled to its
// own min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(len(chars)-1, idx))
		b.WriteRune(chars[idx])
	}
	return b.String()
}
