package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme colours the live view. Local and Remote tint each peer's panel
// and its series in the position graph.
type Theme struct {
	Name        string
	Primary     lipgloss.Color
	Border      lipgloss.Color
	Text        lipgloss.Color
	Muted       lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Error       lipgloss.Color
	Local       lipgloss.Color
	Remote      lipgloss.Color
	LocalGraph  asciigraph.AnsiColor
	RemoteGraph asciigraph.AnsiColor
}

var (
	ThemeCyberpunk = Theme{
		Name:        "cyberpunk",
		Primary:     lipgloss.Color("#00ffff"),
		Border:      lipgloss.Color("#444466"),
		Text:        lipgloss.Color("#ffffff"),
		Muted:       lipgloss.Color("#666688"),
		Success:     lipgloss.Color("#00ff88"),
		Warning:     lipgloss.Color("#ffaa00"),
		Error:       lipgloss.Color("#ff4444"),
		Local:       lipgloss.Color("#00ccff"),
		Remote:      lipgloss.Color("#ff66cc"),
		LocalGraph:  asciigraph.Cyan,
		RemoteGraph: asciigraph.Magenta,
	}

	ThemeRetroGreen = Theme{
		Name:        "retro",
		Primary:     lipgloss.Color("#00ff00"),
		Border:      lipgloss.Color("#005500"),
		Text:        lipgloss.Color("#00ff00"),
		Muted:       lipgloss.Color("#008800"),
		Success:     lipgloss.Color("#88ff88"),
		Warning:     lipgloss.Color("#ffff00"),
		Error:       lipgloss.Color("#ff0000"),
		Local:       lipgloss.Color("#88ff88"),
		Remote:      lipgloss.Color("#ffff00"),
		LocalGraph:  asciigraph.Green,
		RemoteGraph: asciigraph.Yellow,
	}

	ThemeOcean = Theme{
		Name:        "ocean",
		Primary:     lipgloss.Color("#00a8cc"),
		Border:      lipgloss.Color("#4488aa"),
		Text:        lipgloss.Color("#e0f0ff"),
		Muted:       lipgloss.Color("#4488aa"),
		Success:     lipgloss.Color("#00ff88"),
		Warning:     lipgloss.Color("#ffcc00"),
		Error:       lipgloss.Color("#ff4444"),
		Local:       lipgloss.Color("#00a8cc"),
		Remote:      lipgloss.Color("#ffd700"),
		LocalGraph:  asciigraph.Blue,
		RemoteGraph: asciigraph.Gold,
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeOcean}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// next returns the theme after t in Themes.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
