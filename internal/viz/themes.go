package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the view. Free, Reforming and Locked color the fragments.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Free      lipgloss.Color
	Reforming lipgloss.Color
	Locked    lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Accent:    lipgloss.Color("#00ffff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Free:      lipgloss.Color("#ff4444"),
		Reforming: lipgloss.Color("#ffff00"),
		Locked:    lipgloss.Color("#00ff88"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Free:      lipgloss.Color("#005500"),
		Reforming: lipgloss.Color("#00aa00"),
		Locked:    lipgloss.Color("#88ff88"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"),
		Accent:    lipgloss.Color("#feca57"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Free:      lipgloss.Color("#ff4757"),
		Reforming: lipgloss.Color("#ffc048"),
		Locked:    lipgloss.Color("#5fd068"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeSunset}
)

// GetTheme returns a theme by name, or the first theme.
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

// next returns the theme after t, wrapping around.
func (t Theme) next() Theme {
	for i, o := range Themes {
		if o.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
