package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name      string
	Structure lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	// stress ramp, unloaded to saturated
	Low  lipgloss.Color
	High lipgloss.Color
}

var (
	ThemeBlueprint = Theme{
		Name:      "blueprint",
		Structure: lipgloss.Color("#9ecbff"),
		Accent:    lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4a6d8c"),
		Low:       lipgloss.Color("#3fb4ff"),
		High:      lipgloss.Color("#ff5a5a"),
	}

	ThemeSteel = Theme{
		Name:      "steel",
		Structure: lipgloss.Color("#c0c4cc"),
		Accent:    lipgloss.Color("#ffb000"),
		Text:      lipgloss.Color("#f0f0f0"),
		Muted:     lipgloss.Color("#6b6f78"),
		Low:       lipgloss.Color("#5fd068"),
		High:      lipgloss.Color("#ff4757"),
	}

	ThemeChalk = Theme{
		Name:      "chalk",
		Structure: lipgloss.Color("#ffffff"),
		Accent:    lipgloss.Color("#feca57"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#777777"),
		Low:       lipgloss.Color("#88ff88"),
		High:      lipgloss.Color("#ff8800"),
	}

	CurrentTheme = ThemeBlueprint

	Themes = []Theme{
		ThemeBlueprint,
		ThemeSteel,
		ThemeChalk,
	}
)

// GetTheme falls back to the blueprint theme for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeBlueprint
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}
