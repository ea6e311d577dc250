package viz

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used for frames and legends.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:    "space",
		Primary: lipgloss.Color("#ffd166"), // star yellow
		Accent:  lipgloss.Color("#00ccff"),
		Border:  lipgloss.Color("#444466"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"), // green phosphor
		Accent:  lipgloss.Color("#88ff88"),
		Border:  lipgloss.Color("#005500"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Border:  lipgloss.Color("#888888"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
	}
)

var themes = map[string]Theme{
	ThemeDeepSpace.Name:  ThemeDeepSpace,
	ThemeRetroGreen.Name: ThemeRetroGreen,
	ThemeMinimal.Name:    ThemeMinimal,
}

// ThemeByName returns the named theme, falling back to ThemeDeepSpace.
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[name]
	if !ok {
		return ThemeDeepSpace, false
	}
	return t, true
}

func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
