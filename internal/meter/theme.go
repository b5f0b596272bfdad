package meter

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors the four level bars.
type Theme struct {
	Name string
	Bars [barCount]lipgloss.Color
}

var themes = map[string]Theme{
	"google": {Name: "google", Bars: [barCount]lipgloss.Color{"#4285F4", "#EA4335", "#FBBC05", "#34A853"}},
	"blue":   {Name: "blue", Bars: [barCount]lipgloss.Color{"#1E88E5", "#42A5F5", "#64B5F6", "#90CAF9"}},
	"purple": {Name: "purple", Bars: [barCount]lipgloss.Color{"#9C27B0", "#AB47BC", "#BA68C8", "#CE93D8"}},
	"mono":   {Name: "mono", Bars: [barCount]lipgloss.Color{"#FFFFFF", "#C8C8C8", "#FFFFFF", "#C8C8C8"}},
}

// ThemeByName looks up a palette.
func ThemeByName(name string) (Theme, error) {
	theme, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
	return theme, nil
}

// ThemeNames lists the available palettes in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
