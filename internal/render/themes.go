package render

import (
	"strings"

	"github.com/charmbracelet/glamour/styles"
)

// Glamour style names accepted in markdown.style
const (
	StyleDark       = styles.DarkStyle
	StyleLight      = styles.LightStyle
	StyleTokyoNight = styles.TokyoNightStyle
	StyleDracula    = styles.DraculaStyle
	StyleNoTTY      = styles.NoTTYStyle
	StyleASCII      = styles.AsciiStyle
)

// NormalizeStyle maps user-facing aliases onto glamour style names
func NormalizeStyle(style string) string {
	switch s := strings.ToLower(strings.TrimSpace(style)); s {
	case "":
		return StyleDark
	case "tokyonight", "tokyo_night":
		return StyleTokyoNight
	case "plain", "none":
		return StyleNoTTY
	default:
		if _, ok := styles.DefaultStyles[s]; ok {
			return s
		}
		// treated as a path to a JSON style file
		return style
	}
}

// IsBuiltinStyle returns true if the style ships with glamour
func IsBuiltinStyle(style string) bool {
	_, ok := styles.DefaultStyles[NormalizeStyle(style)]
	return ok
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes lists the markdown styles offered by `config themes`
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
