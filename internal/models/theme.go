package models

import "strings"

// Theme identifies a color palette for the dashboard.
type Theme int

const (
	// ThemeDark is the default palette.
	ThemeDark Theme = iota
	// ThemeLight is a light-background palette.
	ThemeLight
	// ThemeDracula is the Dracula palette.
	ThemeDracula
	// ThemeNord is the Nord palette.
	ThemeNord
	// ThemeMonokai is the Monokai palette.
	ThemeMonokai
	// ThemeGruvbox is the Gruvbox palette.
	ThemeGruvbox
)

// ParseTheme maps a configured name to a Theme. Unknown names fall back to
// the dark theme.
func ParseTheme(s string) Theme {
	switch strings.ToLower(s) {
	case "light":
		return ThemeLight
	case "dracula":
		return ThemeDracula
	case "nord":
		return ThemeNord
	case "monokai":
		return ThemeMonokai
	case "gruvbox":
		return ThemeGruvbox
	default:
		return ThemeDark
	}
}

// String returns the configuration name of the theme.
func (t Theme) String() string {
	switch t {
	case ThemeLight:
		return "light"
	case ThemeDracula:
		return "dracula"
	case ThemeNord:
		return "nord"
	case ThemeMonokai:
		return "monokai"
	case ThemeGruvbox:
		return "gruvbox"
	default:
		return "dark"
	}
}

// ThemeNames lists the selectable themes in menu order.
func ThemeNames() []string {
	return []string{"dark", "light", "dracula", "nord", "monokai", "gruvbox"}
}
