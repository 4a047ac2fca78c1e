// Package styles defines the theme palettes and lipgloss styles used by the
// dashboard.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

// Palette is the set of colors a theme provides.
type Palette struct {
	Foreground lipgloss.Color
	Accent     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Highlight  lipgloss.Color
	BarEmpty   lipgloss.Color
	BarFilled  lipgloss.Color
}

// ForTheme returns the palette for a theme.
func ForTheme(t models.Theme) Palette {
	switch t {
	case models.ThemeLight:
		return Palette{
			Foreground: "#3C3C3C",
			Accent:     "#787878",
			Success:    "#228B22",
			Warning:    "#FF8C00",
			Error:      "#DC143C",
			Muted:      "#808080",
			Border:     "#C8C8C8",
			Highlight:  "#E6E6E6",
			BarEmpty:   "#DCDCDC",
			BarFilled:  "#228B22",
		}
	case models.ThemeDracula:
		return Palette{
			Foreground: "#F8F8F2",
			Accent:     "#6272A4",
			Success:    "#50FA7B",
			Warning:    "#FFB86C",
			Error:      "#FF5555",
			Muted:      "#6272A4",
			Border:     "#44475A",
			Highlight:  "#44475A",
			BarEmpty:   "#44475A",
			BarFilled:  "#BD93F9",
		}
	case models.ThemeNord:
		return Palette{
			Foreground: "#ECEFF4",
			Accent:     "#81A1C1",
			Success:    "#A3BE8C",
			Warning:    "#EBCB8B",
			Error:      "#BF616A",
			Muted:      "#4C566A",
			Border:     "#434C5E",
			Highlight:  "#434C5E",
			BarEmpty:   "#3B4252",
			BarFilled:  "#88C0D0",
		}
	case models.ThemeMonokai:
		return Palette{
			Foreground: "#F8F8F2",
			Accent:     "#66D9EF",
			Success:    "#A6E22E",
			Warning:    "#FD971F",
			Error:      "#F92672",
			Muted:      "#75715E",
			Border:     "#49483E",
			Highlight:  "#49483E",
			BarEmpty:   "#3E3D32",
			BarFilled:  "#A6E22E",
		}
	case models.ThemeGruvbox:
		return Palette{
			Foreground: "#EBDBB2",
			Accent:     "#83A598",
			Success:    "#B8BB26",
			Warning:    "#FABD2F",
			Error:      "#FB4934",
			Muted:      "#928374",
			Border:     "#504945",
			Highlight:  "#504945",
			BarEmpty:   "#3C3836",
			BarFilled:  "#B8BB26",
		}
	default: // dark
		return Palette{
			Foreground: "#F8F8F2",
			Accent:     "#6272A4",
			Success:    "#50FA7B",
			Warning:    "#FFB86C",
			Error:      "#FF5555",
			Muted:      "#6272A4",
			Border:     "#44475A",
			Highlight:  "#44475A",
			BarEmpty:   "#282A36",
			BarFilled:  "#50FA7B",
		}
	}
}

// Styles bundles the lipgloss styles derived from a palette.
type Styles struct {
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	HelpBar   lipgloss.Style
	Panel     lipgloss.Style
	Dialog    lipgloss.Style
	Selected  lipgloss.Style

	palette Palette
}

// New derives the style set for a theme.
func New(t models.Theme) Styles {
	p := ForTheme(t)

	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtle:    lipgloss.NewStyle().Foreground(p.Muted),
		Highlight: lipgloss.NewStyle().Foreground(p.Highlight),
		Error:     lipgloss.NewStyle().Foreground(p.Error),
		Success:   lipgloss.NewStyle().Foreground(p.Success),
		Warning:   lipgloss.NewStyle().Foreground(p.Warning),
		HelpBar:   lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Success),

		palette: p,
	}
}

// Palette returns the palette the styles were built from.
func (s Styles) Palette() Palette {
	return s.palette
}

// UsageStyle colors a percentage by severity: error at 90%, warning at 75%,
// success below.
func (s Styles) UsageStyle(percentage float64) lipgloss.Style {
	switch {
	case percentage >= 90:
		return s.Error
	case percentage >= 75:
		return s.Warning
	default:
		return s.Success
	}
}
