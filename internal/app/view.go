package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

// View renders the dashboard, with the current modal (if any) composited
// on top.
func (m *Model) View() string {
	base := m.renderDashboard()

	switch m.mode {
	case ModeDashboard:
		return base
	case ModeCommandMenu:
		return m.overlayCentered(base, m.renderMenu())
	case ModeThemeSelector:
		return m.overlayCentered(base, m.renderThemePicker())
	case ModeConfirmRefresh:
		return m.overlayCentered(base, m.renderConfirm("Refresh usage data from GitHub?"))
	case ModeConfirmReconfigure:
		return m.overlayCentered(base, m.renderConfirm("Discard the saved token and reconfigure?"))
	case ModeShowHelp:
		return m.overlayCentered(base, m.renderHelp())
	case ModeLoadingRefresh:
		return m.overlayCentered(base, m.renderLoading("Refreshing usage data..."))
	case ModeLoadingCache:
		return m.overlayCentered(base, m.renderLoading("Reading cache..."))
	case ModeShowCacheInfo:
		return m.overlayCentered(base, m.renderCacheInfo())
	case ModeShowError:
		return m.overlayCentered(base, m.renderError())
	}
	return base
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m *Model) renderDashboard() string {
	var b strings.Builder

	title := "Copilot Premium Requests"
	if m.stats.Username != "" {
		title += "  ·  " + m.stats.Username
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	barWidth := m.contentWidth() - 30
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 60 {
		barWidth = 60
	}

	usageStyle := m.styles.UsageStyle(m.stats.Percentage)
	b.WriteString(fmt.Sprintf("  %s %s  %s\n",
		m.renderBar(m.stats.Percentage, barWidth),
		usageStyle.Render(fmt.Sprintf("%5.1f%%", m.stats.Percentage)),
		m.styles.Subtle.Render(fmt.Sprintf("%.0f / %.0f requests", m.stats.TotalUsed, m.stats.TotalLimit)),
	))

	b.WriteString("  ")
	b.WriteString(m.styles.Subtle.Render(fmt.Sprintf("Resets %s", m.stats.ResetDate.Format("Jan 2, 2006"))))
	if m.stats.EstimatedCost > 0 {
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("   Overage est. $%.2f", m.stats.EstimatedCost)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderModelTable(barWidth))

	b.WriteString("\n")
	b.WriteString(m.styles.HelpBar.Render("r refresh · t theme · s cache · h help · / menu · q quit"))

	return b.String()
}

func (m *Model) renderModelTable(barWidth int) string {
	if len(m.stats.Models) == 0 {
		return m.styles.Subtle.Render("  No usage recorded this period.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtle.Render("  By model") + "\n")

	visible := m.visibleModelRows()
	end := m.modelScroll + visible
	if end > len(m.stats.Models) {
		end = len(m.stats.Models)
	}

	// Pad by display width, not bytes, so multi-byte names stay aligned.
	nameWidth := 0
	for _, mu := range m.stats.Models {
		if w := lipgloss.Width(mu.Name); w > nameWidth {
			nameWidth = w
		}
	}

	for _, mu := range m.stats.Models[m.modelScroll:end] {
		share := 0.0
		if m.stats.TotalUsed > 0 {
			share = mu.Used / m.stats.TotalUsed * 100
		}
		pad := strings.Repeat(" ", nameWidth-lipgloss.Width(mu.Name))
		b.WriteString(fmt.Sprintf("  %s%s %s %s\n",
			mu.Name, pad,
			m.renderBar(share, barWidth/2),
			m.styles.Subtle.Render(fmt.Sprintf("%7.1f (%4.1f%%)", mu.Used, share)),
		))
	}

	if len(m.stats.Models) > visible {
		b.WriteString(m.styles.Subtle.Render(
			fmt.Sprintf("  %d-%d of %d (↑/↓ to scroll)", m.modelScroll+1, end, len(m.stats.Models))) + "\n")
	}

	return b.String()
}

// renderBar draws a horizontal gauge. Percentages past 100 render full.
func (m *Model) renderBar(percentage float64, width int) string {
	if width < 1 {
		width = 1
	}
	filled := int(percentage / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	p := m.styles.Palette()
	filledStyle := lipgloss.NewStyle().Foreground(p.BarFilled)
	emptyStyle := lipgloss.NewStyle().Foreground(p.BarEmpty)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}

func (m *Model) renderMenu() string {
	commands := MenuCommands()
	var lines []string
	lines = append(lines, m.styles.Title.Render("Commands"), "")

	end := m.menuScroll + menuWindow
	if end > len(commands) {
		end = len(commands)
	}
	for i, c := range commands[m.menuScroll:end] {
		idx := m.menuScroll + i
		label := fmt.Sprintf("%s  %s", c.Shortcut, c.Label)
		if idx == m.menuIndex {
			lines = append(lines, m.styles.Selected.Render("> "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("enter select · esc close"))
	return m.styles.Dialog.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderThemePicker() string {
	var lines []string
	lines = append(lines, m.styles.Title.Render("Theme"), "")

	for i, name := range models.ThemeNames() {
		if i == m.themeIndex {
			lines = append(lines, m.styles.Selected.Render("> "+name))
		} else {
			lines = append(lines, "  "+name)
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("enter apply · esc revert"))
	return m.styles.Dialog.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderConfirm(question string) string {
	content := question + "\n\n" +
		m.styles.Success.Render("[y] yes") + "   " + m.styles.Error.Render("[n] no")
	return m.styles.Dialog.Render(content)
}

func (m *Model) renderLoading(label string) string {
	content := fmt.Sprintf("%s %s\n\n%s",
		m.spinner.View(), label,
		m.styles.Subtle.Render("esc to dismiss"))
	return m.styles.Dialog.Render(content)
}

func (m *Model) renderCacheInfo() string {
	var lines []string
	lines = append(lines, m.styles.Title.Render("Cache Status"), "")

	if m.cacheInfo.LastUpdated != nil {
		lines = append(lines, fmt.Sprintf("Last updated  %s", m.cacheInfo.LastUpdated.Local().Format("Jan 2 15:04:05")))
	} else {
		lines = append(lines, "Last updated  never")
	}
	if m.cacheInfo.IsFresh {
		lines = append(lines, "Freshness     "+m.styles.Success.Render("fresh"))
	} else {
		lines = append(lines, "Freshness     "+m.styles.Warning.Render("stale"))
	}
	lines = append(lines, fmt.Sprintf("TTL           %d min", m.cacheInfo.TTLMinutes))

	lines = append(lines, "", m.styles.Subtle.Render("any key to close"))
	return m.styles.Dialog.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderError() string {
	var lines []string
	lines = append(lines, m.styles.Error.Render("Refresh failed"), "")
	lines = append(lines, m.errMessage)

	if m.showDebug && m.errDebug != "" {
		lines = append(lines, "", m.styles.Subtle.Render(m.errDebug))
	}

	lines = append(lines, "", m.styles.Subtle.Render("d toggle details · any key to dismiss"))
	return m.styles.Dialog.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelp() string {
	var lines []string
	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"), "")

	lines = append(lines, m.styles.Highlight.Render("Dashboard"))
	lines = append(lines, "  r          Refresh usage data")
	lines = append(lines, "  t          Change theme")
	lines = append(lines, "  s          Cache status")
	lines = append(lines, "  c          Reconfigure")
	lines = append(lines, "  / or :     Command menu")
	lines = append(lines, "  j/k, ↑/↓   Scroll model list")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")
	lines = append(lines, m.styles.Highlight.Render("Dialogs"))
	lines = append(lines, "  y/n        Confirm / decline")
	lines = append(lines, "  esc        Back / cancel loading")
	lines = append(lines, "  d          Toggle error details")
	lines = append(lines, "")
	lines = append(lines, m.styles.Subtle.Render("Press any key to close"))

	return m.styles.Dialog.Render(strings.Join(lines, "\n"))
}

// overlayCentered composites a dialog over the base view, preserving the
// base content around the dialog's rectangle.
func (m *Model) overlayCentered(base, overlay string) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)
	y := (m.height - len(overlayLines)) / 2
	x := (m.contentWidth() - overlayWidth) / 2
	if y < 0 {
		y = 0
	}
	if x < 0 {
		x = 0
	}

	for len(baseLines) < y+len(overlayLines) {
		baseLines = append(baseLines, "")
	}

	for i, overlayLine := range overlayLines {
		baseLine := baseLines[y+i]

		left := ansi.Truncate(baseLine, x, "")
		right := ansi.TruncateLeft(baseLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		baseLines[y+i] = left + overlayLine + right
	}

	return strings.Join(baseLines, "\n")
}
