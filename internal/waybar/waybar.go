// Package waybar formats usage stats as a waybar custom-module JSON object.
package waybar

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

// Output is the JSON shape waybar expects from a custom module.
type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// CSS classes by usage severity.
const (
	ClassCritical = "copilot-critical"
	ClassWarning  = "copilot-warning"
	ClassNormal   = "copilot-normal"
	ClassLow      = "copilot-low"
)

// Generate renders stats with the configured format template. The template
// supports a {percentage} placeholder.
func Generate(stats models.UsageStats, format string) Output {
	text := strings.ReplaceAll(format, "{percentage}", fmt.Sprintf("%.0f", stats.Percentage))

	tooltip := fmt.Sprintf("Copilot premium requests: %.0f / %.0f (%.1f%%)\nResets %s",
		stats.TotalUsed, stats.TotalLimit, stats.Percentage,
		stats.ResetDate.Format("Jan 2, 2006"))
	if stats.EstimatedCost > 0 {
		tooltip += fmt.Sprintf("\nOverage est. $%.2f", stats.EstimatedCost)
	}

	return Output{
		Text:    text,
		Tooltip: tooltip,
		Class:   classFor(stats.Percentage),
	}
}

// Render returns the JSON line waybar consumes.
func Render(stats models.UsageStats, format string) (string, error) {
	out, err := json.Marshal(Generate(stats, format))
	if err != nil {
		return "", fmt.Errorf("failed to encode waybar output: %w", err)
	}
	return string(out), nil
}

func classFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return ClassCritical
	case percentage >= 75:
		return ClassWarning
	case percentage >= 50:
		return ClassNormal
	default:
		return ClassLow
	}
}
