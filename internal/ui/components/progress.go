package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// NewStepProgress creates a bar for step current of total, labelled
// "Task current of total".
func NewStepProgress(current, total, width int) ProgressBar {
	var pct float64
	if total > 0 {
		pct = float64(current) / float64(total)
	}
	return NewProgressBar(fmt.Sprintf("Task %d of %d", current, total), pct, false, width)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(p.Width-labelWidth-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}
