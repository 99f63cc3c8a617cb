package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/screens/welcome"
	"github.com/abhisek/ipquiz/internal/ui/theme"
)

// contentWidth returns the uniform inner width used for all sections so
// the boxes line up.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 60)
}

// renderStatsBar shows bank size, topic count and the last result.
func renderStatsBar(questions, topics int, last string, cw int) string {
	strong := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := []string{
		strong.Render(fmt.Sprintf("%d QUESTIONS", questions)),
		strong.Render(fmt.Sprintf("%d TOPICS", topics)),
	}
	if last != "" {
		parts = append(parts, dim.Render("LAST "+last))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(parts, "  "))
}

const buttonWidth = 22

// renderMenu draws each entry as a fixed-width button, or as plain lines
// when compact.
func renderMenu(labels []string, selected int, disabled map[int]bool, cw int, compact bool) string {
	base := lipgloss.NewStyle().Width(buttonWidth).Align(lipgloss.Center).Padding(0, 1)
	if !compact {
		base = base.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	}

	var buttons []string
	for i, label := range labels {
		switch {
		case disabled[i]:
			buttons = append(buttons, base.Foreground(theme.TextDim).Render(label))
		case i == selected:
			buttons = append(buttons, base.
				Bold(true).
				Foreground(theme.BgDark).
				Background(theme.Primary).
				BorderForeground(theme.Primary).
				Render("▸ "+label))
		default:
			buttons = append(buttons, base.Foreground(theme.Text).Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

func renderTitle(width, cw int, compact bool) string {
	w := width
	if compact {
		w = 0
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(welcome.RenderBanner(w))
}

// renderFrame centers content inside a double border.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
