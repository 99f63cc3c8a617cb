package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/ui/theme"
)

// ScoreBar shows points earned out of points possible as a bar.
type ScoreBar struct {
	Label    string
	Earned   int
	Possible int
	Width    int
}

func (p ScoreBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Width(14).Render(p.Label) + "  "
	}
	figure := fmt.Sprintf("  %d/%d", p.Earned, p.Possible)

	barWidth := max(p.Width-lipgloss.Width(result)-len(figure), 4)
	var share float64
	if p.Possible > 0 {
		share = float64(p.Earned) / float64(p.Possible)
	}
	filled := min(max(int(float64(barWidth)*share), 0), barWidth)

	result += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(figure)
	return result
}
