package summary

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/ui/components"
	"github.com/abhisek/ipquiz/internal/ui/layout"
	"github.com/abhisek/ipquiz/internal/ui/theme"
)

// SummaryScreen displays the frozen result of a finished session.
type SummaryScreen struct {
	env     *screen.Env
	summary *session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.Leaver = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(env *screen.Env, summary *session.Summary) *SummaryScreen {
	return &SummaryScreen{env: env, summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "New quiz"},
		{Key: "Esc", Description: "Home"},
	}
}

// Leave starts a fresh session when the finished one is closed with Esc.
func (s *SummaryScreen) Leave() {
	if s.env.Session.Phase() == session.PhaseFinished {
		s.env.Session.Reset()
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		s.env.Session.Reset()
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	barWidth := min(width-8, 60)
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Quiz complete!"))
	b.WriteString("\n\n")

	d := sum.Duration()
	b.WriteString(center(theme.Hint.Render(fmt.Sprintf("Duration: %d:%02d   Score: %d / %d   (%.0f%%)",
		int(d.Minutes()), int(d.Seconds())%60, sum.Total, sum.Possible, sum.Percent()))))
	b.WriteString("\n\n")
	b.WriteString(center(components.ScoreBar{Label: "Total", Earned: sum.Total, Possible: sum.Possible, Width: barWidth}.View()))
	b.WriteString("\n\n")

	earned, possible := byTopic(sum.Items)
	b.WriteString(section("By topic", width))
	for _, t := range sortedKeys(possible) {
		b.WriteString(center(components.ScoreBar{Label: t, Earned: earned[t], Possible: possible[t], Width: barWidth}.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(section("By level", width))
	var levels []string
	for _, l := range quiz.Levels {
		levels = append(levels, fmt.Sprintf("%s %d", theme.Tag(string(l)), sum.ByLevel[l]))
	}
	b.WriteString(center(strings.Join(levels, "    ")))
	b.WriteString("\n\n")

	b.WriteString(section("Questions", width))
	for i, it := range sum.Items {
		b.WriteString(center(itemLine(i, it, barWidth)))
		b.WriteString("\n")
	}
	return b.String()
}

func section(title string, width int) string {
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(title)) + "\n" +
		lipgloss.PlaceHorizontal(width, lipgloss.Center, divider) + "\n"
}

func itemLine(i int, it session.ItemResult, width int) string {
	if it.Missing {
		return theme.Hint.Render(fmt.Sprintf("%d. (removed from the bank)", i+1))
	}
	prompt := it.Prompt
	if j := strings.IndexByte(prompt, '\n'); j >= 0 {
		prompt = prompt[:j]
	}
	if r := []rune(prompt); len(r) > width-20 && width > 24 {
		prompt = string(r[:width-21]) + "…"
	}

	style := theme.Incorrect
	switch {
	case it.Awarded >= it.Points:
		style = theme.Correct
	case it.Awarded > 0:
		style = theme.Notice
	}
	return fmt.Sprintf("%d. %s %s  %s", i+1, theme.Tag(string(it.Level)), theme.Body.Render(prompt),
		style.Render(fmt.Sprintf("%d/%d", it.Awarded, it.Points)))
}

// byTopic totals earned and possible points per topic. Result.ByTopic only
// carries earned points.
func byTopic(items []session.ItemResult) (earned, possible map[string]int) {
	earned = make(map[string]int)
	possible = make(map[string]int)
	for _, it := range items {
		if it.Missing {
			continue
		}
		earned[it.Topic] += it.Awarded
		possible[it.Topic] += it.Points
	}
	return earned, possible
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
