package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/store"
	"github.com/abhisek/ipquiz/internal/ui/layout"
	"github.com/abhisek/ipquiz/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Err      error
}

// SessionLister reads finished sessions, newest first.
type SessionLister interface {
	QuerySessionSummaries(ctx context.Context, opts store.QueryOpts) ([]store.SessionSummaryRecord, error)
}

// HistoryScreen displays past sessions.
type HistoryScreen struct {
	lister   SessionLister
	sessions []store.SessionSummaryRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(lister SessionLister) *HistoryScreen {
	return &HistoryScreen{
		lister:   lister,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		sessions, err := s.lister.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered("Error: "+s.errMsg, theme.Failure, width, height)
	}
	if !s.loaded {
		return layout.Centered("Loading history...", theme.Hint, width, height)
	}
	if len(s.sessions) == 0 {
		return layout.Centered("No finished quizzes yet.", theme.Hint, width, height)
	}

	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, sess := range s.sessions {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "> "
			style = theme.Selected
		}

		var pct float64
		if sess.Possible > 0 {
			pct = float64(sess.Total) / float64(sess.Possible) * 100
		}
		line := fmt.Sprintf("%s%s  %d:%02d  %d questions  %d/%d points  %.0f%%",
			prefix, sess.Timestamp.Format("Jan 02, 2006 15:04"),
			sess.DurationSecs/60, sess.DurationSecs%60,
			sess.Questions, sess.Total, sess.Possible, pct)
		b.WriteString(center(style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(center(theme.Hint.Render(detailLine(sess))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// detailLine lists earned points per level, then per topic.
func detailLine(r store.SessionSummaryRecord) string {
	var parts []string
	for _, l := range quiz.Levels {
		parts = append(parts, fmt.Sprintf("%s:%d", l, r.ByLevel[string(l)]))
	}

	topics := make([]string, 0, len(r.ByTopic))
	for t := range r.ByTopic {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	for _, t := range topics {
		parts = append(parts, fmt.Sprintf("%s %d", t, r.ByTopic[t]))
	}
	return "    " + strings.Join(parts, "  ")
}
