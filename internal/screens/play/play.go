// Package play runs a started session: answering, revealing references
// and finishing.
package play

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/screens/summary"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/ui/components"
	"github.com/abhisek/ipquiz/internal/ui/layout"
	"github.com/abhisek/ipquiz/internal/ui/theme"
)

// PlayScreen shows one basket question at a time.
type PlayScreen struct {
	env    *screen.Env
	ids    []string
	card   int
	option int
	notice string
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)

func New(env *screen.Env) *PlayScreen {
	return &PlayScreen{env: env, ids: env.Session.Basket()}
}

func (s *PlayScreen) Init() tea.Cmd {
	return nil
}

func (s *PlayScreen) Title() string {
	if s.env.Session.Phase() == session.PhaseConfirming {
		return "Review"
	}
	return "Quiz"
}

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "←→", Description: "Question"}}
	q, ok := s.current()
	phase := s.env.Session.Phase()
	if ok && q.Kind() == quiz.KindMultipleChoice && phase.ChoicesEditable() {
		hints = append(hints, layout.KeyHint{Key: "↑↓ Space", Description: "Choose"})
	}
	if ok && q.Kind().Manual() && phase.GradesEditable() {
		hints = append(hints, layout.KeyHint{Key: "0-" + strconv.Itoa(q.Points()), Description: "Grade"})
	}
	if phase == session.PhaseRunning {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Reveal"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "f", Description: "Finish"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
}

func (s *PlayScreen) current() (quiz.Question, bool) {
	if len(s.ids) == 0 {
		return quiz.Question{}, false
	}
	return s.env.Session.Lookup(s.ids[s.card])
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	key := kmsg.String()
	s.notice = ""

	switch key {
	case "left", "h", "p", "shift+tab":
		s.moveCard(-1)
	case "right", "l", "n", "tab":
		s.moveCard(1)
	case "up", "k":
		s.option = max(s.option-1, 0)
	case "down", "j":
		if q, ok := s.current(); ok {
			if c, ok := q.Choice(); ok {
				s.option = min(s.option+1, len(c.Options)-1)
			}
		}
	case "space", " ", "x", "enter":
		s.toggleOption()
	case "r":
		if err := s.env.Session.Reveal(); err != nil {
			s.notice = "Answers are already revealed."
		}
	case "f":
		return s, s.finish()
	default:
		if n, err := strconv.Atoi(key); err == nil && len(key) == 1 {
			s.grade(n)
		}
	}
	return s, nil
}

func (s *PlayScreen) moveCard(delta int) {
	if len(s.ids) == 0 {
		return
	}
	next := min(max(s.card+delta, 0), len(s.ids)-1)
	if next != s.card {
		s.card = next
		s.option = 0
	}
}

func (s *PlayScreen) toggleOption() {
	q, ok := s.current()
	if !ok {
		return
	}
	c, ok := q.Choice()
	if !ok {
		return
	}
	if !s.env.Session.Phase().ChoicesEditable() {
		s.notice = "Choices are locked once answers are revealed."
		return
	}
	ans, _ := s.env.Session.Answer(q.ID)
	if err := s.env.Session.RecordAnswer(q.ID, ans.Toggled(s.option, !c.Multi)); err != nil {
		s.notice = err.Error()
	}
}

func (s *PlayScreen) grade(n int) {
	q, ok := s.current()
	if !ok || !q.Kind().Manual() {
		return
	}
	if !s.env.Session.Phase().GradesEditable() {
		return
	}
	if n > q.Points() {
		s.notice = fmt.Sprintf("This question is worth at most %d points.", q.Points())
		return
	}
	if err := s.env.Session.RecordAnswer(q.ID, session.Grade(n)); err != nil {
		s.notice = err.Error()
	}
}

func (s *PlayScreen) finish() tea.Cmd {
	sum, err := s.env.Session.Finish()
	if err != nil {
		s.notice = "Reveal the answers first (r)."
		return nil
	}
	next := summary.New(s.env, sum)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (s *PlayScreen) View(width, height int) string {
	if len(s.ids) == 0 {
		return layout.Centered("Nothing to answer.", theme.Hint, width, height)
	}

	var b strings.Builder
	b.WriteString(s.renderProgress())
	b.WriteString("\n\n")

	cardWidth := max(min(width-4, 100), 30)
	card := theme.ActiveCard.Width(cardWidth).Render(s.renderCard(cardWidth - 4))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))

	if s.env.Session.Phase() == session.PhaseConfirming {
		res := s.env.Session.Score()
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Heading.Render(fmt.Sprintf("Score so far: %d / %d", res.Total, res.Possible))))
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Notice.Render(s.notice)))
	}
	return b.String()
}

// renderProgress draws one dot per question: filled once answered.
func (s *PlayScreen) renderProgress() string {
	var dots []string
	for i, id := range s.ids {
		mark := "○"
		if _, ok := s.env.Session.Answer(id); ok {
			mark = "●"
		}
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if i == s.card {
			style = theme.Selected
		}
		dots = append(dots, style.Render(mark))
	}
	label := fmt.Sprintf("  Question %d of %d   ", s.card+1, len(s.ids))
	return theme.Body.Render(label) + strings.Join(dots, " ")
}

func (s *PlayScreen) renderCard(width int) string {
	q, ok := s.current()
	if !ok {
		return theme.Hint.Render("This question was removed from the bank. It scores nothing.")
	}

	revealed := s.env.Session.Phase() == session.PhaseConfirming
	ans, _ := s.env.Session.Answer(q.ID)

	var b strings.Builder
	b.WriteString(theme.Heading.Render(q.Topic))
	b.WriteString("  ")
	b.WriteString(theme.Tag(fmt.Sprintf("%s · %d pt", q.Level, q.Points())))
	b.WriteString("  ")
	b.WriteString(theme.Hint.Render(q.Kind().Label()))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(width).Render(q.Prompt))
	b.WriteString("\n\n")

	switch body := q.Body.(type) {
	case *quiz.Choice:
		list := components.ChoiceList{
			Options: body.Options,
			Chosen:  ans.Has,
			Correct: body.IsCorrect,
			Cursor:  s.option,
			Reveal:  revealed,
			Focused: !revealed,
		}
		b.WriteString(list.View(width))
		if body.Multi {
			b.WriteString("\n\n")
			b.WriteString(theme.Hint.Render("Select every correct option."))
		}
		if revealed {
			b.WriteString("\n\n")
			b.WriteString(awardLine(session.Award(q, ans), q.Points()))
		}
	case *quiz.Open:
		if revealed {
			b.WriteString(theme.Heading.Render("Reference answer"))
			b.WriteString("\n")
			if body.Reference == "" {
				b.WriteString(theme.Hint.Render("No reference answer."))
			} else {
				b.WriteString(theme.Body.Width(width).Render(body.Reference))
			}
			b.WriteString("\n\n")
		} else {
			b.WriteString(theme.Hint.Render("Answer aloud or on paper. The reference shows after reveal."))
			b.WriteString("\n\n")
		}
		if ans.Score != nil {
			b.WriteString(awardLine(*ans.Score, q.Points()))
		} else {
			b.WriteString(theme.Hint.Render(fmt.Sprintf("Not graded yet. Press 0-%d.", q.Points())))
		}
	}
	return b.String()
}

func awardLine(awarded, points int) string {
	style := theme.Incorrect
	if awarded >= points {
		style = theme.Correct
	} else if awarded > 0 {
		style = theme.Notice
	}
	return style.Render(fmt.Sprintf("%d / %d points", awarded, points))
}
