// Package pick is the question picker: topics with their hints and
// questions, toggled into the session basket.
package pick

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/screens/play"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/ui/layout"
	"github.com/abhisek/ipquiz/internal/ui/theme"
)

type item struct {
	topic    string
	question quiz.Question
}

// PickScreen lists every topic with its questions.
type PickScreen struct {
	env      *screen.Env
	topics   []string
	items    []item
	cursor   int
	hideHint bool
	notice   string
	failed   bool
}

var _ screen.Screen = (*PickScreen)(nil)
var _ screen.KeyHintProvider = (*PickScreen)(nil)

func New(env *screen.Env) *PickScreen {
	p := &PickScreen{env: env}
	p.rebuild()
	return p
}

// rebuild lays out topics in catalog order. Topics that only carry a hint
// appear without questions.
func (p *PickScreen) rebuild() {
	bank := p.env.Session.Bank()
	p.topics = quiz.Topics(bank, p.env.Catalog.Hints())
	p.items = p.items[:0]
	for _, t := range p.topics {
		for _, q := range bank.ByTopic(t) {
			p.items = append(p.items, item{topic: t, question: q})
		}
	}
	p.cursor = min(p.cursor, max(len(p.items)-1, 0))
}

func (p *PickScreen) Init() tea.Cmd {
	return nil
}

func (p *PickScreen) Title() string {
	return "Pick Questions"
}

func (p *PickScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "Toggle"},
		{Key: "s", Description: "Start"},
		{Key: "h", Description: "Hint"},
		{Key: "r", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PickScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case "space", " ", "enter", "x":
		p.toggle()
	case "h":
		p.hideHint = !p.hideHint
	case "r":
		p.env.Session.Reset()
		p.say("Selection cleared.", false)
	case "s":
		return p, p.start()
	}
	return p, nil
}

func (p *PickScreen) toggle() {
	if len(p.items) == 0 {
		return
	}
	it := p.items[p.cursor]
	selected, err := p.env.Session.Toggle(it.question.ID)
	switch {
	case err != nil:
		p.say(capitalize(err.Error())+".", true)
	case selected:
		p.say(fmt.Sprintf("Added. %d of %d picked.", p.env.Session.Count(), session.MaxTotal), false)
	default:
		p.say("Removed.", false)
	}
}

func (p *PickScreen) start() tea.Cmd {
	if err := p.env.Session.Start(); err != nil {
		p.say(capitalize(err.Error())+".", true)
		return nil
	}
	next := play.New(p.env)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (p *PickScreen) say(s string, failed bool) {
	p.notice = s
	p.failed = failed
}

func (p *PickScreen) currentTopic() string {
	if len(p.items) == 0 {
		if len(p.topics) > 0 {
			return p.topics[0]
		}
		return ""
	}
	return p.items[p.cursor].topic
}

func (p *PickScreen) View(width, height int) string {
	if len(p.topics) == 0 {
		return layout.Centered("No topics yet. Add questions in admin mode.", theme.Hint, width, height)
	}

	var footer []string
	if !p.hideHint {
		if card := p.hintCard(width); card != "" {
			footer = append(footer, card)
		}
	}
	if p.notice != "" {
		style := theme.Notice
		if p.failed {
			style = theme.Failure
		}
		footer = append(footer, style.Render("  "+p.notice))
	}
	bottom := strings.Join(footer, "\n")

	listHeight := max(height-lipgloss.Height(bottom)-1, 3)
	list := p.renderList(width, listHeight)
	if bottom == "" {
		return list
	}
	return list + "\n\n" + bottom
}

// renderList draws topic headers and question rows, scrolled so the cursor
// stays visible.
func (p *PickScreen) renderList(width, height int) string {
	var lines []string
	cursorLine := 0
	idx := 0
	bank := p.env.Session.Bank()

	for _, t := range p.topics {
		count := p.env.Session.TopicCount(t)
		header := fmt.Sprintf("  %s  (%d/%d)", t, count, session.MaxPerTopic)
		lines = append(lines, theme.Heading.Render(header))

		qs := bank.ByTopic(t)
		if len(qs) == 0 {
			lines = append(lines, theme.Hint.Render("      no questions"))
		}
		for range qs {
			it := p.items[idx]
			if idx == p.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, p.renderRow(it.question, idx == p.cursor, width))
			idx++
		}
	}

	start := 0
	if cursorLine >= height {
		start = cursorLine - height + 1
	}
	end := min(start+height, len(lines))
	return strings.Join(lines[start:end], "\n")
}

func (p *PickScreen) renderRow(q quiz.Question, active bool, width int) string {
	box := "[ ]"
	if p.env.Session.Selected(q.ID) {
		box = "[x]"
	}
	pointer := "  "
	if active {
		pointer = "▸ "
	}

	lead := fmt.Sprintf("  %s%s ", pointer, box)
	tags := theme.Tag(string(q.Level)) + " " + theme.Hint.Render(q.Kind().Label()) + "  "
	room := max(width-lipgloss.Width(lead)-lipgloss.Width(tags)-2, 10)

	style := theme.Unselected
	if active {
		style = theme.Selected
	}
	return style.Render(lead) + tags + style.Render(truncate(firstLine(q.Prompt), room))
}

func (p *PickScreen) hintCard(width int) string {
	topic := p.currentTopic()
	hint, ok := p.env.Catalog.Hint(topic)
	if !ok || strings.TrimSpace(hint) == "" {
		return ""
	}
	body := theme.Heading.Render("Hint · "+topic) + "\n" + theme.Body.Render(hint)
	return theme.Card.Width(max(width-4, 20)).Render(body)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
