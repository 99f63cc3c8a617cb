// Package admin is the PIN-gated screen for editing topic hints and
// changing the PIN.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/catalog"
	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/ui/components"
	"github.com/abhisek/ipquiz/internal/ui/layout"
	"github.com/abhisek/ipquiz/internal/ui/theme"
)

type mode int

const (
	modeLocked mode = iota
	modeTopics
	modeNewTopic
	modeEditHint
	modeOldPIN
	modeNewPIN
	modeConfirmPIN
)

const pinLimit = 12

type pinCheckedMsg struct{ Err error }

type pinChangedMsg struct{ Err error }

// AdminScreen unlocks with the shared PIN.
type AdminScreen struct {
	env    *screen.Env
	mode   mode
	topics []string
	cursor int

	input   components.TextInput
	editor  textarea.Model
	editing string // topic whose hint is open
	oldPIN  string
	newPIN  string
	busy    bool

	notice string
	failed bool
}

var _ screen.Screen = (*AdminScreen)(nil)
var _ screen.KeyHintProvider = (*AdminScreen)(nil)
var _ screen.InputCapturer = (*AdminScreen)(nil)

func New(env *screen.Env) *AdminScreen {
	return &AdminScreen{
		env:   env,
		mode:  modeLocked,
		input: components.NewPINInput("PIN", pinLimit),
	}
}

func (s *AdminScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *AdminScreen) Title() string {
	return "Admin"
}

// CapturingInput is false only on the topic list, where Esc leaves.
func (s *AdminScreen) CapturingInput() bool {
	return s.mode != modeTopics
}

func (s *AdminScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeTopics:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Edit hint"},
			{Key: "n", Description: "New topic"},
			{Key: "d", Description: "Delete hint"},
			{Key: "c", Description: "Change PIN"},
			{Key: "Esc", Description: "Back"},
		}
	case modeEditHint:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
}

func (s *AdminScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pinCheckedMsg:
		s.busy = false
		if msg.Err != nil {
			s.fail(pinError(msg.Err))
			s.input.Reset()
			return s, nil
		}
		s.openTopics()
		s.say("Unlocked.")
		return s, nil

	case pinChangedMsg:
		s.busy = false
		s.oldPIN, s.newPIN = "", ""
		s.openTopics()
		if msg.Err != nil {
			s.fail(pinError(msg.Err))
			return s, nil
		}
		s.env.Log.Info("Admin PIN changed")
		s.say("PIN changed.")
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *AdminScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.mode {
	case modeTopics:
		return s, s.handleTopicKey(key)

	case modeEditHint:
		switch key {
		case "esc":
			s.openTopics()
			return s, nil
		case "ctrl+s":
			s.saveHint()
			return s, nil
		}
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		return s, cmd
	}

	// Single-line modes.
	switch key {
	case "esc":
		if s.mode == modeLocked {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		s.oldPIN, s.newPIN = "", ""
		s.openTopics()
		return s, nil
	case "enter":
		return s, s.submit(strings.TrimSpace(s.input.Value()))
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *AdminScreen) handleTopicKey(key string) tea.Cmd {
	s.notice = ""
	switch key {
	case "esc":
		return func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.topics)-1 {
			s.cursor++
		}
	case "enter", "e":
		if len(s.topics) > 0 {
			return s.openEditor(s.topics[s.cursor])
		}
	case "n":
		s.mode = modeNewTopic
		s.input = components.NewTextInput("Topic name", 80)
		return s.input.Init()
	case "d":
		if len(s.topics) > 0 {
			s.deleteHint(s.topics[s.cursor])
		}
	case "c":
		s.mode = modeOldPIN
		s.input = components.NewPINInput("Current PIN", pinLimit)
		return s.input.Init()
	}
	return nil
}

func (s *AdminScreen) submit(value string) tea.Cmd {
	switch s.mode {
	case modeLocked:
		if value == "" {
			return nil
		}
		s.busy = true
		return s.verify(value)

	case modeNewTopic:
		if value == "" {
			s.fail("Topic name must not be empty.")
			return nil
		}
		return s.openEditor(value)

	case modeOldPIN:
		s.oldPIN = value
		s.mode = modeNewPIN
		s.input = components.NewPINInput("New PIN (4-12 digits)", pinLimit)
		return s.input.Init()

	case modeNewPIN:
		if err := catalog.ValidatePIN(value); err != nil {
			s.fail(pinError(err))
			s.input.Reset()
			return nil
		}
		s.newPIN = value
		s.mode = modeConfirmPIN
		s.input = components.NewPINInput("Repeat new PIN", pinLimit)
		return s.input.Init()

	case modeConfirmPIN:
		if value != s.newPIN {
			s.fail("PINs do not match.")
			s.mode = modeNewPIN
			s.input = components.NewPINInput("New PIN (4-12 digits)", pinLimit)
			return s.input.Init()
		}
		s.busy = true
		return s.change(s.oldPIN, s.newPIN)
	}
	return nil
}

func (s *AdminScreen) verify(pin string) tea.Cmd {
	gate := s.env.Gate
	return func() tea.Msg {
		return pinCheckedMsg{Err: gate.Verify(context.Background(), pin)}
	}
}

func (s *AdminScreen) change(oldPIN, newPIN string) tea.Cmd {
	gate := s.env.Gate
	return func() tea.Msg {
		return pinChangedMsg{Err: gate.Change(context.Background(), oldPIN, newPIN)}
	}
}

func (s *AdminScreen) openTopics() {
	s.mode = modeTopics
	s.topics = s.env.Catalog.Topics()
	s.cursor = min(s.cursor, max(len(s.topics)-1, 0))
}

func (s *AdminScreen) openEditor(topic string) tea.Cmd {
	s.mode = modeEditHint
	s.editing = topic
	s.editor = textarea.New()
	s.editor.Placeholder = "Markdown hint shown while picking"
	s.editor.ShowLineNumbers = false
	s.editor.SetWidth(60)
	s.editor.SetHeight(8)
	if hint, ok := s.env.Catalog.Hint(topic); ok {
		s.editor.SetValue(hint)
	}
	return s.editor.Focus()
}

func (s *AdminScreen) saveHint() {
	topic := s.editing
	err := s.env.Catalog.SetHint(context.Background(), topic, strings.TrimSpace(s.editor.Value()))
	s.openTopics()
	s.selectTopic(topic)
	s.report(topic, err, "Hint saved for "+topic+".")
}

func (s *AdminScreen) deleteHint(topic string) {
	err := s.env.Catalog.DeleteHint(context.Background(), topic)
	s.openTopics()
	s.report(topic, err, "Hint removed from "+topic+".")
}

// report shows the outcome of a catalog mutation. A change that was kept in
// memory but not saved is flagged without being undone.
func (s *AdminScreen) report(topic string, err error, ok string) {
	switch {
	case err == nil:
		s.say(ok)
	case errors.Is(err, catalog.ErrNotPersisted):
		s.env.Log.WithError(err).WithField("topic", topic).Warn("Admin change not persisted")
		s.fail("Changed for this run only: saving failed.")
	default:
		s.env.Log.WithError(err).WithFields(logrus.Fields{"topic": topic, "mode": "admin"}).Warn("Admin change rejected")
		s.fail(err.Error())
	}
}

func (s *AdminScreen) selectTopic(topic string) {
	for i, t := range s.topics {
		if t == topic {
			s.cursor = i
			return
		}
	}
}

func (s *AdminScreen) say(msg string) {
	s.notice, s.failed = msg, false
}

func (s *AdminScreen) fail(msg string) {
	s.notice, s.failed = msg, true
}

func pinError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrWrongPIN):
		return "Wrong PIN."
	case errors.Is(err, catalog.ErrInvalidPIN):
		return fmt.Sprintf("%s.", err)
	default:
		return "PIN check failed: " + err.Error()
	}
}

func (s *AdminScreen) View(width, height int) string {
	var body string
	switch s.mode {
	case modeTopics:
		body = s.renderTopics(width, height)
	case modeEditHint:
		body = theme.Heading.Render("Hint · "+s.editing) + "\n\n" + s.editor.View()
	default:
		body = theme.Heading.Render(s.prompt()) + "\n\n" + s.input.View()
		if s.busy {
			body += "\n\n" + theme.Hint.Render("Checking...")
		}
	}

	if s.notice != "" {
		style := theme.Notice
		if s.failed {
			style = theme.Failure
		}
		body += "\n\n" + style.Render(s.notice)
	}

	if s.mode == modeTopics {
		return body
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Card.Render(body))
}

func (s *AdminScreen) prompt() string {
	switch s.mode {
	case modeNewTopic:
		return "New topic"
	case modeOldPIN:
		return "Current PIN"
	case modeNewPIN:
		return "New PIN"
	case modeConfirmPIN:
		return "Repeat new PIN"
	default:
		return "Enter the admin PIN"
	}
}

func (s *AdminScreen) renderTopics(width, height int) string {
	if len(s.topics) == 0 {
		return layout.Centered("No topics yet. Press n to add one.", theme.Hint, width, height-2)
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, t := range s.topics {
		hint, hasHint := s.env.Catalog.Hint(t)
		preview := "no hint"
		if hasHint && hint != "" {
			preview = strings.ReplaceAll(hint, "\n", " ")
			if r := []rune(preview); len(r) > 40 {
				preview = string(r[:39]) + "…"
			}
		}

		style, pointer := theme.Unselected, "  "
		if i == s.cursor {
			style, pointer = theme.Selected, "▸ "
		}
		line := style.Render(fmt.Sprintf("  %s%-24s %3d questions  ", pointer, t, len(s.env.Catalog.ByTopic(t))))
		b.WriteString(line + theme.Hint.Render(preview) + "\n")
	}
	return b.String()
}
