// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/catalog"
	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/screens/home"
	"github.com/abhisek/ipquiz/internal/screens/welcome"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/store"
	"github.com/abhisek/ipquiz/internal/ui/layout"
)

// Options configures the terminal UI.
type Options struct {
	Catalog *catalog.Catalog
	Gate    *catalog.Gate
	// Events receives session lifecycle events and feeds history. May be nil.
	Events store.EventRepo
	Log    logrus.FieldLogger
	// Splash shows the welcome animation before the home screen.
	Splash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	env    *screen.Env
	width  int
	height int
}

func newAppModel(opts Options, recorder *session.Recorder) AppModel {
	env := &screen.Env{
		Catalog: opts.Catalog,
		Gate:    opts.Gate,
		Events:  opts.Events,
		Log:     opts.Log,
		Session: session.New(opts.Catalog.Bank(), session.WithObserver(recorder.Observe)),
	}

	var initial screen.Screen = home.New(env)
	if opts.Splash {
		initial = welcome.New(func() screen.Screen { return home.New(env) }, len(opts.Catalog.Bank()))
	}
	return AppModel{
		router: router.New(initial),
		env:    env,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status is the right side of the header: the basket counter while
// picking, otherwise the phase.
func (m AppModel) status() string {
	sess := m.env.Session
	switch sess.Phase() {
	case session.PhasePicking:
		return fmt.Sprintf("Basket %d/%d  ", sess.Count(), session.MaxTotal)
	case session.PhaseRunning:
		return fmt.Sprintf("Answering %d  ", sess.Count())
	case session.PhaseConfirming:
		return "Reviewing  "
	default:
		return "Finished  "
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	header := layout.RenderHeader(m.router.Breadcrumb(" › "), m.status(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and waits for pending session event
// writes before returning.
func Run(opts Options) error {
	recorder := session.NewRecorder(opts.Events, opts.Log)
	defer recorder.Wait()

	p := tea.NewProgram(newAppModel(opts, recorder))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
