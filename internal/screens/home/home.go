package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/screens/admin"
	"github.com/abhisek/ipquiz/internal/screens/history"
	"github.com/abhisek/ipquiz/internal/screens/pick"
	"github.com/abhisek/ipquiz/internal/screens/play"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/store"
	"github.com/abhisek/ipquiz/internal/ui/components"
)

const (
	itemStart = iota
	itemHistory
	itemAdmin
	itemExit
)

type lastResultMsg struct {
	Record *store.SessionSummaryRecord
}

// HomeScreen is the main menu.
type HomeScreen struct {
	env        *screen.Env
	menu       components.Menu
	menuLabels []string
	disabled   map[int]bool
	last       *store.SessionSummaryRecord
}

var (
	_ screen.Screen  = (*HomeScreen)(nil)
	_ screen.Resumer = (*HomeScreen)(nil)
)

// New creates a HomeScreen. History is disabled when the backend keeps no
// session events.
func New(env *screen.Env) *HomeScreen {
	h := &HomeScreen{env: env, disabled: map[int]bool{}}
	h.menuLabels = []string{"START QUIZ", "HISTORY", "ADMIN", "EXIT"}
	if env.Events == nil {
		h.disabled[itemHistory] = true
	}

	items := make([]components.MenuItem, len(h.menuLabels))
	for i, label := range h.menuLabels {
		items[i] = components.MenuItem{Label: label, Disabled: h.disabled[i]}
	}
	items[itemStart].Action = h.start
	items[itemHistory].Action = func() tea.Cmd {
		return push(history.New(env.Events))
	}
	items[itemAdmin].Action = func() tea.Cmd {
		return push(admin.New(env))
	}
	items[itemExit].Action = func() tea.Cmd {
		return tea.Quit
	}
	h.menu = components.NewMenu(items)
	return h
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: s}
	}
}

// start resumes a quiz in progress, otherwise opens the picker.
func (h *HomeScreen) start() tea.Cmd {
	sess := h.env.Session
	h.env.SyncBank()

	switch sess.Phase() {
	case session.PhaseRunning, session.PhaseConfirming:
		return push(play.New(h.env))
	case session.PhaseFinished:
		sess.Reset()
	}
	return push(pick.New(h.env))
}

// Init refreshes the last result. The router re-runs it when the stack
// unwinds back to home.
func (h *HomeScreen) Init() tea.Cmd {
	events := h.env.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		recs, err := events.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: 1})
		if err != nil || len(recs) == 0 {
			return lastResultMsg{}
		}
		return lastResultMsg{Record: &recs[0]}
	}
}

// Resume reloads the last result when a quiz or history screen closes.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.Init()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(lastResultMsg); ok {
		h.last = msg.Record
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 22 || width < 80
	cw := contentWidth(width)

	last := ""
	if h.last != nil {
		last = fmt.Sprintf("%d/%d", h.last.Total, h.last.Possible)
	}

	sections := []string{
		renderTitle(width, cw, compact),
		renderStatsBar(len(h.env.Catalog.Bank()), len(h.env.Catalog.Topics()), last, cw),
		renderMenu(h.menuLabels, h.menu.Selected, h.disabled, cw, compact),
	}
	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
