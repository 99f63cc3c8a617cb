package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/screen/screentest"
	"github.com/abhisek/ipquiz/internal/screens/pick"
	"github.com/abhisek/ipquiz/internal/screens/play"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/store"
)

type fakeEvents struct {
	store.EventRepo
	records []store.SessionSummaryRecord
}

func (f *fakeEvents) QuerySessionSummaries(context.Context, store.QueryOpts) ([]store.SessionSummaryRecord, error) {
	return f.records, nil
}

func testHome(t *testing.T) (*HomeScreen, *screen.Env) {
	t.Helper()
	env, _ := screentest.NewEnv(t, quiz.Bank{
		screentest.Choice("x1", "X", quiz.LevelB, 0),
		screentest.Choice("y1", "Y", quiz.LevelC, 1),
	}, nil)
	return New(env), env
}

func pushed(t *testing.T, cmd tea.Cmd) screen.Screen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	return msg.Screen
}

func TestHistoryDisabledWithoutEvents(t *testing.T) {
	h, _ := testHome(t)
	if !h.disabled[itemHistory] {
		t.Error("history should be disabled without an event store")
	}
	if h.Init() != nil {
		t.Error("no event store means nothing to load")
	}
}

func TestStartOpensPicker(t *testing.T) {
	h, _ := testHome(t)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := pushed(t, cmd).(*pick.PickScreen); !ok {
		t.Error("START QUIZ should open the picker")
	}
}

func TestStartResumesRunningQuiz(t *testing.T) {
	h, env := testHome(t)
	_, _ = env.Session.Toggle("x1")
	if err := env.Session.Start(); err != nil {
		t.Fatal(err)
	}

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := pushed(t, cmd).(*play.PlayScreen); !ok {
		t.Error("a running quiz should resume")
	}
}

func TestStartAfterFinishResets(t *testing.T) {
	h, env := testHome(t)
	_, _ = env.Session.Toggle("x1")
	_ = env.Session.Start()
	_ = env.Session.Reveal()
	if _, err := env.Session.Finish(); err != nil {
		t.Fatal(err)
	}

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	pushed(t, cmd)
	if env.Session.Phase() != session.PhasePicking || env.Session.Count() != 0 {
		t.Error("a finished session should be reset before picking")
	}
}

func TestLastResultShown(t *testing.T) {
	h, env := testHome(t)
	env.Events = &fakeEvents{records: []store.SessionSummaryRecord{{Total: 3, Possible: 4}}}
	h = New(env)

	h.Update(h.Init()())
	if !strings.Contains(h.View(100, 40), "LAST 3/4") {
		t.Error("stats bar should show the last result")
	}
	if h.disabled[itemHistory] {
		t.Error("history should be enabled with an event store")
	}
}

func TestResumeRefreshesLastResult(t *testing.T) {
	h, env := testHome(t)
	events := &fakeEvents{}
	env.Events = events
	h = New(env)
	h.Update(h.Init()())

	events.records = []store.SessionSummaryRecord{{Total: 5, Possible: 6}}
	cmd := h.Resume()
	if cmd == nil {
		t.Fatal("expected Resume to reload the last result")
	}
	h.Update(cmd())
	if !strings.Contains(h.View(100, 40), "LAST 5/6") {
		t.Error("stats bar should show the result finished before resuming")
	}
}

func TestStatsBarCounts(t *testing.T) {
	h, _ := testHome(t)
	view := h.View(100, 40)
	if !strings.Contains(view, "2 QUESTIONS") || !strings.Contains(view, "2 TOPICS") {
		t.Error("stats bar should count questions and topics")
	}
}
