package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/store"
)

type fakeLister struct {
	records []store.SessionSummaryRecord
	err     error
	limit   int
}

func (f *fakeLister) QuerySessionSummaries(_ context.Context, opts store.QueryOpts) ([]store.SessionSummaryRecord, error) {
	f.limit = opts.Limit
	return f.records, f.err
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func TestHistoryLoads(t *testing.T) {
	lister := &fakeLister{records: []store.SessionSummaryRecord{
		{
			SessionID:    "s1",
			Timestamp:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Questions:    3,
			Total:        4,
			Possible:     8,
			DurationSecs: 125,
			ByTopic:      map[string]int{"X": 4},
			ByLevel:      map[string]int{"S": 0, "A": 0, "B": 4, "C": 0},
		},
	}}
	s := New(lister)
	if !strings.Contains(s.View(100, 20), "Loading") {
		t.Error("expected loading state before data arrives")
	}
	load(t, s)

	if lister.limit != historyLimit {
		t.Errorf("limit = %d, want %d", lister.limit, historyLimit)
	}
	view := s.View(100, 20)
	for _, want := range []string{"4/8 points", "50%", "2:05"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(100, 20), "B:4") {
		t.Error("enter should expand level details")
	}
}

func TestHistoryEmpty(t *testing.T) {
	s := New(&fakeLister{})
	load(t, s)
	if !strings.Contains(s.View(80, 20), "No finished quizzes") {
		t.Error("expected empty state")
	}
}

func TestHistoryError(t *testing.T) {
	s := New(&fakeLister{err: errors.New("db down")})
	load(t, s)
	if !strings.Contains(s.View(80, 20), "db down") {
		t.Error("expected error message")
	}
}

func TestHistoryEscPops(t *testing.T) {
	s := New(&fakeLister{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}

func TestDetailLineOrdersLevels(t *testing.T) {
	line := detailLine(store.SessionSummaryRecord{
		ByLevel: map[string]int{"S": 5, "C": 1},
		ByTopic: map[string]int{"b": 1, "a": 5},
	})
	if !strings.Contains(line, "S:5  A:0  B:0  C:1  a 5  b 1") {
		t.Errorf("detailLine = %q", line)
	}
}
