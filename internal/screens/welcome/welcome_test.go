package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

func newTestWelcome(bankSize int) (*WelcomeScreen, *int) {
	callCount := 0
	factory := func() screen.Screen {
		callCount++
		return &stubScreen{}
	}
	return New(factory, bankSize), &callCount
}

func sendTicks(w *WelcomeScreen, n int) {
	for i := 0; i < n; i++ {
		w.Update(tickMsg(time.Now()))
	}
}

func TestBannerAppearsAfterDelay(t *testing.T) {
	w, _ := newTestWelcome(3)

	if strings.Contains(w.View(80, 24), "Pick five") {
		t.Error("tagline should not be visible at start")
	}

	sendTicks(w, 3)
	if w.elapsed != bannerAt {
		t.Errorf("expected elapsed %v, got %v", bannerAt, w.elapsed)
	}
	if !strings.Contains(w.View(80, 24), "Pick five") {
		t.Error("tagline should be visible once the banner shows")
	}
}

func TestElapsedCapped(t *testing.T) {
	w, callCount := newTestWelcome(3)

	sendTicks(w, 40)
	if w.elapsed != totalDur {
		t.Errorf("expected elapsed capped at %v, got %v", totalDur, w.elapsed)
	}
	if *callCount != 0 {
		t.Errorf("factory should not be called without keypress, got %d", *callCount)
	}

	_, cmd := w.Update(tickMsg(time.Now()))
	if cmd != nil {
		t.Error("ticking should stop once the animation is done")
	}
}

func TestRibbonRevealsLevels(t *testing.T) {
	w, _ := newTestWelcome(3)
	sendTicks(w, 40)
	ribbon := w.ribbon()
	for _, l := range levelRibbon {
		if !strings.Contains(ribbon, l) {
			t.Errorf("ribbon missing level %s: %q", l, ribbon)
		}
	}
}

func TestKeypressEmitsReplace(t *testing.T) {
	w, callCount := newTestWelcome(3)
	sendTicks(w, 2)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("keypress should trigger transition")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen == nil {
		t.Error("replace screen should not be nil")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called once, got %d", *callCount)
	}
}

func TestFactoryCalledOnce(t *testing.T) {
	w, callCount := newTestWelcome(3)
	w.Update(tea.KeyPressMsg{Code: 'a'})

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	if *callCount != 1 {
		t.Errorf("factory should be called exactly once, got %d", *callCount)
	}
}

func TestBankLine(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "empty"},
		{1, "1 question in the bank"},
		{12, "12 questions in the bank"},
	}
	for _, tt := range tests {
		if got := bankLine(tt.n); !strings.Contains(got, tt.want) {
			t.Errorf("bankLine(%d) = %q, want it to contain %q", tt.n, got, tt.want)
		}
	}
}

func TestBannerCompactFallback(t *testing.T) {
	if !strings.Contains(RenderBanner(30), "I P") {
		t.Error("narrow terminals should get the compact banner")
	}
}

func TestTitleEmpty(t *testing.T) {
	w, _ := newTestWelcome(0)
	if w.Title() != "" {
		t.Errorf("expected empty title, got %q", w.Title())
	}
}
