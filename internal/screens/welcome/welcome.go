package welcome

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/router"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAt     = 300 * time.Millisecond
	totalDur     = 1200 * time.Millisecond
)

// levelRibbon reveals one level tag per step, highest first.
var levelRibbon = []string{"S", "A", "B", "C"}

type tickMsg time.Time

// WelcomeScreen shows a short splash before handing over to the home screen.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	bankSize     int
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced
// by homeFactory. bankSize is shown under the banner.
func New(homeFactory func() screen.Screen, bankSize int) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		bankSize:    bankSize,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		// Any key skips the animation.
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// ribbon renders the level tags revealed so far.
func (w *WelcomeScreen) ribbon() string {
	step := (totalDur - bannerAt) / time.Duration(len(levelRibbon))
	var tags []string
	for i, l := range levelRibbon {
		if w.elapsed < bannerAt+step*time.Duration(i) {
			break
		}
		tags = append(tags, theme.Tag(l))
	}
	return strings.Join(tags, " ")
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	if w.elapsed >= bannerAt {
		sections = append(sections, RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Pick five. Answer them all."))
		sections = append(sections, "", w.ribbon())
	}

	if w.elapsed >= totalDur {
		sections = append(sections, "")
		sections = append(sections, theme.Hint.Render(bankLine(w.bankSize)))
		sections = append(sections, theme.Hint.Render("press any key to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

func bankLine(n int) string {
	switch n {
	case 0:
		return "The question bank is empty. Add questions in admin mode."
	case 1:
		return "1 question in the bank"
	default:
		return fmt.Sprintf("%d questions in the bank", n)
	}
}
